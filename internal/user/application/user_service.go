package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedEvents "github.com/rmarben/usergraph/internal/shared/events"
	sharedBus "github.com/rmarben/usergraph/internal/shared/platform/bus"
	"github.com/rmarben/usergraph/internal/shared/platform/paginate"
	"github.com/rmarben/usergraph/internal/user/domain"
)

// UserService define los casos de uso de consulta y mantenimiento de cuentas.
type UserService struct {
	repo   domain.UserRepository
	cache  domain.UserCache
	events sharedBus.EventPublisher
	log    *zap.Logger
}

// NewUserService constructor
func NewUserService(repo domain.UserRepository, cache domain.UserCache, events sharedBus.EventPublisher, log *zap.Logger) *UserService {
	return &UserService{repo: repo, cache: cache, events: events, log: log}
}

const cacheTTLSecs = 60

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}

		select {
		case <-time.After(delay):
			// espera antes del siguiente intento
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// GetUser obtiene un usuario (primero intenta desde cache).
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.cache != nil {
		var u domain.User
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &u); ok {
			return &u, nil
		}
	}

	var user *domain.User
	err := retry(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		user, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Actualizar cache en background sin bloquear la respuesta
	if s.cache != nil {
		go func(u *domain.User) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			if err := s.cache.Set(ctxCache, domain.CacheKeyByID(u.ID), u, cacheTTLSecs); err != nil {
				s.log.Warn("cache update failed", zap.String("user", u.ID.String()), zap.Error(err))
			}
		}(user)
	}

	return user, nil
}

// ListUsers pagina usuarios según la petición pública. El filtro trusted lo
// aporta el resolver y se aplica sin validación (es la frontera de confianza).
func (s *UserService) ListUsers(ctx context.Context, req paginate.Request, trusted map[string]interface{}) (*paginate.Page[*domain.User], error) {
	return s.repo.List(ctx, req, trusted)
}

func (s *UserService) UpdateUser(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, domain.CacheKeyByID(u.ID), u, cacheTTLSecs)
	}

	s.publish(ctx, sharedEvents.UserUpdated, u)
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, domain.CacheKeyByID(id))
	}

	s.publish(ctx, sharedEvents.UserDeleted, id)
	return nil
}

// publish emite un evento de integración; un fallo del bus no hace fallar
// la operación de dominio.
func (s *UserService) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	evt, err := sharedEvents.New(eventType, payload)
	if err != nil {
		s.log.Warn("could not build integration event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("could not publish integration event", zap.String("type", eventType), zap.Error(err))
	}
}
