package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmarben/usergraph/internal/auth"
	sharedEvents "github.com/rmarben/usergraph/internal/shared/events"
	sharedBus "github.com/rmarben/usergraph/internal/shared/platform/bus"
	"github.com/rmarben/usergraph/internal/user/domain"
)

const minPasswordLen = 8

// AuthService define los casos de uso de registro y autenticación.
type AuthService struct {
	repo   domain.UserRepository
	tokens *auth.TokenManager
	audit  domain.AuthAudit
	events sharedBus.EventPublisher
	log    *zap.Logger
}

// NewAuthService constructor
func NewAuthService(repo domain.UserRepository, tokens *auth.TokenManager, audit domain.AuthAudit, events sharedBus.EventPublisher, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, audit: audit, events: events, log: log}
}

// Register crea la cuenta con la contraseña hasheada y devuelve un token de
// sesión junto al usuario.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, *domain.User, error) {
	if len(password) < minPasswordLen {
		return "", nil, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleUser},
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Roles)
	if err != nil {
		return "", nil, err
	}

	s.publish(ctx, sharedEvents.UserRegistered, user)
	return token, user, nil
}

// Login verifica credenciales y emite un token. Cada intento, correcto o no,
// queda registrado en la auditoría.
func (s *AuthService) Login(ctx context.Context, email, password, remoteAddr string) (string, *domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordLogin(ctx, domain.LoginAttempt{Email: email, RemoteAddr: remoteAddr, At: time.Now().UTC()})
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	attempt := domain.LoginAttempt{
		UserID:     user.ID,
		Email:      email,
		RemoteAddr: remoteAddr,
		At:         time.Now().UTC(),
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLogin(ctx, attempt)
		return "", nil, domain.ErrInvalidCredentials
	}

	if user.Status == domain.StatusSuspended {
		s.recordLogin(ctx, attempt)
		return "", nil, domain.ErrUserSuspended
	}

	token, err := s.tokens.Issue(user.ID, user.Roles)
	if err != nil {
		return "", nil, err
	}

	attempt.Success = true
	s.recordLogin(ctx, attempt)
	return token, user, nil
}

// ChangePassword reemplaza la contraseña previa verificación de la actual.
func (s *AuthService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if len(next) < minPasswordLen {
		return domain.ErrWeakPassword
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *AuthService) recordLogin(ctx context.Context, attempt domain.LoginAttempt) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordLogin(ctx, attempt); err != nil {
		s.log.Warn("could not record login attempt", zap.String("email", attempt.Email), zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, eventType string, payload interface{}) {
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
