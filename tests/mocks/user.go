package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rmarben/usergraph/internal/shared/platform/paginate"
	userDomain "github.com/rmarben/usergraph/internal/user/domain"
)

// InMemoryUserRepo simula UserRepository sobre un mapa. La paginación que
// implementa es deliberadamente simple: filtro privado por igualdad, búsqueda
// por subcadena en username/email, orden por fecha de creación y ventana
// offset/limit.
type InMemoryUserRepo struct {
	mu    sync.Mutex
	Users map[uuid.UUID]*userDomain.User
}

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{Users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return userDomain.ErrUserAlreadyExists
		}
	}
	r.Users[u.ID] = u
	return nil
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	return u, nil
}

func (r *InMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, userDomain.ErrUserNotFound
}

func (r *InMemoryUserRepo) Update(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[u.ID]; !ok {
		return userDomain.ErrUserNotFound
	}
	r.Users[u.ID] = u
	return nil
}

func (r *InMemoryUserRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[id]; !ok {
		return userDomain.ErrUserNotFound
	}
	delete(r.Users, id)
	return nil
}

func (r *InMemoryUserRepo) List(ctx context.Context, req paginate.Request, trusted map[string]interface{}) (*paginate.Page[*userDomain.User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*userDomain.User
	for _, u := range r.Users {
		if status, ok := trusted["status"].(string); ok && u.Status != status {
			continue
		}
		if !matchesSearch(u, req.Search) {
			continue
		}
		matched = append(matched, u)
	}

	// orden estable por fecha de creación y, en empate, por ID
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := req.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Limit
	if req.Limit == 0 || end > len(matched) {
		end = len(matched)
	}
	if req.Limit == 0 {
		end = start
	}

	page := make([]*userDomain.User, 0, end-start)
	page = append(page, matched[start:end]...)
	return &paginate.Page[*userDomain.User]{Total: total, Data: page}, nil
}

func matchesSearch(u *userDomain.User, search map[string]interface{}) bool {
	for field, value := range search {
		term, ok := value.(string)
		if !ok {
			continue
		}
		term = strings.ToLower(term)
		switch field {
		case "username":
			if !strings.Contains(strings.ToLower(u.Username), term) {
				return false
			}
		case "email":
			if !strings.Contains(strings.ToLower(u.Email), term) {
				return false
			}
		}
	}
	return true
}
