package graphql

import (
	"context"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/rmarben/usergraph/internal/auth"
	"github.com/rmarben/usergraph/internal/shared/platform/paginate"
	"github.com/rmarben/usergraph/internal/user/application"
	"github.com/rmarben/usergraph/internal/user/domain"
)

const defaultPageLimit = 20

// Resolver agrupa los servicios que alimentan el esquema.
type Resolver struct {
	users *application.UserService
	auth  *application.AuthService
	log   *zap.Logger
}

func NewResolver(users *application.UserService, authSvc *application.AuthService, log *zap.Logger) *Resolver {
	return &Resolver{users: users, auth: authSvc, log: log}
}

// authPayload es la respuesta de register y login.
type authPayload struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// ---------------- Queries ----------------

func (r *Resolver) resolveMe(p graphql.ResolveParams) (interface{}, error) {
	ident, ok := auth.IdentityFrom(p.Context)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	return r.users.GetUser(p.Context, ident.UserID)
}

func (r *Resolver) resolveUser(p graphql.ResolveParams) (interface{}, error) {
	if _, ok := auth.IdentityFrom(p.Context); !ok {
		return nil, auth.ErrUnauthenticated
	}
	id, err := uuid.Parse(p.Args["id"].(string))
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.users.GetUser(p.Context, id)
}

// resolveUsers traslada los argumentos tal cual al paginador: el motor de
// paginación, no el transporte, es la autoridad de validación.
func (r *Resolver) resolveUsers(p graphql.ResolveParams) (interface{}, error) {
	ident, ok := auth.IdentityFrom(p.Context)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	req := paginate.Request{Limit: defaultPageLimit}
	if v, ok := p.Args["offset"].(int); ok {
		req.Offset = v
	}
	if v, ok := p.Args["limit"].(int); ok {
		req.Limit = v
	}
	if m, ok := p.Args["search"].(map[string]interface{}); ok {
		req.Search = m
	}
	if m, ok := p.Args["sort"].(map[string]interface{}); ok {
		req.Sort = m
	}
	if m, ok := p.Args["filter"].(map[string]interface{}); ok {
		f := &paginate.Filter{}
		if inc, ok := m["include"].(map[string]interface{}); ok {
			f.Include = inc
		}
		if exc, ok := m["exclude"].(map[string]interface{}); ok {
			f.Exclude = exc
		}
		req.Filter = f
	}

	// frontera de confianza: el filtro privado lo decide el resolver, nunca
	// el cliente. Los no-admin solo ven cuentas activas.
	trusted := map[string]interface{}{}
	if !ident.IsAdmin() {
		trusted["status"] = domain.StatusActive
	}

	return r.users.ListUsers(p.Context, req, trusted)
}

// ---------------- Mutations ----------------

func (r *Resolver) resolveRegister(p graphql.ResolveParams) (interface{}, error) {
	token, user, err := r.auth.Register(
		p.Context,
		p.Args["username"].(string),
		p.Args["email"].(string),
		p.Args["password"].(string),
	)
	if err != nil {
		return nil, err
	}
	return &authPayload{Token: token, User: user}, nil
}

func (r *Resolver) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	token, user, err := r.auth.Login(
		p.Context,
		p.Args["email"].(string),
		p.Args["password"].(string),
		remoteAddrFrom(p.Context),
	)
	if err != nil {
		return nil, err
	}
	return &authPayload{Token: token, User: user}, nil
}

func (r *Resolver) resolveUpdateUser(p graphql.ResolveParams) (interface{}, error) {
	ident, ok := auth.IdentityFrom(p.Context)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	id, err := uuid.Parse(p.Args["id"].(string))
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	// solo la propia cuenta o un admin
	if id != ident.UserID && !ident.IsAdmin() {
		return nil, auth.ErrForbidden
	}

	user, err := r.users.GetUser(p.Context, id)
	if err != nil {
		return nil, err
	}
	if v, ok := p.Args["username"].(string); ok {
		user.Username = v
	}
	if v, ok := p.Args["email"].(string); ok {
		user.Email = v
	}
	if v, ok := p.Args["status"].(string); ok {
		// el estado de la cuenta solo lo cambia un admin
		if !ident.IsAdmin() {
			return nil, auth.ErrForbidden
		}
		user.Status = v
	}

	if err := r.users.UpdateUser(p.Context, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) resolveDeleteUser(p graphql.ResolveParams) (interface{}, error) {
	ident, ok := auth.IdentityFrom(p.Context)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	id, err := uuid.Parse(p.Args["id"].(string))
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	if id != ident.UserID && !ident.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	if err := r.users.DeleteUser(p.Context, id); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Resolver) resolveChangePassword(p graphql.ResolveParams) (interface{}, error) {
	ident, ok := auth.IdentityFrom(p.Context)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	err := r.auth.ChangePassword(
		p.Context,
		ident.UserID,
		p.Args["current"].(string),
		p.Args["new"].(string),
	)
	if err != nil {
		return nil, err
	}
	return true, nil
}

// ---------------- Contexto ----------------

type remoteAddrKey struct{}

// WithRemoteAddr deja la dirección del cliente en el contexto para la
// auditoría de login.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey{}, addr)
}

func remoteAddrFrom(ctx context.Context) string {
	addr, _ := ctx.Value(remoteAddrKey{}).(string)
	return addr
}
