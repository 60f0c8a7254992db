package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity es la identidad autenticada de la petición en curso.
type Identity struct {
	UserID uuid.UUID
	Roles  []string
}

func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *Identity) IsAdmin() bool { return i.HasRole("admin") }

type ctxKey struct{}

// WithIdentity deja la identidad en el contexto.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom recupera la identidad del contexto, si la hay.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok
}

// Middleware extrae el token Bearer y, si es válido, deja la identidad en el
// contexto de la petición. Un token ausente o inválido no corta la petición:
// cada resolver decide qué exige.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	const prefix = "Bearer "
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, prefix) {
			if claims, err := tokens.Verify(strings.TrimPrefix(header, prefix)); err == nil {
				if userID, err := uuid.Parse(claims.Subject); err == nil {
					ident := &Identity{UserID: userID, Roles: claims.Roles}
					ctx := WithIdentity(c.Request.Context(), ident)
					c.Request = c.Request.WithContext(ctx)
				}
			}
		}
		c.Next()
	}
}
