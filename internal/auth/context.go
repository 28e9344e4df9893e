package auth

import (
	"context"

	"github.com/evmyshkin/mvpy/internal/models"
)

type ctxKey string

const (
	principalKey ctxKey = "principal"
)

// Principal is the authenticated caller of a protected request.
type Principal struct {
	User  *models.User
	Token Token
}

func (p Principal) HasRole(roles ...string) bool {
	if p.User == nil {
		return false
	}
	for _, r := range roles {
		if p.User.Role.Name == r {
			return true
		}
	}
	return false
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// UserID is zero for unauthenticated contexts.
func UserID(ctx context.Context) uint {
	if p, ok := FromContext(ctx); ok && p.User != nil {
		return p.User.ID
	}
	return 0
}
