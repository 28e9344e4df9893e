package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/evmyshkin/mvpy/internal/models"
	"github.com/evmyshkin/mvpy/internal/store"
)

// Resolver loads the live user behind a validated token. It ignores the
// active snapshot inside the token so deactivation applies immediately.
type Resolver struct {
	users UserStore
}

func NewResolver(users UserStore) *Resolver { return &Resolver{users: users} }

func (r *Resolver) Resolve(ctx context.Context, userID uint) (*models.User, error) {
	u, err := r.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load current user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}
