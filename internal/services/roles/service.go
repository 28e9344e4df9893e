// Package roles serves the read-only role catalogue.
package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/evmyshkin/mvpy/internal/models"
	"github.com/evmyshkin/mvpy/internal/store"
)

type Repository interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id uint) (*models.Role, error)
}

// NotFoundError names the missing role id.
type NotFoundError struct{ ID uint }

func (e *NotFoundError) Error() string { return fmt.Sprintf("role with id %d not found", e.ID) }

type Service struct{ repo Repository }

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) List(ctx context.Context) ([]models.Role, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Role, error) {
	r, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	return r, err
}
