// Package users implements registration and profile management.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evmyshkin/mvpy/internal/auth"
	"github.com/evmyshkin/mvpy/internal/models"
	"github.com/evmyshkin/mvpy/internal/store"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("user with this email already exists")
)

// Repository is the user persistence the service depends on.
type Repository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Deactivate(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.User, error)
}

type RoleLookup interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

type CreateInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

func (in UpdateInput) empty() bool {
	return in.Email == nil && in.FirstName == nil && in.LastName == nil && in.Password == nil
}

type Service struct {
	repo       Repository
	roles      RoleLookup
	bcryptCost int
	lg         *zap.SugaredLogger
}

func NewService(repo Repository, roles RoleLookup, bcryptCost int, lg *zap.SugaredLogger) *Service {
	return &Service{repo: repo, roles: roles, bcryptCost: bcryptCost, lg: lg}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validateName("first_name", in.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("last_name", in.LastName); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	role, err := s.roles.FindByName(ctx, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("default role: %w", err)
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The unique index still catches a registration racing the pre-check.
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	u.Role = *role
	s.lg.Infow("user created", "user_id", u.ID)
	return u, nil
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.User, error) {
	fields := map[string]any{}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		fields["email"] = *in.Email
	}
	if in.FirstName != nil {
		if err := validateName("first_name", *in.FirstName); err != nil {
			return nil, err
		}
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		if err := validateName("last_name", *in.LastName); err != nil {
			return nil, err
		}
		fields["last_name"] = *in.LastName
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.empty() {
		return current, nil
	}
	if in.Email != nil && store.NormalizeEmail(*in.Email) != current.Email {
		taken, err := s.repo.EmailTaken(ctx, *in.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	fields["updated_at"] = time.Now().UTC()

	switch err := s.repo.Update(ctx, id, fields); {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return nil, ErrEmailExists
	case err != nil:
		return nil, err
	}
	return s.Get(ctx, id)
}

// Deactivate reports ErrNotFound for missing and already inactive users.
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	err := s.repo.Deactivate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.lg.Infow("user deactivated", "user_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// AssignRole moves user id to the named role.
func (s *Service) AssignRole(ctx context.Context, id uint, roleName string) (*models.User, error) {
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("role %q: %w", roleName, err)
	}
	err = s.repo.Update(ctx, id, map[string]any{"role_id": role.ID, "updated_at": time.Now().UTC()})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
