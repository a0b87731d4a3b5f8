package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// UserService implements admin user management and self-service updates.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Create adds a user with an explicit role. Admin only.
func (s *UserService) Create(ctx context.Context, actor *domain.User, username, email, password, role string) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}
	if role == "" {
		role = domain.RoleEndUser
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Get returns a user. Admins may fetch anyone; others only themselves.
func (s *UserService) Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindByID(ctx, id)
}

// List returns a page of users. Admin only.
func (s *UserService) List(ctx context.Context, actor *domain.User, page, limit int) (*ports.ListUsersResult, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	page, limit = normalizePage(page, limit)

	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Update modifies a user. Non-admins may only update their own username,
// email, and password; only admins may set or change a role.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, domain.ErrForbidden
	}
	if input.Role != "" {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: only an admin may change roles", domain.ErrForbidden)
		}
		if !domain.ValidRole(input.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
		}
	}

	patch := ports.UserPatch{
		Username: input.Username,
		Email:    input.Email,
		Role:     input.Role,
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = string(hash)
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete removes a user. Admin only.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
