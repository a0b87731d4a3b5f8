package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// UpdateUserInput carries the updatable user fields. Empty strings mean
// "unchanged"; Password is plaintext and hashed by the service.
type UpdateUserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// ListUsersResult is a page of users plus the total count.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines admin user management plus self-service profile updates.
// Every operation takes the acting user so that role and ownership rules are
// enforced inside the service, not at the transport layer alone.
type UserService interface {
	Create(ctx context.Context, actor *domain.User, username, email, password, role string) (*domain.User, error)
	Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error)
	List(ctx context.Context, actor *domain.User, page, limit int) (*ListUsersResult, error)
	Update(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}
