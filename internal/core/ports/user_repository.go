package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIDs returns the users for the given ids, keyed by id. Missing ids
	// are silently absent from the map (dangling references are tolerated).
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	// List returns a page of users and the total count.
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
	// Update applies the non-zero fields of patch to the stored user.
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// UserPatch carries the updatable user fields. Empty strings mean "unchanged".
type UserPatch struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}
