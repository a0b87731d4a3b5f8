package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	// FindByName matches the name case-insensitively (write-time uniqueness).
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	// FindByIDs returns the categories for the given ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, id string, name, description string) (*domain.Category, error)
	// Delete removes the category only. Referencing tickets are left untouched.
	Delete(ctx context.Context, id string) error
}
