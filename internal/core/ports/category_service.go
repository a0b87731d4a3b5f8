package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// CategoryService defines category management. Reads are public; mutations
// require an admin actor.
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Create(ctx context.Context, actor *domain.User, name, description string) (*domain.Category, error)
	Update(ctx context.Context, actor *domain.User, id, name, description string) (*domain.Category, error)
	// Delete removes the category without touching referencing tickets; those
	// keep a dangling reference.
	Delete(ctx context.Context, actor *domain.User, id string) error
}
