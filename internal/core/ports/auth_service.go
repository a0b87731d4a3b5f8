package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// AuthService implements registration and login. Public registration always
// creates an end-user; privileged roles are assigned through the user service
// by an admin.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
