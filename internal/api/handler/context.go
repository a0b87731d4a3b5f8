package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// currentUser extracts the acting user injected by the Auth middleware. A nil
// return means the middleware did not run; callers surface ErrUnauthenticated
// so misconfigured routes fail closed.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get("user").(*domain.User)
	if !ok || user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
