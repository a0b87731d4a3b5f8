package domain

import "errors"

// Sentinel errors raised close to the violated invariant. The HTTP layer maps
// each to a deterministic status code; wrap with fmt.Errorf("%w: detail", …)
// to attach context without losing the mapping.
var (
	ErrValidation         = errors.New("invalid input")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTicketNotFound   = errors.New("ticket not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrUserExists     = errors.New("user already exists")
	ErrCategoryExists = errors.New("category already exists")
)
