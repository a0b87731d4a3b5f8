package domain

import "time"

const (
	RoleAdmin        = "admin"
	RoleSupportAgent = "support-agent"
	RoleEndUser      = "end-user"
)

// ValidRole reports whether role is one of the three recognised roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSupportAgent || role == RoleEndUser
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStaff reports whether the user may work tickets (support-agent or admin).
func (u *User) IsStaff() bool {
	return u != nil && (u.Role == RoleSupportAgent || u.Role == RoleAdmin)
}
