package domain

import "time"

// MaxCategoryDescription caps the optional description field.
const MaxCategoryDescription = 500

// Category is a named ticket bucket. Names are unique case-insensitively.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
