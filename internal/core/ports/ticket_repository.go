package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// ListTicketsFilter carries all query parameters for listing tickets. The
// role-derived scoping (CreatedBy / AssignedTo) is always set by the service
// layer, never by the caller directly.
type ListTicketsFilter struct {
	CreatedBy  string            // non-empty: only tickets opened by this user
	AssignedTo string            // non-empty: only tickets assigned to this user
	Status     string            // optional status filter
	Category   string            // optional category id filter
	Search     string            // optional case-insensitive match on subject or description
	Extra      map[string]string // ad-hoc field-equality filters (reserved keys already stripped)
	SortBy     string            // "created_at" (default) or "updated_at"
	SortDesc   bool
	Page       int // 1-based
	Limit      int // rows per page (capped by the service)
}

// VoteDirection selects which vote set a toggle targets.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// VoteCounts is the post-toggle cardinality of both vote sets.
type VoteCounts struct {
	Upvotes   int
	Downvotes int
}

// TicketRepository defines persistence operations for tickets.
//
// AppendComment and ToggleVote must be single atomic document updates; a
// fetch-then-save round trip would lose writes under concurrent mutation of
// the same ticket.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error)
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	// List returns a page of tickets matching filter and the total count.
	List(ctx context.Context, filter ListTicketsFilter) ([]*domain.Ticket, int64, error)
	// Update applies the given recognized-field changes and bumps updated_at.
	Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error

	// AppendComment atomically appends the comment and returns the full
	// updated comment list.
	AppendComment(ctx context.Context, id string, c domain.Comment) ([]domain.Comment, error)

	// ToggleVote atomically removes userID from the opposite vote set and
	// toggles its membership in the target set, returning the new
	// cardinalities of both sets.
	ToggleVote(ctx context.Context, id, userID string, dir VoteDirection) (*VoteCounts, error)
}

// TicketPatch carries the updatable ticket fields. Nil pointers mean
// "unchanged"; AssignedTo pointing at an empty string clears the assignee.
type TicketPatch struct {
	Status      *domain.TicketStatus
	AssignedTo  *string
	Description *string
	Category    *string
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Status == nil && p.AssignedTo == nil && p.Description == nil && p.Category == nil
}
