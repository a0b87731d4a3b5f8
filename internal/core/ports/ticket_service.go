package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// CreateTicketInput carries all data needed to open a new ticket. Attachments
// are store-relative paths already persisted by the transport layer.
type CreateTicketInput struct {
	Subject     string
	Description string
	Category    string
	Priority    string // optional, defaults to Low
	Attachments []string
}

// UpdateTicketInput carries the recognized update fields. Nil means "field not
// supplied". An update touching no recognized field is a no-op success.
type UpdateTicketInput struct {
	Status      *string
	AssignedTo  *string // empty string clears the assignee
	Description *string
	Category    *string
}

// ListTicketsInput carries all parameters for the list endpoint.
type ListTicketsInput struct {
	MyTickets bool // support-agent only: narrow to assigned_to = self
	Status    string
	Category  string
	Search    string
	Extra     map[string]string
	SortBy    string
	SortDesc  bool
	Page      int
	Limit     int
}

// TicketRefs holds the resolved display fields for a ticket's references.
// Dangling references (deleted category or user) resolve to empty values.
type TicketRefs struct {
	CreatedByName  string
	AssignedToName string
	CategoryName   string
}

// TicketView pairs a ticket with its resolved references.
type TicketView struct {
	Ticket *domain.Ticket
	Refs   TicketRefs
}

// ListTicketsResult is a page of tickets plus totals for page-count
// computation.
type ListTicketsResult struct {
	Items      []TicketView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TicketService defines the ticket lifecycle use cases. Every operation takes
// the acting user; record-level predicates are evaluated inside the service.
type TicketService interface {
	Create(ctx context.Context, actor *domain.User, input CreateTicketInput) (*TicketView, error)
	Get(ctx context.Context, actor *domain.User, id string) (*TicketView, error)
	List(ctx context.Context, actor *domain.User, input ListTicketsInput) (*ListTicketsResult, error)
	Update(ctx context.Context, actor *domain.User, id string, input UpdateTicketInput) (*TicketView, error)
	Delete(ctx context.Context, actor *domain.User, id string) error

	AddComment(ctx context.Context, actor *domain.User, id, text string) ([]domain.Comment, error)
	Vote(ctx context.Context, actor *domain.User, id string, dir VoteDirection) (*VoteCounts, error)
}
