package domain

import "time"

// TicketStatus is the lifecycle state of a ticket. Transitions are free: any
// staff actor may set any of the four statuses from any current status. This
// mirrors the product behaviour; no adjacency graph is enforced.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Open"
	StatusInProgress TicketStatus = "In Progress"
	StatusResolved   TicketStatus = "Resolved"
	StatusClosed     TicketStatus = "Closed"
)

// Valid reports whether s is one of the four enumerated statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// TicketPriority orders tickets by urgency. Present in the schema with a Low
// default; not part of the client-facing update flows.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
	PriorityUrgent TicketPriority = "Urgent"
)

// Valid reports whether p is one of the four enumerated priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

const MaxTicketSubject = 200

// Comment is a single append-only entry in a ticket's audit trail. Comments
// are never edited or deleted.
type Comment struct {
	Text        string    `json:"text" bson:"text"`
	CommentedBy string    `json:"commented_by" bson:"commented_by"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Ticket is the core aggregate root. CreatedByID is immutable after creation;
// AssignedToID, when set, must reference a staff user. Upvotes and downvotes
// hold user ids and are mutually exclusive per user.
type Ticket struct {
	ID           string         `json:"id"`
	Subject      string         `json:"subject"`
	Description  string         `json:"description"`
	CategoryID   string         `json:"category_id"`
	CreatedByID  string         `json:"created_by"`
	AssignedToID string         `json:"assigned_to,omitempty"`
	Status       TicketStatus   `json:"status"`
	Priority     TicketPriority `json:"priority"`
	Comments     []Comment      `json:"comments"`
	Attachments  []string       `json:"attachments,omitempty"`
	Upvotes      []string       `json:"upvotes"`
	Downvotes    []string       `json:"downvotes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HasUpvote reports whether the given user id is in the upvote set.
func (t *Ticket) HasUpvote(userID string) bool { return contains(t.Upvotes, userID) }

// HasDownvote reports whether the given user id is in the downvote set.
func (t *Ticket) HasDownvote(userID string) bool { return contains(t.Downvotes, userID) }

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
