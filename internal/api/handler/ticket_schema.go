package handler

import (
	"time"

	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

type createTicketRequest struct {
	Subject     string `json:"subject"     validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"    validate:"required"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=Low Medium High Urgent"`
}

// updateTicketRequest uses pointers so "field absent" and "field set to empty"
// stay distinguishable; an absent field is simply not part of the update.
type updateTicketRequest struct {
	Status      *string `json:"status"`
	AssignedTo  *string `json:"assigned_to"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Response-only types owned by the transport layer, kept separate from the
// ports/domain types so the JSON contract does not move with internal service
// changes.

type refResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type commentResponse struct {
	Text        string    `json:"text"`
	CommentedBy string    `json:"commented_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type ticketResponse struct {
	ID          string            `json:"id"`
	Subject     string            `json:"subject"`
	Description string            `json:"description"`
	Category    refResponse       `json:"category"`
	CreatedBy   refResponse       `json:"created_by"`
	AssignedTo  *refResponse      `json:"assigned_to,omitempty"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	Comments    []commentResponse `json:"comments"`
	Attachments []string          `json:"attachments,omitempty"`
	Upvotes     int               `json:"upvotes"`
	Downvotes   int               `json:"downvotes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type voteResponse struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

func toTicketResponse(v ports.TicketView) ticketResponse {
	t := v.Ticket
	resp := ticketResponse{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: t.Description,
		Category:    refResponse{ID: t.CategoryID, Name: v.Refs.CategoryName},
		CreatedBy:   refResponse{ID: t.CreatedByID, Name: v.Refs.CreatedByName},
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Comments:    toCommentResponses(t.Comments),
		Attachments: t.Attachments,
		Upvotes:     len(t.Upvotes),
		Downvotes:   len(t.Downvotes),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedToID != "" {
		resp.AssignedTo = &refResponse{ID: t.AssignedToID, Name: v.Refs.AssignedToName}
	}
	return resp
}

func toTicketResponses(views []ports.TicketView) []ticketResponse {
	out := make([]ticketResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toTicketResponse(v))
	}
	return out
}

func toCommentResponses(comments []domain.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentResponse{
			Text:        c.Text,
			CommentedBy: c.CommentedBy,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out
}
