package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// TicketService implements the ticket lifecycle: creation, role-scoped
// listing, per-field updates, comments, and votes.
type TicketService struct {
	tickets    ports.TicketRepository
	users      ports.UserRepository
	categories ports.CategoryRepository
	notifier   ports.Notifier
	logger     zerolog.Logger
}

func NewTicketService(
	tickets ports.TicketRepository,
	users ports.UserRepository,
	categories ports.CategoryRepository,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *TicketService {
	return &TicketService{
		tickets:    tickets,
		users:      users,
		categories: categories,
		notifier:   notifier,
		logger:     logger,
	}
}

// Create opens a new ticket on behalf of the actor. The referenced category
// must exist; otherwise nothing is persisted.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input ports.CreateTicketInput) (*ports.TicketView, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", domain.ErrValidation)
	}
	if len(subject) > domain.MaxTicketSubject {
		return nil, fmt.Errorf("%w: subject exceeds %d characters", domain.ErrValidation, domain.MaxTicketSubject)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if input.Category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}

	category, err := s.categories.FindByID(ctx, input.Category)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: category does not exist", domain.ErrValidation)
		}
		return nil, err
	}

	priority := domain.PriorityLow
	if input.Priority != "" {
		priority = domain.TicketPriority(input.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, input.Priority)
		}
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: input.Description,
		CategoryID:  category.ID,
		CreatedByID: actor.ID,
		Status:      domain.StatusOpen,
		Priority:    priority,
		Comments:    []domain.Comment{},
		Attachments: input.Attachments,
		Upvotes:     []string{},
		Downvotes:   []string{},
	}

	created, err := s.tickets.Create(ctx, ticket)
	if err != nil {
		s.logger.Error().Err(err).Str("subject", subject).Msg("failed to create ticket")
		return nil, err
	}

	s.logger.Info().
		Str("ticket_id", created.ID).
		Str("created_by", actor.ID).
		Str("category", category.Name).
		Msg("ticket created")

	s.notifier.Notify(ports.Notification{
		Kind:       ports.NotifyTicketCreated,
		TicketID:   created.ID,
		Subject:    created.Subject,
		Status:     string(created.Status),
		Summary:    "Your ticket has been created and is now Open.",
		Recipients: []ports.Recipient{{Name: actor.Username, Email: actor.Email}},
	})

	return &ports.TicketView{
		Ticket: created,
		Refs: ports.TicketRefs{
			CreatedByName: actor.Username,
			CategoryName:  category.Name,
		},
	}, nil
}

// Get returns a single ticket, visible only to its creator, its assignee, and
// admins.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, id string) (*ports.TicketView, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanViewTicket(ticket, actor) {
		return nil, domain.ErrForbidden
	}
	return s.resolveView(ctx, ticket)
}

// List returns a role-scoped page of tickets. End-users only ever see their
// own tickets; support agents see everything unless MyTickets narrows the
// scope to tickets assigned to them; admins see everything.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input ports.ListTicketsInput) (*ports.ListTicketsResult, error) {
	filter := ports.ListTicketsFilter{
		Status:   input.Status,
		Category: input.Category,
		Search:   input.Search,
		Extra:    input.Extra,
		SortBy:   input.SortBy,
		SortDesc: input.SortDesc,
	}

	switch {
	case actor.Role == domain.RoleEndUser:
		filter.CreatedBy = actor.ID
	case input.MyTickets:
		filter.AssignedTo = actor.ID
	}

	switch filter.SortBy {
	case "", "created_at":
		filter.SortBy = "created_at"
	case "updated_at":
	default:
		return nil, fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, filter.SortBy)
	}

	filter.Page, filter.Limit = normalizePage(input.Page, input.Limit)

	items, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views, err := s.resolveViews(ctx, items)
	if err != nil {
		return nil, err
	}

	return &ports.ListTicketsResult{
		Items:      views,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Update applies the recognized fields of input under the per-field rules:
// status and assignee changes require a staff actor; description and category
// changes are reserved for the ticket's creator. A request touching no
// recognized field succeeds without modifying anything.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, id string, input ports.UpdateTicketInput) (*ports.TicketView, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanUpdateTicket(ticket, actor) {
		return nil, domain.ErrForbidden
	}

	var patch ports.TicketPatch
	var changes []string

	if input.Status != nil {
		if !actor.IsStaff() {
			return nil, fmt.Errorf("%w: only support staff may change status", domain.ErrForbidden)
		}
		status := domain.TicketStatus(*input.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *input.Status)
		}
		patch.Status = &status
		if status != ticket.Status {
			changes = append(changes, fmt.Sprintf("status changed from %s to %s", ticket.Status, status))
		}
	}

	if input.AssignedTo != nil {
		if !actor.IsStaff() {
			return nil, fmt.Errorf("%w: only support staff may assign tickets", domain.ErrForbidden)
		}
		assignee := *input.AssignedTo
		if assignee != "" {
			u, err := s.users.FindByID(ctx, assignee)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return nil, fmt.Errorf("%w: assignee does not exist", domain.ErrValidation)
				}
				return nil, err
			}
			if !u.IsStaff() {
				return nil, fmt.Errorf("%w: assignee must be a support agent or admin", domain.ErrValidation)
			}
			if assignee != ticket.AssignedToID {
				changes = append(changes, fmt.Sprintf("assigned to %s", u.Username))
			}
		} else if ticket.AssignedToID != "" {
			changes = append(changes, "unassigned")
		}
		patch.AssignedTo = &assignee
	}

	if input.Description != nil {
		if !domain.IsCreator(ticket, actor) {
			return nil, fmt.Errorf("%w: only the ticket creator may edit the description", domain.ErrForbidden)
		}
		if strings.TrimSpace(*input.Description) == "" {
			return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
		}
		patch.Description = input.Description
		changes = append(changes, "description updated")
	}

	if input.Category != nil {
		if !domain.IsCreator(ticket, actor) {
			return nil, fmt.Errorf("%w: only the ticket creator may change the category", domain.ErrForbidden)
		}
		if _, err := s.categories.FindByID(ctx, *input.Category); err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return nil, fmt.Errorf("%w: category does not exist", domain.ErrValidation)
			}
			return nil, err
		}
		patch.Category = input.Category
		changes = append(changes, "category changed")
	}

	// No recognized field supplied: idempotent no-op success.
	if patch.Empty() {
		return s.resolveView(ctx, ticket)
	}

	updated, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticket_id", id).
		Str("actor", actor.ID).
		Strs("changes", changes).
		Msg("ticket updated")

	if len(changes) > 0 {
		s.notifyTicket(ctx, updated, ports.NotifyTicketUpdated, strings.Join(changes, "; "))
	}

	return s.resolveView(ctx, updated)
}

// Delete removes a ticket. Admin only.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !domain.CanDeleteTicket(actor) {
		return domain.ErrForbidden
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("ticket_id", id).Str("actor", actor.ID).Msg("ticket deleted")
	return nil
}

// AddComment appends an immutable comment to the ticket's audit trail and
// returns the full updated list.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, id, text string) ([]domain.Comment, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanCommentTicket(ticket, actor) {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrValidation)
	}

	comments, err := s.tickets.AppendComment(ctx, id, domain.Comment{
		Text:        text,
		CommentedBy: actor.ID,
	})
	if err != nil {
		return nil, err
	}

	s.notifyTicket(ctx, ticket, ports.NotifyCommentAdded,
		fmt.Sprintf("%s commented on the ticket.", actor.Username))

	return comments, nil
}

// Vote toggles the actor's membership in the target vote set, removing any
// opposite vote first. The whole toggle is one atomic document update.
func (s *TicketService) Vote(ctx context.Context, actor *domain.User, id string, dir ports.VoteDirection) (*ports.VoteCounts, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanVoteTicket(ticket, actor) {
		return nil, fmt.Errorf("%w: voting on your own ticket is not allowed", domain.ErrForbidden)
	}
	return s.tickets.ToggleVote(ctx, id, actor.ID, dir)
}

// notifyTicket delivers a best-effort notification to the ticket's creator
// and, when set, its assignee. Lookup failures only shrink the recipient list.
func (s *TicketService) notifyTicket(ctx context.Context, t *domain.Ticket, kind ports.NotificationKind, summary string) {
	ids := []string{t.CreatedByID}
	if t.AssignedToID != "" {
		ids = append(ids, t.AssignedToID)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticket_id", t.ID).Msg("could not resolve notification recipients")
		return
	}

	recipients := make([]ports.Recipient, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok && u.Email != "" {
			recipients = append(recipients, ports.Recipient{Name: u.Username, Email: u.Email})
		}
	}
	if len(recipients) == 0 {
		return
	}

	s.notifier.Notify(ports.Notification{
		Kind:       kind,
		TicketID:   t.ID,
		Subject:    t.Subject,
		Status:     string(t.Status),
		Summary:    summary,
		Recipients: recipients,
	})
}

// resolveView populates the display fields for a single ticket.
func (s *TicketService) resolveView(ctx context.Context, t *domain.Ticket) (*ports.TicketView, error) {
	views, err := s.resolveViews(ctx, []*domain.Ticket{t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// resolveViews batch-resolves creator, assignee, and category display names.
// Dangling references (e.g. a deleted category) resolve to empty names.
func (s *TicketService) resolveViews(ctx context.Context, tickets []*domain.Ticket) ([]ports.TicketView, error) {
	userIDs := make([]string, 0, len(tickets)*2)
	categoryIDs := make([]string, 0, len(tickets))
	for _, t := range tickets {
		userIDs = append(userIDs, t.CreatedByID)
		if t.AssignedToID != "" {
			userIDs = append(userIDs, t.AssignedToID)
		}
		categoryIDs = append(categoryIDs, t.CategoryID)
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.FindByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ports.TicketView, 0, len(tickets))
	for _, t := range tickets {
		var refs ports.TicketRefs
		if u, ok := users[t.CreatedByID]; ok {
			refs.CreatedByName = u.Username
		}
		if u, ok := users[t.AssignedToID]; ok {
			refs.AssignedToName = u.Username
		}
		if c, ok := categories[t.CategoryID]; ok {
			refs.CategoryName = c.Name
		}
		views = append(views, ports.TicketView{Ticket: t, Refs: refs})
	}
	return views, nil
}
