package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	createErr error
	nextID    int
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range seed {
		clone := *u
		r.users[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	clone := *u
	r.nextID++
	clone.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	var all []*domain.User
	for _, u := range r.users {
		clone := *u
		all = append(all, &clone)
	}
	total := int64(len(all))
	skip := (page - 1) * limit
	if skip >= len(all) {
		return []*domain.User{}, total, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Username != "" {
		u.Username = patch.Username
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.PasswordHash != "" {
		u.PasswordHash = patch.PasswordHash
	}
	if patch.Role != "" {
		u.Role = patch.Role
	}
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubCategoryRepo struct {
	categories map[string]*domain.Category
	nextID     int
}

func newStubCategoryRepo(seed ...*domain.Category) *stubCategoryRepo {
	r := &stubCategoryRepo{categories: make(map[string]*domain.Category)}
	for _, c := range seed {
		clone := *c
		r.categories[c.ID] = &clone
	}
	return r
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	clone := *c
	r.nextID++
	clone.ID = fmt.Sprintf("cat_%d", r.nextID)
	r.categories[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id string) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

// FindByName matches case-insensitively, mirroring the collation index.
func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *stubCategoryRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Category, error) {
	out := make(map[string]*domain.Category)
	for _, id := range ids {
		if c, ok := r.categories[id]; ok {
			clone := *c
			out[id] = &clone
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	var all []*domain.Category
	for _, c := range r.categories {
		clone := *c
		all = append(all, &clone)
	}
	return all, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, id, name, description string) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	c.Name = name
	c.Description = description
	c.UpdatedAt = time.Now().UTC()
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

type stubTicketRepo struct {
	tickets    map[string]*domain.Ticket
	lastFilter ports.ListTicketsFilter
	nextID     int
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *stubTicketRepo) Create(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	clone := *t
	r.nextID++
	clone.ID = fmt.Sprintf("ticket_%d", r.nextID)
	now := time.Now().UTC()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.tickets[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTicketRepo) FindByID(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	clone := *t
	return &clone, nil
}

// ticketField resolves an equality-filter key to the ticket field the Mongo
// documents store under that name.
func ticketField(t *domain.Ticket, key string) (string, bool) {
	switch key {
	case "created_by":
		return t.CreatedByID, true
	case "assigned_to":
		return t.AssignedToID, true
	case "status":
		return string(t.Status), true
	case "category":
		return t.CategoryID, true
	case "priority":
		return string(t.Priority), true
	case "subject":
		return t.Subject, true
	}
	return "", false
}

// List applies the same filters the real Mongo repo would use. Like the real
// repo's bson.M, extra filters are laid down first and the scoped fields
// overwrite them on key collisions.
func (r *stubTicketRepo) List(_ context.Context, f ports.ListTicketsFilter) ([]*domain.Ticket, int64, error) {
	r.lastFilter = f

	eq := map[string]string{}
	for k, v := range f.Extra {
		eq[k] = v
	}
	if f.CreatedBy != "" {
		eq["created_by"] = f.CreatedBy
	}
	if f.AssignedTo != "" {
		eq["assigned_to"] = f.AssignedTo
	}
	if f.Status != "" {
		eq["status"] = f.Status
	}
	if f.Category != "" {
		eq["category"] = f.Category
	}

	var matched []*domain.Ticket
	for _, t := range r.tickets {
		ok := true
		for k, v := range eq {
			val, known := ticketField(t, k)
			if !known || val != v {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if f.Search != "" {
			subjectMatch := strings.Contains(strings.ToLower(t.Subject), strings.ToLower(f.Search))
			descMatch := strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search))
			if !subjectMatch && !descMatch {
				continue
			}
		}
		clone := *t
		matched = append(matched, &clone)
	}

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip >= len(matched) {
		return []*domain.Ticket{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubTicketRepo) Update(_ context.Context, id string, patch ports.TicketPatch) (*domain.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.AssignedTo != nil {
		t.AssignedToID = *patch.AssignedTo
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Category != nil {
		t.CategoryID = *patch.Category
	}
	t.UpdatedAt = time.Now().UTC()
	clone := *t
	return &clone, nil
}

func (r *stubTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *stubTicketRepo) AppendComment(_ context.Context, id string, c domain.Comment) ([]domain.Comment, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	c.CreatedAt = time.Now().UTC()
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = c.CreatedAt
	out := make([]domain.Comment, len(t.Comments))
	copy(out, t.Comments)
	return out, nil
}

// ToggleVote mirrors the atomic pipeline: remove from the opposite set, then
// toggle membership in the target set.
func (r *stubTicketRepo) ToggleVote(_ context.Context, id, userID string, dir ports.VoteDirection) (*ports.VoteCounts, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	target, opposite := &t.Upvotes, &t.Downvotes
	if dir == ports.VoteDown {
		target, opposite = &t.Downvotes, &t.Upvotes
	}

	*opposite = removeID(*opposite, userID)
	if containsID(*target, userID) {
		*target = removeID(*target, userID)
	} else {
		*target = append(*target, userID)
	}
	t.UpdatedAt = time.Now().UTC()

	return &ports.VoteCounts{Upvotes: len(t.Upvotes), Downvotes: len(t.Downvotes)}, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// stubNotifier records every notification synchronously.
type stubNotifier struct {
	sent []ports.Notification
}

func (n *stubNotifier) Notify(notification ports.Notification) {
	n.sent = append(n.sent, notification)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var (
	endUser  = &domain.User{ID: "user_enduser", Username: "alice", Email: "alice@example.com", Role: domain.RoleEndUser}
	agent    = &domain.User{ID: "user_agent", Username: "bob", Email: "bob@example.com", Role: domain.RoleSupportAgent}
	admin    = &domain.User{ID: "user_admin", Username: "carol", Email: "carol@example.com", Role: domain.RoleAdmin}
	otherEnd = &domain.User{ID: "user_other", Username: "dave", Email: "dave@example.com", Role: domain.RoleEndUser}
)

type ticketFixture struct {
	svc        *TicketService
	tickets    *stubTicketRepo
	users      *stubUserRepo
	categories *stubCategoryRepo
	notifier   *stubNotifier
	category   *domain.Category
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()

	users := newStubUserRepo(endUser, agent, admin, otherEnd)
	categories := newStubCategoryRepo()
	category, err := categories.Create(context.Background(), &domain.Category{Name: "Billing"})
	if err != nil {
		t.Fatalf("seeding category: %v", err)
	}
	tickets := newStubTicketRepo()
	notifier := &stubNotifier{}

	return &ticketFixture{
		svc:        NewTicketService(tickets, users, categories, notifier, discardLogger),
		tickets:    tickets,
		users:      users,
		categories: categories,
		notifier:   notifier,
		category:   category,
	}
}

func (f *ticketFixture) createTicket(t *testing.T, actor *domain.User) *ports.TicketView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), actor, ports.CreateTicketInput{
		Subject:     "Printer on fire",
		Description: "It is literally on fire.",
		Category:    f.category.ID,
	})
	if err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	return view
}

func strptr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestTicketService_Create_Success(t *testing.T) {
	f := newTicketFixture(t)

	view, err := f.svc.Create(context.Background(), endUser, ports.CreateTicketInput{
		Subject:     "  Printer on fire  ",
		Description: "flames everywhere",
		Category:    f.category.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Ticket.Subject != "Printer on fire" {
		t.Errorf("subject not trimmed: %q", view.Ticket.Subject)
	}
	if view.Ticket.Status != domain.StatusOpen {
		t.Errorf("expected status %q, got %q", domain.StatusOpen, view.Ticket.Status)
	}
	if view.Ticket.Priority != domain.PriorityLow {
		t.Errorf("expected default priority %q, got %q", domain.PriorityLow, view.Ticket.Priority)
	}
	if view.Ticket.CreatedByID != endUser.ID {
		t.Errorf("expected creator %q, got %q", endUser.ID, view.Ticket.CreatedByID)
	}
	if view.Refs.CategoryName != "Billing" {
		t.Errorf("expected category name resolved, got %q", view.Refs.CategoryName)
	}
}

func TestTicketService_Create_NotifiesCreator(t *testing.T) {
	f := newTicketFixture(t)

	f.createTicket(t, endUser)

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.sent))
	}
	n := f.notifier.sent[0]
	if n.Kind != ports.NotifyTicketCreated {
		t.Errorf("expected kind %q, got %q", ports.NotifyTicketCreated, n.Kind)
	}
	if len(n.Recipients) != 1 || n.Recipients[0].Email != endUser.Email {
		t.Errorf("expected creator as sole recipient, got %+v", n.Recipients)
	}
}

func TestTicketService_Create_UnknownCategory(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.svc.Create(context.Background(), endUser, ports.CreateTicketInput{
		Subject:     "Help",
		Description: "desc",
		Category:    "cat_missing",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.tickets.tickets) != 0 {
		t.Error("nothing must be persisted when the category does not exist")
	}
	if len(f.notifier.sent) != 0 {
		t.Error("no notification must be sent for a failed create")
	}
}

func TestTicketService_Create_SubjectTooLong(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.svc.Create(context.Background(), endUser, ports.CreateTicketInput{
		Subject:     strings.Repeat("x", domain.MaxTicketSubject+1),
		Description: "desc",
		Category:    f.category.ID,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTicketService_Create_InvalidPriority(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.svc.Create(context.Background(), endUser, ports.CreateTicketInput{
		Subject:     "Help",
		Description: "desc",
		Category:    f.category.ID,
		Priority:    "Critical",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Get tests
// ---------------------------------------------------------------------------

func TestTicketService_Get_VisibleToCreatorAssigneeAdmin(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	if _, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(agent.ID),
	}); err != nil {
		t.Fatalf("assigning: %v", err)
	}

	for _, actor := range []*domain.User{endUser, agent, admin} {
		if _, err := f.svc.Get(context.Background(), actor, view.Ticket.ID); err != nil {
			t.Errorf("%s should see the ticket: %v", actor.Username, err)
		}
	}
}

func TestTicketService_Get_HiddenFromUnrelatedEndUser(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.Get(context.Background(), otherEnd, view.Ticket.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List tests
// ---------------------------------------------------------------------------

func TestTicketService_List_EndUserScopedToOwnTickets(t *testing.T) {
	f := newTicketFixture(t)
	f.createTicket(t, endUser)
	f.createTicket(t, otherEnd)

	result, err := f.svc.List(context.Background(), endUser, ports.ListTicketsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 ticket, got %d", result.Total)
	}
	if result.Items[0].Ticket.CreatedByID != endUser.ID {
		t.Error("end-user must only see own tickets")
	}
	if f.tickets.lastFilter.CreatedBy != endUser.ID {
		t.Errorf("expected CreatedBy scoping in filter, got %q", f.tickets.lastFilter.CreatedBy)
	}
}

func TestTicketService_List_AgentSeesAll(t *testing.T) {
	f := newTicketFixture(t)
	f.createTicket(t, endUser)
	f.createTicket(t, otherEnd)

	result, err := f.svc.List(context.Background(), agent, ports.ListTicketsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("agent must see all tickets, got %d", result.Total)
	}
}

func TestTicketService_List_MyTicketsNarrowsToAssignee(t *testing.T) {
	f := newTicketFixture(t)
	first := f.createTicket(t, endUser)
	f.createTicket(t, otherEnd)

	if _, err := f.svc.Update(context.Background(), agent, first.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(agent.ID),
	}); err != nil {
		t.Fatalf("assigning: %v", err)
	}

	result, err := f.svc.List(context.Background(), agent, ports.ListTicketsInput{MyTickets: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 assigned ticket, got %d", result.Total)
	}
	if result.Items[0].Ticket.ID != first.Ticket.ID {
		t.Error("my_tickets must return only the assigned ticket")
	}
}

func TestTicketService_List_FilterCannotWidenEndUserScope(t *testing.T) {
	f := newTicketFixture(t)
	f.createTicket(t, endUser)
	f.createTicket(t, otherEnd)

	result, err := f.svc.List(context.Background(), endUser, ports.ListTicketsInput{
		Extra: map[string]string{"created_by": otherEnd.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 ticket, got %d", result.Total)
	}
	if result.Items[0].Ticket.CreatedByID != endUser.ID {
		t.Error("a created_by filter must not override end-user scoping")
	}
}

func TestTicketService_List_FilterCannotWidenMyTickets(t *testing.T) {
	f := newTicketFixture(t)
	first := f.createTicket(t, endUser)
	second := f.createTicket(t, otherEnd)

	if _, err := f.svc.Update(context.Background(), agent, first.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(agent.ID),
	}); err != nil {
		t.Fatalf("assigning first: %v", err)
	}
	if _, err := f.svc.Update(context.Background(), admin, second.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(admin.ID),
	}); err != nil {
		t.Fatalf("assigning second: %v", err)
	}

	result, err := f.svc.List(context.Background(), agent, ports.ListTicketsInput{
		MyTickets: true,
		Extra:     map[string]string{"assigned_to": admin.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 ticket, got %d", result.Total)
	}
	if result.Items[0].Ticket.ID != first.Ticket.ID {
		t.Error("an assigned_to filter must not override my_tickets scoping")
	}
}

func TestTicketService_List_ExtraFilterNarrows(t *testing.T) {
	f := newTicketFixture(t)
	f.createTicket(t, endUser)
	urgent, err := f.svc.Create(context.Background(), endUser, ports.CreateTicketInput{
		Subject:     "Invoice duplicated",
		Description: "Charged twice this month.",
		Category:    f.category.ID,
		Priority:    string(domain.PriorityUrgent),
	})
	if err != nil {
		t.Fatalf("creating urgent ticket: %v", err)
	}

	result, err := f.svc.List(context.Background(), admin, ports.ListTicketsInput{
		Extra: map[string]string{"priority": string(domain.PriorityUrgent)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 ticket, got %d", result.Total)
	}
	if result.Items[0].Ticket.ID != urgent.Ticket.ID {
		t.Error("priority filter must narrow to the urgent ticket")
	}
}

func TestTicketService_List_UnknownSortKey(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.svc.List(context.Background(), agent, ports.ListTicketsInput{SortBy: "subject"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTicketService_List_CapsLimit(t *testing.T) {
	f := newTicketFixture(t)
	f.createTicket(t, endUser)

	result, err := f.svc.List(context.Background(), admin, ports.ListTicketsInput{Limit: 10000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Limit != 100 {
		t.Errorf("expected limit capped at 100, got %d", result.Limit)
	}
}

// ---------------------------------------------------------------------------
// Update tests
// ---------------------------------------------------------------------------

func TestTicketService_Update_StatusByAgent(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)
	f.notifier.sent = nil

	updated, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		Status: strptr(string(domain.StatusResolved)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Ticket.Status != domain.StatusResolved {
		t.Errorf("expected status %q, got %q", domain.StatusResolved, updated.Ticket.Status)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.sent))
	}
	if f.notifier.sent[0].Kind != ports.NotifyTicketUpdated {
		t.Errorf("expected kind %q, got %q", ports.NotifyTicketUpdated, f.notifier.sent[0].Kind)
	}
	if !strings.Contains(f.notifier.sent[0].Summary, "Resolved") {
		t.Errorf("summary should mention the new status, got %q", f.notifier.sent[0].Summary)
	}
}

func TestTicketService_Update_StatusByEndUserForbidden(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.Update(context.Background(), endUser, view.Ticket.ID, ports.UpdateTicketInput{
		Status: strptr(string(domain.StatusClosed)),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTicketService_Update_UnknownStatus(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		Status: strptr("Reopened"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTicketService_Update_AssignToEndUserRejected(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(otherEnd.ID),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTicketService_Update_ClearAssignee(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	if _, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(agent.ID),
	}); err != nil {
		t.Fatalf("assigning: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Ticket.AssignedToID != "" {
		t.Errorf("expected assignee cleared, got %q", updated.Ticket.AssignedToID)
	}
}

func TestTicketService_Update_DescriptionByNonCreatorForbidden(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		Description: strptr("rewritten"),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTicketService_Update_DescriptionByCreator(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	updated, err := f.svc.Update(context.Background(), endUser, view.Ticket.ID, ports.UpdateTicketInput{
		Description: strptr("now with more detail"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Ticket.Description != "now with more detail" {
		t.Errorf("description not updated: %q", updated.Ticket.Description)
	}
}

func TestTicketService_Update_NoRecognizedField_NoOpSuccess(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)
	f.notifier.sent = nil

	updated, err := f.svc.Update(context.Background(), endUser, view.Ticket.ID, ports.UpdateTicketInput{})
	if err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if updated.Ticket.ID != view.Ticket.ID {
		t.Error("no-op update must return the current ticket")
	}
	if len(f.notifier.sent) != 0 {
		t.Error("no-op update must not notify")
	}
}

func TestTicketService_Update_UnrelatedEndUserForbidden(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.Update(context.Background(), otherEnd, view.Ticket.ID, ports.UpdateTicketInput{
		Description: strptr("not yours"),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTicketService_Update_NotifiesCreatorAndAssignee(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	if _, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		AssignedTo: strptr(agent.ID),
	}); err != nil {
		t.Fatalf("assigning: %v", err)
	}
	f.notifier.sent = nil

	if _, err := f.svc.Update(context.Background(), agent, view.Ticket.ID, ports.UpdateTicketInput{
		Status: strptr(string(domain.StatusInProgress)),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.sent))
	}
	emails := map[string]bool{}
	for _, rcpt := range f.notifier.sent[0].Recipients {
		emails[rcpt.Email] = true
	}
	if !emails[endUser.Email] || !emails[agent.Email] {
		t.Errorf("expected creator and assignee as recipients, got %+v", f.notifier.sent[0].Recipients)
	}
}

// ---------------------------------------------------------------------------
// Delete tests
// ---------------------------------------------------------------------------

func TestTicketService_Delete_AdminOnly(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	if err := f.svc.Delete(context.Background(), endUser, view.Ticket.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("creator delete: expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), agent, view.Ticket.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("agent delete: expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), admin, view.Ticket.ID); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
	if len(f.tickets.tickets) != 0 {
		t.Error("ticket must be gone after admin delete")
	}
}

// ---------------------------------------------------------------------------
// Comment tests
// ---------------------------------------------------------------------------

func TestTicketService_AddComment_AppendsAndNotifies(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)
	f.notifier.sent = nil

	comments, err := f.svc.AddComment(context.Background(), endUser, view.Ticket.ID, "any update?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	if comments[0].Text != "any update?" || comments[0].CommentedBy != endUser.ID {
		t.Errorf("comment not recorded correctly: %+v", comments[0])
	}
	if comments[0].CreatedAt.IsZero() {
		t.Error("comment timestamp must not be zero")
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Kind != ports.NotifyCommentAdded {
		t.Errorf("expected a comment_added notification, got %+v", f.notifier.sent)
	}
}

func TestTicketService_AddComment_EmptyTextRejected(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.AddComment(context.Background(), endUser, view.Ticket.ID, "   ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	stored, _ := f.tickets.FindByID(context.Background(), view.Ticket.ID)
	if len(stored.Comments) != 0 {
		t.Error("rejected comment must not be stored")
	}
}

func TestTicketService_AddComment_UnrelatedEndUserForbidden(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.AddComment(context.Background(), otherEnd, view.Ticket.ID, "me too")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Vote tests
// ---------------------------------------------------------------------------

func TestTicketService_Vote_OwnTicketForbidden(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	_, err := f.svc.Vote(context.Background(), endUser, view.Ticket.ID, ports.VoteUp)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTicketService_Vote_ToggleIsIdempotentPair(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	counts, err := f.svc.Vote(context.Background(), otherEnd, view.Ticket.ID, ports.VoteUp)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if counts.Upvotes != 1 || counts.Downvotes != 0 {
		t.Errorf("after first upvote: %+v", counts)
	}

	counts, err = f.svc.Vote(context.Background(), otherEnd, view.Ticket.ID, ports.VoteUp)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if counts.Upvotes != 0 || counts.Downvotes != 0 {
		t.Errorf("double upvote must cancel out: %+v", counts)
	}
}

func TestTicketService_Vote_SwitchingSidesIsExclusive(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	if _, err := f.svc.Vote(context.Background(), otherEnd, view.Ticket.ID, ports.VoteUp); err != nil {
		t.Fatalf("upvote: %v", err)
	}
	counts, err := f.svc.Vote(context.Background(), otherEnd, view.Ticket.ID, ports.VoteDown)
	if err != nil {
		t.Fatalf("downvote: %v", err)
	}
	if counts.Upvotes != 0 || counts.Downvotes != 1 {
		t.Errorf("switching sides must move the vote, got %+v", counts)
	}

	stored, _ := f.tickets.FindByID(context.Background(), view.Ticket.ID)
	if stored.HasUpvote(otherEnd.ID) {
		t.Error("user must not remain in the upvote set after downvoting")
	}
	if !stored.HasDownvote(otherEnd.ID) {
		t.Error("user must be in the downvote set after downvoting")
	}
}

// ---------------------------------------------------------------------------
// Reference resolution tests
// ---------------------------------------------------------------------------

func TestTicketService_Get_DanglingCategoryResolvesEmpty(t *testing.T) {
	f := newTicketFixture(t)
	view := f.createTicket(t, endUser)

	if err := f.categories.Delete(context.Background(), f.category.ID); err != nil {
		t.Fatalf("deleting category: %v", err)
	}

	got, err := f.svc.Get(context.Background(), endUser, view.Ticket.ID)
	if err != nil {
		t.Fatalf("ticket must survive its category: %v", err)
	}
	if got.Refs.CategoryName != "" {
		t.Errorf("dangling category must resolve to empty name, got %q", got.Refs.CategoryName)
	}
	if got.Ticket.CategoryID != f.category.ID {
		t.Error("the raw category reference must be preserved")
	}
}
