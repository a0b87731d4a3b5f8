package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickdesk/helpdesk/internal/api/metrics"
	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// reservedQueryKeys are interpreted by the list endpoint itself and are
// stripped before the remaining query parameters are treated as field-equality
// filters. A caller can therefore never filter on these as document fields.
var reservedQueryKeys = map[string]struct{}{
	"select":     {},
	"sort":       {},
	"page":       {},
	"limit":      {},
	"search":     {},
	"status":     {},
	"category":   {},
	"my_tickets": {},
}

// AttachmentStore persists uploaded files; removal is best-effort cleanup.
type AttachmentStore interface {
	Save(originalName string, src io.Reader) (string, error)
	Remove(name string) error
}

type TicketHandler struct {
	service ports.TicketService
	store   AttachmentStore
}

func NewTicketHandler(service ports.TicketService, store AttachmentStore) *TicketHandler {
	return &TicketHandler{service: service, store: store}
}

// Create handles POST /tickets. Accepts either a JSON body or a
// multipart/form-data body with attachment files under "attachments".
//
// @Summary      Open a new ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTicketRequest  true  "Ticket details"
// @Success      201   {object}  envelope
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createTicketRequest
	var attachments []string

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		req = createTicketRequest{
			Subject:     c.FormValue("subject"),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			Priority:    c.FormValue("priority"),
		}
		attachments, err = h.saveAttachments(c)
		if err != nil {
			return err
		}
	} else {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}

	if err := c.Validate(&req); err != nil {
		h.cleanupAttachments(attachments)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.Create(c.Request().Context(), actor, ports.CreateTicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Attachments: attachments,
	})
	if err != nil {
		h.cleanupAttachments(attachments)
		return err
	}

	metrics.TicketsCreatedTotal.WithLabelValues(string(view.Ticket.Priority)).Inc()
	return c.JSON(http.StatusCreated, ok(toTicketResponse(*view)))
}

// List handles GET /tickets with role-scoped visibility, search, filters,
// sorting, and pagination.
//
// @Summary      List tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        search      query     string  false  "Free-text search over subject and description"
// @Param        status      query     string  false  "Status filter"
// @Param        category    query     string  false  "Category id filter"
// @Param        my_tickets  query     bool    false  "Support agents: only tickets assigned to me"
// @Param        sort        query     string  false  "Sort key: created_at or updated_at, '-' prefix for descending"
// @Param        page        query     int     false  "Page (1-based)"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  envelope
// @Failure      401         {object}  map[string]string
// @Router       /tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	input, err := parseListInput(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), actor, input)
	if err != nil {
		return err
	}

	items := toTicketResponses(result.Items)
	return c.JSON(http.StatusOK, okList(items, len(items), result.Total, paginationResponse{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	}))
}

// Get handles GET /tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	view, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(toTicketResponse(*view)))
}

// Update handles PUT /tickets/:id.
func (h *TicketHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), ports.UpdateTicketInput{
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}

	if req.Status != nil {
		metrics.TicketStatusChangesTotal.WithLabelValues(*req.Status).Inc()
	}
	return c.JSON(http.StatusOK, ok(toTicketResponse(*view)))
}

// Delete handles DELETE /tickets/:id (admin only).
func (h *TicketHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true})
}

// Comment handles POST /tickets/:id/comment and returns the full updated
// comment list.
func (h *TicketHandler) Comment(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	comments, err := h.service.AddComment(c.Request().Context(), actor, c.Param("id"), req.Text)
	if err != nil {
		return err
	}

	metrics.CommentsAddedTotal.Inc()
	count := len(comments)
	return c.JSON(http.StatusOK, envelope{Success: true, Data: toCommentResponses(comments), Count: &count})
}

// Upvote handles PUT /tickets/:id/upvote.
func (h *TicketHandler) Upvote(c echo.Context) error {
	return h.vote(c, ports.VoteUp)
}

// Downvote handles PUT /tickets/:id/downvote.
func (h *TicketHandler) Downvote(c echo.Context) error {
	return h.vote(c, ports.VoteDown)
}

func (h *TicketHandler) vote(c echo.Context, dir ports.VoteDirection) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	counts, err := h.service.Vote(c.Request().Context(), actor, c.Param("id"), dir)
	if err != nil {
		return err
	}

	metrics.VotesCastTotal.WithLabelValues(string(dir)).Inc()
	return c.JSON(http.StatusOK, ok(voteResponse{Upvotes: counts.Upvotes, Downvotes: counts.Downvotes}))
}

// parseListInput splits the query string into the recognized list parameters
// and ad-hoc equality filters. Filter keys containing '$' or '.' are rejected
// to keep raw query operators out of the database.
func parseListInput(c echo.Context) (ports.ListTicketsInput, error) {
	input := ports.ListTicketsInput{
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
	}

	if v, err := strconv.ParseBool(c.QueryParam("my_tickets")); err == nil {
		input.MyTickets = v
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	if sort := c.QueryParam("sort"); sort != "" {
		if strings.HasPrefix(sort, "-") {
			input.SortDesc = true
			sort = sort[1:]
		}
		input.SortBy = sort
	} else {
		input.SortDesc = true // newest first by default
	}

	extra := map[string]string{}
	for key, values := range c.QueryParams() {
		if _, reserved := reservedQueryKeys[key]; reserved || len(values) == 0 {
			continue
		}
		if strings.ContainsAny(key, "$.") {
			return input, fmt.Errorf("%w: invalid filter key %q", domain.ErrValidation, key)
		}
		extra[key] = values[0]
	}
	if len(extra) > 0 {
		input.Extra = extra
	}

	return input, nil
}

// saveAttachments stores every uploaded file and returns the stored names.
// On any failure the files stored so far are removed again.
func (h *TicketHandler) saveAttachments(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}

	var stored []string
	for _, fh := range form.File["attachments"] {
		src, err := fh.Open()
		if err != nil {
			h.cleanupAttachments(stored)
			return nil, fmt.Errorf("open attachment: %w", err)
		}

		name, err := h.store.Save(fh.Filename, src)
		src.Close()
		if err != nil {
			h.cleanupAttachments(stored)
			return nil, err
		}
		stored = append(stored, name)
	}
	return stored, nil
}

// cleanupAttachments removes just-uploaded files after a failed create. Best
// effort: a file that is already gone is fine, and errors are ignored since
// the request is failing anyway.
func (h *TicketHandler) cleanupAttachments(names []string) {
	for _, name := range names {
		_ = h.store.Remove(name)
	}
}
