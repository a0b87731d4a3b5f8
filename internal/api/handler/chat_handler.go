package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickdesk/helpdesk/internal/core/ports"
)

type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat handles POST /chat. The assistant only answers read queries on behalf
// of the acting user; anything it cannot interpret yields a help reply.
//
// @Summary      Ask the help-desk assistant
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      chatRequest  true  "Free-text message"
// @Success      200   {object}  envelope
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reply, err := h.service.Chat(c.Request().Context(), actor, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(chatResponse{Reply: reply}))
}
