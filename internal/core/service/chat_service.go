package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

const chatHelpReply = "I can look up your tickets, list categories, or (for admins) list users. " +
	"Try something like: \"show my open tickets\"."

// ChatService routes free-text messages through the LLM assistant. The
// assistant only classifies and summarizes; every data access goes through the
// same role-gated services as any other caller, so it can never read or write
// beyond what the acting user could.
type ChatService struct {
	assistant  ports.Assistant
	tickets    ports.TicketService
	categories ports.CategoryService
	users      ports.UserService
	logger     zerolog.Logger
}

func NewChatService(
	assistant ports.Assistant,
	tickets ports.TicketService,
	categories ports.CategoryService,
	users ports.UserService,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		assistant:  assistant,
		tickets:    tickets,
		categories: categories,
		users:      users,
		logger:     logger,
	}
}

// Chat classifies the message, executes the matching read, and summarizes the
// result. Classification failures degrade to a help reply instead of an error.
func (s *ChatService) Chat(ctx context.Context, actor *domain.User, message string) (string, error) {
	intent, err := s.assistant.ClassifyIntent(ctx, message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("intent classification failed")
		return chatHelpReply, nil
	}

	switch intent.Action {
	case "list_tickets":
		return s.answerTickets(ctx, actor, message, intent.Params)
	case "list_categories":
		return s.answerCategories(ctx, message)
	case "list_users":
		return s.answerUsers(ctx, actor, message)
	default:
		return chatHelpReply, nil
	}
}

func (s *ChatService) answerTickets(ctx context.Context, actor *domain.User, message string, params map[string]string) (string, error) {
	input := ports.ListTicketsInput{
		Status:   params["status"],
		Search:   params["search"],
		Category: params["category"],
	}
	if v, err := strconv.ParseBool(params["my_tickets"]); err == nil {
		input.MyTickets = v
	}

	result, err := s.tickets.List(ctx, actor, input)
	if err != nil {
		return "", err
	}
	return s.summarize(ctx, result.Items, message,
		"Summarize these support tickets for the user in a short, friendly answer.")
}

func (s *ChatService) answerCategories(ctx context.Context, message string) (string, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return "", err
	}
	return s.summarize(ctx, categories, message,
		"List the available ticket categories in a short, friendly answer.")
}

func (s *ChatService) answerUsers(ctx context.Context, actor *domain.User, message string) (string, error) {
	result, err := s.users.List(ctx, actor, 1, 50)
	if err != nil {
		return "", err
	}
	return s.summarize(ctx, result.Items, message,
		"Summarize these help-desk users (name and role) in a short answer.")
}

// summarize asks the assistant for a natural-language rendering of data. On
// failure the caller still gets an answer, just an unpolished one.
func (s *ChatService) summarize(ctx context.Context, data any, message, instructions string) (string, error) {
	reply, err := s.assistant.Summarize(ctx, data, instructions+" The user asked: "+message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("summarization failed")
		return "I found the data you asked for, but could not phrase an answer right now. Please try again.", nil
	}
	return reply, nil
}
