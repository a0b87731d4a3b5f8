package ports

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/core/domain"
)

// Intent is the assistant's classification of a free-text message.
type Intent struct {
	Action string            // e.g. "list_tickets", "list_categories", "list_users", "help"
	Params map[string]string // optional filters extracted from the message
}

// Assistant is the narrow interface to the external LLM collaborator. It only
// reads: classified intents are routed through the same role-gated query paths
// as any other caller, and the assistant is never handed a mutation.
type Assistant interface {
	ClassifyIntent(ctx context.Context, text string) (*Intent, error)
	Summarize(ctx context.Context, data any, instructions string) (string, error)
}

// ChatService answers a free-text message on behalf of the acting user.
type ChatService interface {
	Chat(ctx context.Context, actor *domain.User, message string) (string, error)
}
