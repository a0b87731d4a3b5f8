// Package llm implements the Assistant port against an Ollama-compatible
// generate endpoint. The model is an external collaborator: it classifies and
// phrases, and is never handed anything that can mutate data.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// Config holds the LLM endpoint settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks JSON over HTTP to the model backend.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const classifyPrompt = `You are the intent classifier for a help-desk assistant.
Classify the user message into exactly one action:
- "list_tickets": the user asks about support tickets. Optional params: "status" (Open, In Progress, Resolved, Closed), "search" (free text), "my_tickets" ("true" when they ask for tickets assigned to them).
- "list_categories": the user asks what categories exist.
- "list_users": the user asks about help-desk users or agents.
- "help": anything else.

Respond with ONLY a JSON object like {"action":"list_tickets","params":{"status":"Open"}}.

User message: %s`

// ClassifyIntent asks the model to map free text to an action plus params.
func (c *Client) ClassifyIntent(ctx context.Context, text string) (*ports.Intent, error) {
	raw, err := c.generate(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		return nil, err
	}

	var intent struct {
		Action string            `json:"action"`
		Params map[string]string `json:"params"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &intent); err != nil {
		return nil, fmt.Errorf("parse intent %q: %w", raw, err)
	}
	if intent.Params == nil {
		intent.Params = map[string]string{}
	}
	return &ports.Intent{Action: intent.Action, Params: intent.Params}, nil
}

// Summarize asks the model for a natural-language rendering of data.
func (c *Client) Summarize(ctx context.Context, data any, instructions string) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal summary data: %w", err)
	}

	prompt := fmt.Sprintf("%s\n\nData (JSON):\n%s\n\nAnswer in plain text, no JSON.", instructions, payload)
	reply, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm request: status %d: %s", resp.StatusCode, b)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	return out.Response, nil
}

// extractJSON pulls the first JSON object out of a model reply, tolerating
// leading prose or markdown fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
