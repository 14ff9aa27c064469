// Package llm turns natural language requests into event table filters using a
// local or OpenAI-compatible language model.
package llm

import (
	"context"
	"errors"
)

// ErrNoChoices is returned when a provider answers without any completion.
var ErrNoChoices = errors.New("no response choices returned")

// Role says who authored a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is a chat model. Assistant prompts go through Chat for prose and
// ChatJSON for structured replies.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON decodes the reply into result. Replies wrapped in code fences or
	// prose are unwrapped first.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}
