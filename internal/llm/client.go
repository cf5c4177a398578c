// Package llm provides the chat-completion client used by the assistant's
// planner and responder calls. The contract is deliberately narrow: one
// call in, free text (or a JSON object when JSON mode is requested) out.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat-completion request.
type Request struct {
	Messages []Message
	// JSONMode asks the provider to return a JSON object.
	JSONMode bool
}

// Client defines the interface for chat-completion providers.
type Client interface {
	Chat(ctx context.Context, req Request) (string, error)
}

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// StatusError is returned when a provider responds with a non-2xx status.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm provider error (status %d): %s", e.StatusCode, e.Body)
}
