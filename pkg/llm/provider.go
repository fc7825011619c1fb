package llm

import (
	"context"
	"encoding/json"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// TokenHandler is invoked once per generated token during streaming.
// Handlers run synchronously on the provider's read loop.
type TokenHandler func(token string)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and forwards tokens to onToken as
	// they arrive. Returns the complete response text.
	ChatStream(ctx context.Context, history []Message, onToken TokenHandler, options ...Option) (string, error)

	// ChatStructured constrains the model output to the given JSON
	// schema and returns the raw JSON text. Callers own parsing and
	// validation; providers only enforce the output format.
	ChatStructured(ctx context.Context, history []Message, schema json.RawMessage, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
