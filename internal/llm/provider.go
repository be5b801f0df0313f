package llm

import (
	"context"
	"encoding/json"
)

// Provider is the text generation capability the quiz generator depends on.
// Implementations wrap one vendor SDK and normalize its errors into the
// typed errors in errors.go.
type Provider interface {
	// Generate sends a prompt and returns the completion. When req.Schema is
	// set, the provider asks for JSON output and validates the content
	// against the schema before returning it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System sets the model's role and output rules.
	System string

	// Messages is the conversation. Quiz generation sends a single user turn.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// Providers with native structured output send it to the API; all
	// providers validate the returned content against it.
	Schema *Schema

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Temperature controls sampling randomness. Zero leaves the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema, e.g. "ruby-quiz". Used as the OpenAI
	// schema name and as the compile cache key.
	Name string

	// Description is sent to providers that accept one.
	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated text exactly as returned by the provider.
	// It is raw JSON only if the model complied; callers must still parse it.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
