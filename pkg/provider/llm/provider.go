// Package llm defines the Provider interface for text-generation backends.
//
// An LLM provider wraps a chat-completion API (remote services such as
// OpenAI or Anthropic, or a local Ollama instance) behind one blocking
// Complete call. The pipeline uses it for transcript summarization; nothing
// here streams, calls tools, or tracks context windows.
//
// Providers must be safe for concurrent use.
package llm

import "context"

// Message is one entry of a chat conversation.
type Message struct {
	// Role is "system", "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// CompletionRequest carries everything the model needs for one completion.
// Messages must be non-empty.
type CompletionRequest struct {
	// SystemPrompt is an optional instruction injected before Messages.
	// Providers without a dedicated system slot prepend it as a
	// "system"-role message.
	SystemPrompt string

	// Messages is the ordered conversation. The last message drives the
	// response.
	Messages []Message

	// Temperature controls randomness in [0.0, 2.0]. Zero requests the
	// provider default.
	Temperature float64

	// MaxTokens caps generated tokens. Zero means the provider default.
	MaxTokens int
}

// Usage is the token accounting reported by the backend, when available.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is the model's full reply.
type CompletionResponse struct {
	// Content is the text of the reply.
	Content string

	// Usage holds token counts; all zero when the backend reports none.
	Usage Usage
}

// Provider is the abstraction over any chat-completion backend.
type Provider interface {
	// Name returns a short identifier for logs (e.g. "openai", "ollama").
	Name() string

	// Complete sends req and waits for the full response. It returns an
	// error when the request fails or ctx is cancelled first.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
