// Package llm is the client side of the LLM scoring backend: a single
// completion contract (prompt in, text out) and the Ollama provider that
// implements it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProviderOllama is the provider name reported in responses.
const ProviderOllama = "ollama"

// Common errors returned by providers.
var (
	ErrProviderDown  = errors.New("llm: provider unavailable")
	ErrInvalidModel  = errors.New("llm: invalid model")
	ErrEmptyResponse = errors.New("llm: empty response")
)

// GenerateRequest is a single non-streaming completion request.
type GenerateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

// Response is the decoded result of a completion.
type Response struct {
	Text     string        `json:"text"`
	Done     bool          `json:"done"`
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Usage    Usage         `json:"usage"`
	Latency  time.Duration `json:"latency"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generator produces a completion for a prompt. Implementations must be
// safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Response, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (*Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (*Response, error) {
	return f(ctx, req)
}

// String returns a human-readable summary of the response.
func (r *Response) String() string {
	truncated := r.Text
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		r.Provider, r.Model, truncated, r.Usage.TotalTokens, r.Latency.Round(time.Millisecond))
}
