package ai

import "context"

// Request is one inference request against a provider
type Request struct {
	Prompt   string `json:"prompt"`
	JSONMode bool   `json:"json_mode,omitempty"` // Ask the backend for structured output
	Model    string `json:"model,omitempty"`     // Model override, provider default otherwise
}

// Provider is one AI backend capable of answering a field-filling prompt.
// Infer returns the raw model text or a *ProviderError; it must return a
// definite outcome within its own timeout and never hang.
type Provider interface {
	// ID returns the provider identifier (e.g. "ollama", "gemini", "brain")
	ID() string

	// Configured reports whether the provider has what it needs to be
	// attempted at all (endpoint, credential). Unconfigured providers are
	// skipped by the orchestrator without counting as a failure.
	Configured() bool

	// Infer sends one prompt and returns the model's text response
	Infer(ctx context.Context, req *Request) (string, error)
}
