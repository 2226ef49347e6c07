package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/jobfiller/jobfiller/internal/config"
	"github.com/jobfiller/jobfiller/internal/logging"
)

// ErrAllProvidersFailed is returned when every provider in the chain
// was attempted (or skipped as unconfigured) without producing text
var ErrAllProvidersFailed = errors.New("all AI providers failed")

// Orchestrator walks an ordered provider chain until one answers.
// The chain is fixed at construction from settings; each field request
// walks it fresh, so a provider that failed for one field is still
// attempted for the next.
type Orchestrator struct {
	chain []Provider
	log   logging.Tagged
}

// NewOrchestrator builds the provider chain from settings.
//
// The brain goes first when enabled: it has the user's memory and is
// cheap. After that the primary/fallback pair depends on whether the
// user prefers local inference. A fallback is only appended when its
// credential or endpoint is actually present, so the chain never
// contains a provider that is guaranteed to fail on auth.
func NewOrchestrator(settings *config.Settings) *Orchestrator {
	var chain []Provider

	if settings.UseBrain {
		chain = append(chain, NewBrainProvider(settings.BrainURL, settings.BrainModel))
	}

	ollama := NewOllamaProvider(settings.OllamaURL, settings.OllamaModel)
	gemini := NewGeminiProvider(settings.GeminiAPIKey, settings.GeminiModel)

	if settings.UseLocalModel {
		chain = append(chain, ollama)
		if settings.HasCloudAuth() {
			chain = append(chain, gemini)
		}
	} else {
		chain = append(chain, gemini)
		if settings.HasLocalEndpoint() {
			chain = append(chain, ollama)
		}
	}

	return &Orchestrator{
		chain: chain,
		log:   logging.WithTag("AI"),
	}
}

// NewOrchestratorWithChain builds an orchestrator over an explicit
// provider list. Used by tests and the brain server, which must not
// route back through itself.
func NewOrchestratorWithChain(providers ...Provider) *Orchestrator {
	return &Orchestrator{
		chain: providers,
		log:   logging.WithTag("AI"),
	}
}

// Providers returns the chain in attempt order
func (o *Orchestrator) Providers() []Provider {
	return o.chain
}

// Infer walks the chain until a provider returns text. Unconfigured
// providers are skipped silently. Every attempted provider resolves
// within its own timeout, so the walk always terminates with either
// text or an error; the caller never hangs on an undecided field.
func (o *Orchestrator) Infer(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	attempted := 0

	for _, p := range o.chain {
		if !p.Configured() {
			o.log.Infof("Skipping %s: not configured", p.ID())
			continue
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		attempted++
		text, err := p.Infer(ctx, req)
		if err == nil {
			return text, nil
		}

		o.log.Warnf("Provider %s failed (%s), trying next", p.ID(), Classify(err))
		lastErr = err
	}

	if attempted == 0 {
		return "", &ProviderError{
			Provider: "chain",
			Kind:     FailureAuthMissing,
			Message:  "no AI provider is configured",
		}
	}
	return "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}
