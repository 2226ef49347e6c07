package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, ""},
		{"provider error passes through", &ProviderError{Kind: FailureRateLimited}, FailureRateLimited},
		{"wrapped provider error", fmt.Errorf("infer: %w", &ProviderError{Kind: FailureModelNotFound}), FailureModelNotFound},
		{"deadline", context.DeadlineExceeded, FailureTimeout},
		{"timeout message", errors.New("request timed out"), FailureTimeout},
		{"rate limit message", errors.New("429 too many requests"), FailureRateLimited},
		{"auth message", errors.New("invalid API key"), FailureAuthMissing},
		{"connection refused", errors.New("dial tcp: connection refused"), FailureNetwork},
		{"unknown", errors.New("something odd"), FailureNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, FailureAuthMissing, kindForStatus(401))
	assert.Equal(t, FailureAuthMissing, kindForStatus(403))
	assert.Equal(t, FailureModelNotFound, kindForStatus(404))
	assert.Equal(t, FailureRateLimited, kindForStatus(429))
	assert.Equal(t, FailureUnavailable, kindForStatus(503))
	assert.Equal(t, FailureNetwork, kindForStatus(500))
}

func TestProviderErrorString(t *testing.T) {
	e := &ProviderError{Provider: "gemini", Kind: FailureRateLimited, Status: 429, Message: "slow down"}
	assert.Equal(t, "gemini: rate_limited (429): slow down", e.Error())

	e2 := &ProviderError{Provider: "ollama", Kind: FailureNetwork, Message: "refused"}
	assert.Equal(t, "ollama: network: refused", e2.Error())
}
