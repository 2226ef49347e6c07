package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// FailureKind classifies provider failures for the fallback policy
type FailureKind string

const (
	FailureNetwork       FailureKind = "network"
	FailureTimeout       FailureKind = "timeout"
	FailureRateLimited   FailureKind = "rate_limited"
	FailureUnavailable   FailureKind = "service_unavailable"
	FailureAuthMissing   FailureKind = "auth_missing"
	FailureModelNotFound FailureKind = "model_not_found"
	FailureMalformed     FailureKind = "malformed_response"
)

// ProviderError is a typed failure from one provider call
type ProviderError struct {
	Provider   string
	Kind       FailureKind
	Status     int
	Message    string
	RetryAfter time.Duration // Populated for rate limits carrying a hint
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// Classify maps an arbitrary error to a FailureKind
func Classify(err error) FailureKind {
	if err == nil {
		return ""
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timed out"), strings.Contains(msg, "timeout"):
		return FailureTimeout
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"), strings.Contains(msg, "429"):
		return FailureRateLimited
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "api key"), strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return FailureAuthMissing
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"), strings.Contains(msg, "failed to fetch"):
		return FailureNetwork
	}
	return FailureNetwork
}

// kindForStatus maps an HTTP status to a FailureKind
func kindForStatus(status int) FailureKind {
	switch status {
	case 401, 403:
		return FailureAuthMissing
	case 404:
		return FailureModelNotFound
	case 429:
		return FailureRateLimited
	case 503:
		return FailureUnavailable
	default:
		return FailureNetwork
	}
}
