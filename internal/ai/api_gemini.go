package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/jobfiller/jobfiller/internal/logging"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel   = "gemini-2.0-flash"
	// fallbackGeminiModel is the known-stable cheap model used when a
	// premium alias 404s for the given key
	fallbackGeminiModel = "gemini-2.0-flash-lite"

	geminiTimeout    = 30 * time.Second
	geminiMaxRetries = 3
)

// retryHintRe matches the "retry in 12.5s" hint Gemini embeds in 429 bodies
var retryHintRe = regexp.MustCompile(`retry in ([0-9.]+)s`)

// GeminiProvider implements Provider against the generateContent REST API
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	sleep   func(time.Duration) // Swapped out in tests
	log     logging.Tagged
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{},
		sleep:   time.Sleep,
		log:     logging.WithTag("Gemini"),
	}
}

// ID returns the provider identifier
func (p *GeminiProvider) ID() string {
	return "gemini"
}

// Configured reports whether an API key is present
func (p *GeminiProvider) Configured() bool {
	return p.apiKey != ""
}

// Infer sends one prompt to Gemini with retry, backoff and model
// downgrade handling. 429/503 are retried within a 3-attempt budget;
// a 404/400 on a premium alias downgrades to the stable cheap model
// without consuming a retry slot.
func (p *GeminiProvider) Infer(ctx context.Context, req *Request) (string, error) {
	if p.apiKey == "" {
		return "", &ProviderError{
			Provider: p.ID(),
			Kind:     FailureAuthMissing,
			Message:  "Gemini API key not set",
		}
	}

	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	if req.JSONMode {
		// JSON mode sticks to a known-stable model
		model = defaultGeminiModel
	}

	genConfig := &geminiGenConfig{
		Temperature:     0.3,
		MaxOutputTokens: 8192,
	}
	if req.JSONMode {
		genConfig.ResponseMimeType = "application/json"
	}

	retryCount := 0
	for {
		text, retryAfter, err := p.call(ctx, model, req.Prompt, genConfig)
		if err == nil {
			return text, nil
		}

		var pe *ProviderError
		if !errors.As(err, &pe) {
			return "", err
		}

		switch pe.Kind {
		case FailureModelNotFound:
			// 404/400 on a premium alias: downgrade immediately, don't
			// burn a retry slot
			if model == "gemini-2.5-flash" || model == defaultGeminiModel {
				p.log.Warnf("Model %s failed, falling back to %s", model, fallbackGeminiModel)
				model = fallbackGeminiModel
				continue
			}
			return "", err

		case FailureRateLimited, FailureUnavailable:
			if retryCount >= geminiMaxRetries-1 {
				return "", err
			}
			wait := p.backoff(pe.Kind, retryAfter, retryCount)
			p.log.Warnf("API %d error, retrying in %s (%d/%d)", pe.Status, wait, retryCount+1, geminiMaxRetries)
			p.sleep(wait)
			retryCount++
			continue

		default:
			return "", err
		}
	}
}

// backoff computes the wait before the next attempt. 429 honors the
// server hint plus a safety margin, otherwise backs off aggressively;
// 503 uses a milder linear ramp.
func (p *GeminiProvider) backoff(kind FailureKind, hint time.Duration, retryCount int) time.Duration {
	if kind == FailureRateLimited {
		if hint > 0 {
			return hint + time.Second
		}
		return 5 * time.Second * time.Duration(retryCount+1)
	}
	return 2 * time.Second * time.Duration(retryCount+1)
}

// call performs one generateContent request
func (p *GeminiProvider) call(ctx context.Context, model, prompt string, genConfig *geminiGenConfig) (string, time.Duration, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: genConfig,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)

	callCtx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		kind := Classify(err)
		if callCtx.Err() == context.DeadlineExceeded {
			kind = FailureTimeout
		}
		return "", 0, &ProviderError{Provider: p.ID(), Kind: kind, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API error: %d", resp.StatusCode)
		var hint time.Duration

		var errResp geminiResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != nil {
			msg = errResp.Error.Message
			if resp.StatusCode == http.StatusTooManyRequests {
				if m := retryHintRe.FindStringSubmatch(msg); m != nil {
					if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
						hint = time.Duration(secs * float64(time.Second))
					}
				}
			}
		}

		kind := kindForStatus(resp.StatusCode)
		if resp.StatusCode == http.StatusBadRequest {
			// A 400 on a premium alias usually means the key can't use
			// that model; treated like a missing model for downgrade
			kind = FailureModelNotFound
		}
		return "", hint, &ProviderError{
			Provider:   p.ID(),
			Kind:       kind,
			Status:     resp.StatusCode,
			Message:    msg,
			RetryAfter: hint,
		}
	}

	var result geminiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", 0, &ProviderError{Provider: p.ID(), Kind: FailureMalformed, Message: err.Error()}
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", 0, &ProviderError{Provider: p.ID(), Kind: FailureMalformed, Message: "no candidates in response"}
	}
	return result.Candidates[0].Content.Parts[0].Text, 0, nil
}
