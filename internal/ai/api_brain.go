package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/jobfiller/jobfiller/internal/logging"
)

const (
	defaultBrainURL = "http://localhost:3000"
	brainTimeout    = 30 * time.Second
)

// BrainProvider talks to the local memory server, which exposes an
// OpenAI-compatible chat endpoint backed by retrieval over the user's
// stored answers.
type BrainProvider struct {
	client  openai.Client
	baseURL string
	model   string
	http    *http.Client
	log     logging.Tagged
}

// NewBrainProvider creates a provider for the brain server at baseURL
func NewBrainProvider(baseURL, model string) *BrainProvider {
	if baseURL == "" {
		baseURL = defaultBrainURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	// The server ignores the key but the SDK requires one
	client := openai.NewClient(
		option.WithAPIKey("local"),
		option.WithBaseURL(baseURL+"/v1"),
	)
	return &BrainProvider{
		client:  client,
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: brainTimeout},
		log:     logging.WithTag("Brain"),
	}
}

// ID returns the provider identifier
func (p *BrainProvider) ID() string {
	return "brain"
}

// Configured reports whether an endpoint is set
func (p *BrainProvider) Configured() bool {
	return p.baseURL != ""
}

// Infer sends one prompt through the brain's chat endpoint
func (p *BrainProvider) Infer(ctx context.Context, req *Request) (string, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.JSONMode {
		obj := shared.NewResponseFormatJSONObjectParam()
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &obj}
	}

	p.log.Infof("Sending request: model=%s json=%v", model, req.JSONMode)

	callCtx, cancel := context.WithTimeout(ctx, brainTimeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(callCtx, params)
	if err != nil {
		p.log.Errorf("Chat error: %v", err)
		return "", &ProviderError{
			Provider: p.ID(),
			Kind:     Classify(err),
			Message:  err.Error(),
		}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ProviderError{
			Provider: p.ID(),
			Kind:     FailureMalformed,
			Message:  "empty response from brain",
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// Memorize pushes a learned fact to the brain's memory endpoint.
// Failures are logged and swallowed; memory writes never block filling.
func (p *BrainProvider) Memorize(ctx context.Context, content string, metadata map[string]string) {
	payload, err := json.Marshal(map[string]any{
		"content":  content,
		"metadata": metadata,
	})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/memory", bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		p.log.Warnf("Memory write failed: %v", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		p.log.Warnf("Memory write rejected: %d", resp.StatusCode)
	}
}

// CheckBrainAvailable checks if the brain server responds
func CheckBrainAvailable(baseURL string) bool {
	if baseURL == "" {
		baseURL = defaultBrainURL
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(baseURL, "/") + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
