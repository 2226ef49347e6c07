package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/jobfiller/jobfiller/internal/logging"
)

const (
	defaultOllamaURL = "http://localhost:11434"
	// Local inference is slow on CPU; give it twice the cloud budget
	ollamaTimeout = 60 * time.Second
)

// OllamaProvider implements Provider for a local Ollama server using
// the official SDK.
type OllamaProvider struct {
	client  *api.Client
	baseURL string
	model   string
	log     logging.Tagged
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		parsedURL, _ = url.Parse(defaultOllamaURL)
	}

	return &OllamaProvider{
		client:  api.NewClient(parsedURL, &http.Client{}),
		baseURL: baseURL,
		model:   model,
		log:     logging.WithTag("Ollama"),
	}
}

// ID returns the provider identifier
func (p *OllamaProvider) ID() string {
	return "ollama"
}

// Configured reports whether an endpoint and model are set
func (p *OllamaProvider) Configured() bool {
	return p.baseURL != "" && p.model != ""
}

// Infer sends one prompt to Ollama and returns the full response text
func (p *OllamaProvider) Infer(ctx context.Context, req *Request) (string, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	messages := p.buildMessages(req, model)

	stream := false
	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{"temperature": 0.1},
	}
	if req.JSONMode {
		chatReq.Format = json.RawMessage(`"json"`)
	}

	p.log.Infof("Sending request: model=%s json=%v", model, req.JSONMode)

	callCtx, cancel := context.WithTimeout(ctx, ollamaTimeout)
	defer cancel()

	var content strings.Builder
	err := p.client.Chat(callCtx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		p.log.Errorf("Chat error: %v", err)
		return "", &ProviderError{
			Provider: p.ID(),
			Kind:     Classify(err),
			Message:  err.Error(),
		}
	}

	if content.Len() == 0 {
		return "", &ProviderError{
			Provider: p.ID(),
			Kind:     FailureMalformed,
			Message:  "empty response from model",
		}
	}
	return content.String(), nil
}

// buildMessages composes the system/user message pair. DeepSeek
// distills refuse a separate system turn, so the instruction is folded
// into the user message for those models.
func (p *OllamaProvider) buildMessages(req *Request, model string) []api.Message {
	systemPrompt := "You are a helpful form filling assistant."
	if req.JSONMode {
		systemPrompt = "You are a helpful assistant designed to output JSON."
	}

	if strings.Contains(strings.ToLower(model), "deepseek") {
		return []api.Message{
			{Role: "user", Content: fmt.Sprintf("%s\n\nTask: %s", systemPrompt, req.Prompt)},
		}
	}
	return []api.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: req.Prompt},
	}
}

// CheckOllamaAvailable checks if the Ollama server responds
func CheckOllamaAvailable(baseURL string) bool {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ListOllamaModels returns the models present on the server
func ListOllamaModels(baseURL string) ([]string, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(parsedURL, &http.Client{Timeout: 5 * time.Second})
	resp, err := client.List(context.Background())
	if err != nil {
		return nil, err
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, m.Name)
	}
	return models, nil
}
