// Package brainserver runs the local memory server: an OpenAI-compatible
// chat endpoint that answers with the user's profile and learned
// answers folded in, plus a memory endpoint the autofill engine pushes
// learned facts to.
package brainserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/logging"
	"github.com/jobfiller/jobfiller/internal/profile"
)

// MemoryStore persists learned facts and serves the profile snapshot
type MemoryStore interface {
	Load() (*profile.Context, error)
	LearnQnA(question, answer string, tags ...string) (bool, error)
}

// Server wires the HTTP surface over a provider chain and a store.
// The chain here must not contain the brain provider itself.
type Server struct {
	ai    *ai.Orchestrator
	store MemoryStore
	log   logging.Tagged
}

// New creates a server
func New(orchestrator *ai.Orchestrator, store MemoryStore) *Server {
	return &Server{
		ai:    orchestrator,
		store: store,
		log:   logging.WithTag("Brain"),
	}
}

// Router builds the chi router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(90 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/chat/completions", s.handleChat)
	r.Post("/v1/memory", s.handleMemory)

	return r
}

// ListenAndServe blocks until ctx is cancelled or the listener fails
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// chatRequest is the OpenAI-compatible request subset we accept
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}

	prompt := s.augment(flattenMessages(req.Messages))
	jsonMode := req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object"

	text, err := s.ai.Infer(r.Context(), &ai.Request{
		Prompt:   prompt,
		JSONMode: jsonMode,
		Model:    req.Model,
	})
	if err != nil {
		s.log.Errorf("Inference failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"object":  "chat.completion",
		"model":   req.Model,
		"created": time.Now().Unix(),
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": text},
			},
		},
	})
}

// memoryRequest is one fact pushed by the autofill engine after a
// successful AI resolution
type memoryRequest struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	var req memoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, answer := splitFact(req.Content, req.Metadata)
	if question == "" || answer == "" {
		writeError(w, http.StatusBadRequest, "content must carry a question and answer")
		return
	}

	created, err := s.store.LearnQnA(question, answer, "learned")
	if err != nil {
		s.log.Errorf("Memory write failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store memory")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "created": created})
}

// augment prefixes the conversation with the stored profile so the
// backing model answers with the user's real data
func (s *Server) augment(prompt string) string {
	prof, err := s.store.Load()
	if err != nil {
		s.log.Warnf("Profile load failed, answering without context: %v", err)
		return prompt
	}

	ctx := prof.PromptContext()
	if ctx == "" {
		return prompt
	}
	return "KNOWN USER CONTEXT:\n" + ctx + "\n\n" + prompt
}

// flattenMessages folds a chat transcript into one prompt, keeping
// system instructions first
func flattenMessages(messages []struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}) string {
	var parts []string
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		if m.Role == "system" {
			parts = append([]string{m.Content}, parts...)
			continue
		}
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// splitFact extracts a question/answer pair from a memory payload.
// Structured metadata wins; otherwise the content is split on the
// first "question:"/"answer:" markers.
func splitFact(content string, metadata map[string]string) (question, answer string) {
	if q, a := metadata["question"], metadata["answer"]; q != "" && a != "" {
		return q, a
	}

	lower := strings.ToLower(content)
	qIdx := strings.Index(lower, "question:")
	aIdx := strings.Index(lower, "answer:")
	if qIdx >= 0 && aIdx > qIdx {
		question = strings.TrimSpace(content[qIdx+len("question:") : aIdx])
		answer = strings.TrimSpace(content[aIdx+len("answer:"):])
		return question, answer
	}

	// "Question = Answer" single-line form
	if parts := strings.SplitN(content, "=", 2); len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": msg},
	})
}
