package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorizePostsFact(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Content  string            `json:"content"`
		Metadata map[string]string `json:"metadata"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewBrainProvider(srv.URL, "jobfiller-brain")
	p.Memorize(context.Background(),
		"Question: Notice period Answer: 30 days",
		map[string]string{"question": "Notice period", "answer": "30 days"})

	assert.Equal(t, "/v1/memory", gotPath)
	assert.Equal(t, "Question: Notice period Answer: 30 days", gotBody.Content)
	assert.Equal(t, "30 days", gotBody.Metadata["answer"])
}

func TestMemorizeSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Must not panic or propagate anything
	p := NewBrainProvider(srv.URL, "jobfiller-brain")
	p.Memorize(context.Background(), "Question: Q Answer: A", nil)

	srv.Close()
	p.Memorize(context.Background(), "Question: Q Answer: A", nil)
}

func TestCheckBrainAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.True(t, CheckBrainAvailable(srv.URL))

	srv.Close()
	assert.False(t, CheckBrainAvailable(srv.URL))
}