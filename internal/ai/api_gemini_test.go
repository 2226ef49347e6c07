package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiOK(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(b)
}

func geminiErr(code int, message string) string {
	b, _ := json.Marshal(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
	return string(b)
}

// testGeminiProvider points a provider at a test server and disables
// real sleeping, recording the waits instead.
func testGeminiProvider(t *testing.T, srv *httptest.Server, model string) (*GeminiProvider, *[]time.Duration) {
	t.Helper()
	var waits []time.Duration
	p := NewGeminiProvider("test-key", model)
	p.baseURL = srv.URL
	p.client = srv.Client()
	p.sleep = func(d time.Duration) { waits = append(waits, d) }
	return p, &waits
}

func TestGeminiRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(geminiErr(429, "Resource exhausted")))
			return
		}
		w.Write([]byte(geminiOK("San Francisco")))
	}))
	defer srv.Close()

	p, waits := testGeminiProvider(t, srv, "")
	text, err := p.Infer(context.Background(), &Request{Prompt: "city?"})
	require.NoError(t, err)
	assert.Equal(t, "San Francisco", text)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, *waits)
}

func TestGeminiGivesUpAfterBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(geminiErr(429, "Resource exhausted")))
	}))
	defer srv.Close()

	p, _ := testGeminiProvider(t, srv, "")
	_, err := p.Infer(context.Background(), &Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, FailureRateLimited, Classify(err))
}

func TestGeminiHonorsRetryHint(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(geminiErr(429, "Resource exhausted. Please retry in 7s.")))
			return
		}
		w.Write([]byte(geminiOK("ok")))
	}))
	defer srv.Close()

	p, waits := testGeminiProvider(t, srv, "")
	_, err := p.Infer(context.Background(), &Request{Prompt: "x"})
	require.NoError(t, err)
	require.Len(t, *waits, 1)
	assert.Equal(t, 8*time.Second, (*waits)[0])
}

func TestGeminiServiceUnavailableBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(geminiErr(503, "overloaded")))
			return
		}
		w.Write([]byte(geminiOK("ok")))
	}))
	defer srv.Close()

	p, waits := testGeminiProvider(t, srv, "")
	_, err := p.Infer(context.Background(), &Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestGeminiDowngradesModelWithoutBurningRetries(t *testing.T) {
	var calls atomic.Int32
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Path looks like /<model>:generateContent
		model := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ":generateContent")
		models = append(models, model)
		if model == "gemini-2.5-flash" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(geminiErr(404, "model not found")))
			return
		}
		if calls.Load() <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(geminiErr(429, "Resource exhausted")))
			return
		}
		w.Write([]byte(geminiOK("answer")))
	}))
	defer srv.Close()

	// 404 on the premium alias, then two 429s on the lite model, then
	// success. The downgrade must not consume the retry budget.
	p, _ := testGeminiProvider(t, srv, "gemini-2.5-flash")
	text, err := p.Infer(context.Background(), &Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, "gemini-2.5-flash", models[0])
	assert.Equal(t, fallbackGeminiModel, models[1])
	assert.Equal(t, int32(4), calls.Load())
}

func TestGeminiUnknownModelNotDowngraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(geminiErr(404, "model not found")))
	}))
	defer srv.Close()

	p, _ := testGeminiProvider(t, srv, "gemini-experimental")
	_, err := p.Infer(context.Background(), &Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, FailureModelNotFound, Classify(err))
}

func TestGeminiMissingKey(t *testing.T) {
	p := NewGeminiProvider("", "")
	assert.False(t, p.Configured())

	_, err := p.Infer(context.Background(), &Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, FailureAuthMissing, Classify(err))
}

func TestGeminiJSONModeSetsMimeType(t *testing.T) {
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(geminiOK(`{"ok":true}`)))
	}))
	defer srv.Close()

	p, _ := testGeminiProvider(t, srv, "")
	_, err := p.Infer(context.Background(), &Request{Prompt: "x", JSONMode: true})
	require.NoError(t, err)
	require.NotNil(t, gotBody.GenerationConfig)
	assert.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMimeType)
}

func TestGeminiMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	p, _ := testGeminiProvider(t, srv, "")
	_, err := p.Infer(context.Background(), &Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, FailureMalformed, Classify(err))
}
