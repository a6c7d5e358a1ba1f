package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGemini(serverURL string) *GeminiClient {
	c := NewGeminiClient("")
	c.baseURL = serverURL
	return c
}

func candidateResponse(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]}}]}`
}

func TestGeminiGenerate(t *testing.T) {
	var gotReq geminiRequest
	var gotKey string
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(candidateResponse("the answer"))); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	c := newTestGemini(srv.URL)
	answer, err := c.Generate(context.Background(), "secret-key", "the prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("expected answer %q, got %q", "the answer", answer)
	}

	if gotKey != "secret-key" {
		t.Errorf("expected key query param, got %q", gotKey)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 || gotReq.Contents[0].Parts[0].Text != "the prompt" {
		t.Errorf("unexpected contents payload: %+v", gotReq.Contents)
	}

	cfg := gotReq.GenerationConfig
	if cfg.Temperature != 0.4 || cfg.TopK != 20 || cfg.TopP != 0.8 || cfg.MaxOutputTokens != 800 {
		t.Errorf("unexpected generation config: %+v", cfg)
	}
}

func TestGeminiGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	c := newTestGemini(srv.URL)
	_, err := c.Generate(context.Background(), "key", "prompt")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", upstream.Status)
	}
	if upstream.Body != "quota exceeded" {
		t.Errorf("expected raw body preserved, got %q", upstream.Body)
	}
}

func TestGeminiGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestGemini(srv.URL)
	_, err := c.Generate(context.Background(), "key", "prompt")
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestGeminiGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(candidateResponse("late")))
	}))
	defer srv.Close()

	c := newTestGemini(srv.URL)
	c.client = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := c.Generate(context.Background(), "key", "prompt")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestGeminiGenerateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestGemini(srv.URL)
	_, err := c.Generate(context.Background(), "key", "prompt")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestGeminiGenerateMissingKey(t *testing.T) {
	c := NewGeminiClient("")
	if _, err := c.Generate(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
