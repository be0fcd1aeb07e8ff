package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}

		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Text != "great news" {
			t.Errorf("unexpected text: %q", payload.Text)
		}

		_ = json.NewEncoder(w).Encode(map[string]float64{
			"score":      0.82,
			"confidence": 0.91,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret")

	got, err := c.Analyze(context.Background(), "great news")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.Score != 0.82 || got.Confidence != 0.91 {
		t.Fatalf("unexpected sentiment: %+v", got)
	}
}

func TestAnalyzeNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	if _, err := c.Analyze(context.Background(), "text"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestWarmUp(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = json.NewEncoder(w).Encode(map[string]float64{"score": 0.5, "confidence": 0.1})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	if err := c.WarmUp(context.Background()); err != nil {
		t.Fatalf("warm up: %v", err)
	}
	if !called {
		t.Fatal("warm up should hit the service")
	}
}
