package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExecClientRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submissions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("wait"); got != "true" {
			t.Errorf("expected wait=true, got %q", got)
		}

		var sub submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		if sub.SourceCode != "console.log(1)" {
			t.Errorf("unexpected source %q", sub.SourceCode)
		}
		if sub.LanguageID != defaultLanguageID {
			t.Errorf("expected default language %d, got %d", defaultLanguageID, sub.LanguageID)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"stdout": "1\n",
			"stderr": nil,
			"time":   "0.02",
			"memory": 8124,
			"status": map[string]any{"id": 3, "description": "Accepted"},
		})
	}))
	defer srv.Close()

	client := NewExecClient(srv.URL, 5*time.Second)
	result, err := client.Run(context.Background(), Request{Code: "console.log(1)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Stdout != "1\n" {
		t.Fatalf("unexpected stdout %q", result.Stdout)
	}
	if result.Status != "Accepted" {
		t.Fatalf("unexpected status %q", result.Status)
	}
	if result.Memory != 8124 {
		t.Fatalf("unexpected memory %d", result.Memory)
	}
}

func TestExecClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "queue is full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewExecClient(srv.URL, 5*time.Second)
	if _, err := client.Run(context.Background(), Request{Code: "x"}); err == nil {
		t.Fatalf("expected error from upstream failure")
	}
}

func TestExecClientExplicitLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sub submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		if sub.LanguageID != 71 {
			t.Errorf("expected language 71, got %d", sub.LanguageID)
		}
		json.NewEncoder(w).Encode(map[string]any{"status": map[string]any{"description": "Accepted"}})
	}))
	defer srv.Close()

	client := NewExecClient(srv.URL, 5*time.Second)
	if _, err := client.Run(context.Background(), Request{Code: "print(1)", LanguageID: 71}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
