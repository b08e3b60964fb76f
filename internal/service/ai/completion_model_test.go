package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) (*CompletionModel, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	m, err := NewCompletionModel(CompletionConfig{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		CustomerID: "customer@example.com",
		Model:      "anthropic/claude-3.5-sonnet",
	})
	if err != nil {
		t.Fatalf("NewCompletionModel err: %v", err)
	}
	return m, &calls
}

func TestGenerateSendsCompletionRequest(t *testing.T) {
	var body map[string]any
	var auth, customer, path string

	m, calls := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		customer = r.Header.Get("CustomerId")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello\nworld  "}}]}`))
	})

	msg, err := m.Generate(context.Background(),
		[]*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("usr")},
		model.WithTemperature(0.8), model.WithMaxTokens(500))
	if err != nil {
		t.Fatalf("Generate err: %v", err)
	}

	if msg.Content != "  hello\nworld  " {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
	if *calls != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", *calls)
	}
	if path != "/chat/completions" {
		t.Fatalf("unexpected path: %s", path)
	}
	if auth != "Bearer test-key" {
		t.Fatalf("unexpected authorization header: %q", auth)
	}
	if customer != "customer@example.com" {
		t.Fatalf("unexpected CustomerId header: %q", customer)
	}
	if body["model"] != "anthropic/claude-3.5-sonnet" {
		t.Fatalf("unexpected model: %v", body["model"])
	}
	if body["temperature"] != 0.8 {
		t.Fatalf("unexpected temperature: %v", body["temperature"])
	}
	if body["max_tokens"] != float64(500) {
		t.Fatalf("unexpected max_tokens: %v", body["max_tokens"])
	}

	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected two messages, got %v", body["messages"])
	}
	first := messages[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "sys" {
		t.Fatalf("unexpected system message: %v", first)
	}
	second := messages[1].(map[string]any)
	if second["role"] != "user" || second["content"] != "usr" {
		t.Fatalf("unexpected user message: %v", second)
	}
}

func TestGenerateNon2xxIsStatusErrorWithoutRetry(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{"json body", http.StatusInternalServerError, "application/json", `{"error":{"message":"boom"}}`},
		{"plain text body", http.StatusBadGateway, "text/plain", "upstream proxy down"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, calls := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != tc.status {
				t.Fatalf("unexpected status: %d", statusErr.StatusCode)
			}
			if statusErr.Body != tc.body {
				t.Fatalf("expected raw body %q, got %q", tc.body, statusErr.Body)
			}
			if *calls != 1 {
				t.Fatalf("expected no retries, got %d calls", *calls)
			}
		})
	}
}

func TestGenerateWithoutChoicesIsInvalidResponse(t *testing.T) {
	m, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestStreamUnsupported(t *testing.T) {
	m, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := m.Stream(context.Background(), nil); !errors.Is(err, ErrStreamingUnsupported) {
		t.Fatalf("expected ErrStreamingUnsupported, got %v", err)
	}
}

func TestNewCompletionModelRequiresModel(t *testing.T) {
	if _, err := NewCompletionModel(CompletionConfig{BaseURL: "http://localhost"}); err == nil {
		t.Fatal("expected error when model is missing")
	}
}
