package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGenerator("secret", "", srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.HTTPClient = srv.Client()
	return g
}

func TestGeneratorSendsChatCompletion(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)

	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" 82 \n"}}]}`))
	})

	output, err := g.GenerateContent(context.Background(), "score me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "82" {
		t.Fatalf("unexpected output: %q", output)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotBody["model"] != DefaultModel {
		t.Fatalf("unexpected model: %v", gotBody["model"])
	}

	temperature, ok := gotBody["temperature"]
	if !ok {
		t.Fatal("expected temperature to be sent")
	}
	if temperature != float64(0) {
		t.Fatalf("unexpected temperature: %v", temperature)
	}

	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %v", gotBody["messages"])
	}
	msg, _ := messages[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "score me" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error message", status: http.StatusUnauthorized, body: `{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`, wantErr: "status 401: Invalid API Key"},
		{name: "plain error body", status: http.StatusBadGateway, body: "upstream down", wantErr: "status 502: upstream down"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "garbage", status: http.StatusOK, body: `not json`, wantErr: "decode chat response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := g.GenerateContent(context.Background(), "prompt")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGeneratorReturnsEmptyContent(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  \n"}}]}`))
	})

	output, err := g.GenerateContent(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "" {
		t.Fatalf("expected empty output, got %q", output)
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	calls := 0
	g := newTestGenerator(t, func(http.ResponseWriter, *http.Request) { calls++ })

	if _, err := g.GenerateContent(context.Background(), " \n "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if calls != 0 {
		t.Fatalf("expected no requests, got %d", calls)
	}
}

func TestNewGenerator(t *testing.T) {
	if _, err := NewGenerator("", "", ""); err == nil {
		t.Fatal("expected error without api key")
	}

	g, err := NewGenerator("key", "mixtral", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Model() != "mixtral" {
		t.Fatalf("unexpected model: %q", g.Model())
	}
	if g.baseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url: %q", g.baseURL)
	}
}
