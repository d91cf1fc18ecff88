package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	openaisdk "github.com/openai/openai-go"
)

func TestClientSendsAttributionHeaders(t *testing.T) {
	t.Parallel()

	got := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`))
	}))
	t.Cleanup(srv.Close)

	client := Config{BaseURL: srv.URL, APIKey: "key", SiteURL: "https://travel.example", SiteName: "Travel Mesh"}.Client()
	if client == nil {
		t.Fatal("Client() = nil")
	}
	_, err := client.Chat.Completions.New(context.Background(), openaisdk.ChatCompletionNewParams{
		Model:    "m",
		Messages: []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}

	h := <-got
	if h.Get("HTTP-Referer") != "https://travel.example" || h.Get("X-Title") != "Travel Mesh" {
		t.Fatalf("headers = %v", h)
	}
	if h.Get("Authorization") != "Bearer key" {
		t.Fatalf("authorization = %q", h.Get("Authorization"))
	}
}

func TestClientNeedsAPIKey(t *testing.T) {
	t.Parallel()

	if (Config{}).Client() != nil {
		t.Fatal("Client() without key should be nil")
	}
	if got := (Config{}).baseURL(); got != DefaultBaseURL {
		t.Fatalf("baseURL = %q", got)
	}
}
