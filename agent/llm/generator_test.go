package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestChatModelGenerator(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{reply: "  Enjoy Paris!  "}
	gen := NewChatModelGenerator(fake, "test-model")

	got, err := gen.Generate(context.Background(), "plan", "You are a Travel Orchestrator")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Enjoy Paris!" {
		t.Fatalf("Generate() = %q", got)
	}
	if len(fake.seen) != 2 || fake.seen[0].Role != schema.System || fake.seen[1].Content != "plan" {
		t.Fatalf("messages = %+v", fake.seen)
	}
}

func TestChatModelGeneratorEmptyReplyIsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fake *fakeChatModel
	}{
		{name: "empty", fake: &fakeChatModel{reply: "   "}},
		{name: "model error", fake: &fakeChatModel{err: errors.New("rate limited")}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewChatModelGenerator(tt.fake, "m").Generate(context.Background(), "p", "")
			if !errors.Is(err, contractx.ErrModelInvoke) {
				t.Fatalf("Generate() error = %v, want ErrModelInvoke", err)
			}
			if len(tt.fake.seen) != 1 {
				t.Fatalf("messages = %d, want only the user message", len(tt.fake.seen))
			}
		})
	}
}

func TestOpenAIGenerator(t *testing.T) {
	t.Parallel()

	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Have a great trip."}}]}`))
	}))
	t.Cleanup(srv.Close)

	gen, err := NewOpenAIGenerator(Config{BaseURL: srv.URL, APIKey: "k", Model: "gpt-4o-mini", MaxCompletionToken: 100})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator() error = %v", err)
	}
	got, err := gen.Generate(context.Background(), "plan", "system")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Have a great trip." || gotModel != "gpt-4o-mini" {
		t.Fatalf("Generate() = %q model=%q", got, gotModel)
	}
}

func TestAnthropicGenerator(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"Bon voyage."}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	t.Cleanup(srv.Close)

	gen := NewAnthropicGenerator(Config{APIKey: "k", Model: "claude-test", MaxCompletionToken: 64, AnthropicBaseURL: srv.URL})
	got, err := gen.Generate(context.Background(), "plan", "system")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Bon voyage." {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestNewWithoutAPIKeyIsNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Backend: BackendOpenRouter, Model: "m", MaxCompletionToken: 10})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("New() error = %v, want ErrNotConfigured", err)
	}

	_, err = New(context.Background(), Config{Backend: "carrier-pigeon", MaxCompletionToken: 10})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("New() error = %v, want ErrValidation", err)
	}
}
