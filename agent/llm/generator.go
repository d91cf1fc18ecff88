// Package llm builds the text Generator used by the orchestrator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// ErrNotConfigured is returned by New when no backend is enabled.
var ErrNotConfigured = errors.New("llm generator is not configured")

// New builds the generator for cfg's backend.
func New(ctx context.Context, cfg Config) (contractx.Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	switch cfg.backend() {
	case BackendOpenAI:
		return NewOpenAIGenerator(cfg)
	case BackendAnthropic:
		return NewAnthropicGenerator(cfg), nil
	default:
		m, err := cfg.OpenRouter().ChatModel(ctx)
		if err != nil {
			return nil, err
		}
		return NewChatModelGenerator(m, cfg.Model), nil
	}
}

// ChatModelGenerator adapts an eino chat model.
type ChatModelGenerator struct {
	model model.BaseChatModel
	name  string
}

func NewChatModelGenerator(m model.BaseChatModel, name string) *ChatModelGenerator {
	return &ChatModelGenerator{model: m, name: name}
}

func (g *ChatModelGenerator) Generate(ctx context.Context, prompt string, systemPreamble string) (string, error) {
	if g == nil || g.model == nil {
		return "", fmt.Errorf("%w: chat model is nil", contractx.ErrModelInvoke)
	}

	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(systemPreamble) != "" {
		msgs = append(msgs, schema.SystemMessage(systemPreamble))
	}
	msgs = append(msgs, schema.UserMessage(prompt))

	out, err := g.model.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", contractx.ErrModelInvoke, g.name, err)
	}
	if out == nil {
		return "", fmt.Errorf("%w: %s returned no message", contractx.ErrModelInvoke, g.name)
	}
	return reply(g.name, out.Content)
}

func reply(modelName, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: %s returned an empty reply", contractx.ErrModelInvoke, modelName)
	}
	log.Debug().Str("model", modelName).Int("reply_len", len(content)).Msg("llm reply")
	return content, nil
}
