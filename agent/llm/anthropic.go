package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

type AnthropicGenerator struct {
	client      *anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewAnthropicGenerator(cfg Config) *AnthropicGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if base := strings.TrimSpace(cfg.AnthropicBaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicGenerator{
		client:      &client,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   int64(cfg.MaxCompletionToken),
		temperature: float64(cfg.Temperature),
	}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string, systemPreamble string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(g.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if strings.TrimSpace(systemPreamble) != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPreamble}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", contractx.ErrModelInvoke, g.model, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return reply(g.model, sb.String())
}
