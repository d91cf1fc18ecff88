package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// OpenAIGenerator calls the chat completions API directly. BaseURL may point
// at OpenRouter or any compatible endpoint.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	client := cfg.OpenRouter().Client()
	if client == nil {
		return nil, fmt.Errorf("%w: openai api key is required", contractx.ErrValidation)
	}
	return &OpenAIGenerator{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   int64(cfg.MaxCompletionToken),
		temperature: float64(cfg.Temperature),
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, systemPreamble string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPreamble) != "" {
		messages = append(messages, openai.SystemMessage(systemPreamble))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               g.model,
		Temperature:         openai.Float(g.temperature),
		MaxCompletionTokens: openai.Int(g.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", contractx.ErrModelInvoke, g.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", contractx.ErrModelInvoke, g.model)
	}
	return reply(g.model, resp.Choices[0].Message.Content)
}
