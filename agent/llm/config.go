package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	openrouterx "github.com/tanpawarit/travel-agent-mesh/pkg/openrouter"
)

const (
	BackendOpenRouter = "openrouter"
	BackendOpenAI     = "openai"
	BackendAnthropic  = "anthropic"
	BackendNone       = "none"
)

// Config is loaded with the LLM prefix.
type Config struct {
	Backend            string        `envconfig:"BACKEND" split_words:"true" default:"openrouter"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	AnthropicBaseURL   string        `envconfig:"ANTHROPIC_BASE_URL" split_words:"true"`
}

func (c Config) Validate() error {
	switch c.backend() {
	case BackendOpenRouter, BackendOpenAI, BackendAnthropic, BackendNone:
	default:
		return fmt.Errorf("%w: unknown llm backend %q", contractx.ErrValidation, c.Backend)
	}
	if c.MaxCompletionToken <= 0 {
		return fmt.Errorf("%w: max completion token must be positive", contractx.ErrValidation)
	}
	if c.Enabled() && strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required for backend %s", contractx.ErrValidation, c.backend())
	}
	return nil
}

// Enabled reports whether a generator can be built. Without an api key the
// orchestrator runs on its fallback narrative.
func (c Config) Enabled() bool {
	return c.backend() != BackendNone && strings.TrimSpace(c.APIKey) != ""
}

func (c Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendOpenRouter
	}
	return b
}

func (c Config) OpenRouter() openrouterx.Config {
	return openrouterx.Config{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxCompletionToken,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
		SiteURL:     c.SiteURL,
		SiteName:    c.SiteName,
	}
}
