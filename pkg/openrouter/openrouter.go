// Package openrouter configures OpenAI-compatible clients for OpenRouter.
package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Models that reject reasoning output unless it is excluded explicitly.
var reasoningExcluded = map[string]bool{
	"x-ai/grok-4.1-fast": true,
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	SiteURL     string
	SiteName    string
}

func (c Config) baseURL() string {
	if u := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"); u != "" {
		return u
	}
	return DefaultBaseURL
}

// Headers returns the attribution headers OpenRouter ranks apps by.
func (c Config) Headers() http.Header {
	h := http.Header{}
	if s := strings.TrimSpace(c.SiteURL); s != "" {
		h.Set("HTTP-Referer", s)
	}
	if s := strings.TrimSpace(c.SiteName); s != "" {
		h.Set("X-Title", s)
	}
	return h
}

type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header[k] = v
	}
	return t.base.RoundTrip(r)
}

func (c Config) httpClient() *http.Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: headerTransport{base: http.DefaultTransport, headers: c.Headers()},
	}
}

// ChatModel builds an eino chat model on the OpenRouter endpoint.
func (c Config) ChatModel(ctx context.Context) (model.ToolCallingChatModel, error) {
	name := strings.TrimSpace(c.Model)
	if name == "" {
		return nil, fmt.Errorf("openrouter: model is required")
	}

	conf := &openaimodel.ChatModelConfig{
		BaseURL:    c.baseURL(),
		APIKey:     strings.TrimSpace(c.APIKey),
		Model:      name,
		HTTPClient: c.httpClient(),
	}
	if c.MaxTokens > 0 {
		maxTokens := c.MaxTokens
		conf.MaxTokens = &maxTokens
	}
	temperature := c.Temperature
	conf.Temperature = &temperature

	if reasoningExcluded[name] {
		conf.ExtraFields = map[string]any{
			"reasoning": map[string]any{"exclude": true, "effort": "none"},
		}
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create chat model: %w", err)
	}
	return m, nil
}

// Client returns an openai-go client for the endpoint, or nil without an api key.
func (c Config) Client() *openaisdk.Client {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return nil
	}

	client := openaisdk.NewClient(
		option.WithAPIKey(key),
		option.WithBaseURL(c.baseURL()),
		option.WithHTTPClient(c.httpClient()),
	)
	return &client
}
