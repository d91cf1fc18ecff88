package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	"github.com/tanpawarit/travel-agent-mesh/agent/jsonrpc"
)

const maxCardBytes = 1 << 20

type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	headers    map[string]string
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithHeader sets a header on every request, e.g. a pass-through Authorization.
func WithHeader(key, value string) ClientOption {
	return func(o *clientOptions) {
		if strings.TrimSpace(key) != "" {
			o.headers[key] = value
		}
	}
}

// Client talks to one remote agent: JSON-RPC on its base URL plus the card endpoint.
type Client struct {
	baseURL    string
	rpc        *jsonrpc.Client
	httpClient *http.Client
	headers    map[string]string
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: agent base url is required", contractx.ErrValidation)
	}

	o := &clientOptions{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		headers:    map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	rpcOpts := []jsonrpc.ClientOption{jsonrpc.WithHTTPClient(o.httpClient)}
	for k, v := range o.headers {
		rpcOpts = append(rpcOpts, jsonrpc.WithHeader(k, v))
	}
	rpc, err := jsonrpc.NewClient(baseURL+"/", rpcOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    baseURL,
		rpc:        rpc,
		httpClient: o.httpClient,
		headers:    o.headers,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage returns the first event the agent answers with: a Message,
// a Task or a status update.
func (c *Client) SendMessage(ctx context.Context, params MessageSendParams) (Event, error) {
	var raw json.RawMessage
	if err := c.rpc.Call(ctx, MethodSendMessage, params, &raw); err != nil {
		return nil, err
	}
	return DecodeEvent(raw)
}

func (c *Client) GetTask(ctx context.Context, params TaskQueryParams) (Task, error) {
	var task Task
	if err := c.rpc.Call(ctx, MethodGetTask, params, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (c *Client) CancelTask(ctx context.Context, taskID string) (Task, error) {
	var task Task
	if err := c.rpc.Call(ctx, MethodCancelTask, TaskIDParams{ID: taskID}, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (c *Client) SetPushConfig(ctx context.Context, cfg TaskPushNotificationConfig) (TaskPushNotificationConfig, error) {
	var out TaskPushNotificationConfig
	if err := c.rpc.Call(ctx, MethodSetPushConfig, cfg, &out); err != nil {
		return TaskPushNotificationConfig{}, err
	}
	return out, nil
}

// Card fetches the agent's discovery document.
func (c *Client) Card(ctx context.Context) (AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+AgentCardPath, nil)
	if err != nil {
		return AgentCard{}, fmt.Errorf("build agent card request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AgentCard{}, fmt.Errorf("fetch agent card: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCardBytes))
	if err != nil {
		return AgentCard{}, fmt.Errorf("read agent card: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return AgentCard{}, fmt.Errorf("agent card http status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var card AgentCard
	if err := json.Unmarshal(body, &card); err != nil {
		return AgentCard{}, fmt.Errorf("decode agent card: %w", err)
	}
	return card, nil
}
