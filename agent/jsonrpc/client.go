package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/xid"
)

const maxResponseSizeBytes = 4 << 20

// ClientOption customizes Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithIDGenerator overrides request id generation.
func WithIDGenerator(fn func() string) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.nextID = fn
		}
	}
}

// Client posts JSON-RPC envelopes to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    http.Header
	nextID     func() string
}

func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("jsonrpc endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid jsonrpc endpoint: %w", err)
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    http.Header{},
		nextID:     func() string { return xid.New().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call sends method with params and decodes the result into out when out is non-nil.
// A JSON-RPC error in the response is returned as *Error.
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	id := c.nextID()

	var rawParams json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal %s params: %w", method, err)
		}
		rawParams = encoded
	}

	body, err := json.Marshal(Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  rawParams,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute %s request: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("%s http status=%d body=%s", method, resp.StatusCode, string(raw))
		}
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if parsed.Error != nil {
		return parsed.Error
	}
	if fmt.Sprint(parsed.ID) != id {
		return fmt.Errorf("%s response id mismatch: got %v want %s", method, parsed.ID, id)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(parsed.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
