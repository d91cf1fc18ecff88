// Package qstash is a minimal client for the Upstash QStash publish API.
package qstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	URL     string        `split_words:"true" default:"https://qstash.upstash.io"`
	Token   string        `split_words:"true" required:"true"`
	Retries int           `split_words:"true" default:"3"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

type Client struct {
	baseURL    string
	token      string
	retries    int
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("qstash url is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("qstash token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		retries: cfg.Retries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	return client, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// PublishRequest asks QStash to deliver Body to Destination. Headers are
// forwarded to the destination as-is.
type PublishRequest struct {
	Destination string
	Body        []byte
	ContentType string
	Headers     http.Header
	Delay       time.Duration
}

type PublishResponse struct {
	MessageID string `json:"messageId"`
}

func (c *Client) Publish(ctx context.Context, req PublishRequest) (PublishResponse, error) {
	if _, err := url.ParseRequestURI(req.Destination); err != nil {
		return PublishResponse{}, fmt.Errorf("qstash destination: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/publish/"+req.Destination, bytes.NewReader(req.Body))
	if err != nil {
		return PublishResponse{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	httpReq.Header.Set("Content-Type", contentType)
	if c.retries > 0 {
		httpReq.Header.Set("Upstash-Retries", strconv.Itoa(c.retries))
	}
	if req.Delay > 0 {
		httpReq.Header.Set("Upstash-Delay", strconv.Itoa(int(req.Delay.Seconds()))+"s")
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add("Upstash-Forward-"+key, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return PublishResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return PublishResponse{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PublishResponse{}, fmt.Errorf("qstash publish: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out PublishResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return PublishResponse{}, fmt.Errorf("qstash publish: decode response: %w", err)
	}
	return out, nil
}
