package state

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
)

const (
	defaultArchivePrefix = "travel:task:"
	defaultArchiveAgent  = "shared"
	maxReplyBytes        = 2 << 20
)

var (
	ErrAgentMismatch = errors.New("archived task belongs to another agent")
	ErrUpstash       = errors.New("upstash request failed")
)

type UpstashConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// UpstashOption customizes UpstashArchive.
type UpstashOption func(*UpstashArchive)

func WithKeyPrefix(prefix string) UpstashOption {
	return func(a *UpstashArchive) {
		if p := strings.TrimSpace(prefix); p != "" {
			a.prefix = p
		}
	}
}

// WithRetention sets how long archived tasks live in Redis. Zero keeps them forever.
func WithRetention(ttl time.Duration) UpstashOption {
	return func(a *UpstashArchive) { a.ttl = ttl }
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(a *UpstashArchive) {
		if client != nil {
			a.http = client
		}
	}
}

// UpstashArchive keeps one agent's finished tasks in Upstash Redis over the
// REST API. Keys are prefix + agent + ":" + task id, so the flight and hotel
// agents can share a database without their task ids colliding.
type UpstashArchive struct {
	endpoint string
	token    string
	agent    string
	prefix   string
	ttl      time.Duration
	http     *http.Client
}

func NewUpstashArchive(cfg UpstashConfig, agent string, opts ...UpstashOption) (*UpstashArchive, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if endpoint == "" {
		return nil, errors.New("upstash url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid upstash url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	agent = strings.TrimSpace(agent)
	if agent == "" {
		agent = defaultArchiveAgent
	}

	a := &UpstashArchive{
		endpoint: endpoint,
		token:    token,
		agent:    agent,
		prefix:   defaultArchivePrefix,
		ttl:      24 * time.Hour,
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.ttl < 0 {
		return nil, errors.New("archive retention must be >= 0")
	}
	return a, nil
}

// Agent is the namespace this archive reads and writes.
func (a *UpstashArchive) Agent() string { return a.agent }

func (a *UpstashArchive) Load(ctx context.Context, taskID string) (*Record, error) {
	key, err := a.key(taskID)
	if err != nil {
		return nil, err
	}

	reply, err := a.call(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if len(reply) == 0 || bytes.Equal(reply, []byte("null")) {
		return nil, ErrRecordNotFound
	}

	// GET returns the stored JSON document as a string.
	var doc string
	if err := json.Unmarshal(reply, &doc); err != nil {
		return nil, fmt.Errorf("decode archived task %s: %w", taskID, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode archived task %s: %w", taskID, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("archived task %s: %w", taskID, err)
	}
	if rec.Agent != a.agent {
		return nil, fmt.Errorf("%w: task %s is archived for %q", ErrAgentMismatch, taskID, rec.Agent)
	}
	return &rec, nil
}

func (a *UpstashArchive) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	switch rec.Agent = strings.TrimSpace(rec.Agent); rec.Agent {
	case "":
		rec.Agent = a.agent
	case a.agent:
	default:
		return fmt.Errorf("%w: %q cannot write to the %q archive", ErrAgentMismatch, rec.Agent, a.agent)
	}
	rec.normalize()

	key, err := a.key(rec.Task.ID)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode archived task %s: %w", rec.Task.ID, err)
	}

	args := []any{"SET", key, string(doc)}
	if a.ttl > 0 {
		args = append(args, "EX", expirySeconds(a.ttl))
	}
	_, err = a.call(ctx, args...)
	return err
}

func (a *UpstashArchive) Delete(ctx context.Context, taskID string) error {
	key, err := a.key(taskID)
	if err != nil {
		return err
	}
	_, err = a.call(ctx, "DEL", key)
	return err
}

func (a *UpstashArchive) key(taskID string) (string, error) {
	id, err := validTaskID(taskID)
	if err != nil {
		return "", err
	}
	return a.prefix + a.agent + ":" + id, nil
}

// call sends one Redis command and returns its raw result.
func (a *UpstashArchive) call(ctx context.Context, args ...any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %v command: %w", args[0], err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %w", ErrUpstash, args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %v reply: %w", ErrUpstash, args[0], err)
	}

	var reply struct {
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil && resp.StatusCode < http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: decode %v reply: %w", ErrUpstash, args[0], err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices || reply.Error != "" {
		return nil, fmt.Errorf("%w: %v status=%d: %s", ErrUpstash, args[0], resp.StatusCode, reply.Error)
	}
	return bytes.TrimSpace(reply.Result), nil
}

// expirySeconds rounds up so a sub-second retention never becomes "no expiry".
func expirySeconds(ttl time.Duration) int64 {
	seconds := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		seconds++
	}
	if seconds < 1 {
		return 1
	}
	return seconds
}
