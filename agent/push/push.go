// Package push delivers finished tasks to client-registered push endpoints.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	qstashx "github.com/tanpawarit/travel-agent-mesh/pkg/qstash"
)

const HeaderNotificationToken = "X-A2A-Notification-Token"

// headers carries the config token and a bearer credential when the
// config names the Bearer scheme.
func headers(cfg a2a.PushNotificationConfig) http.Header {
	h := http.Header{}
	if cfg.Token != "" {
		h.Set(HeaderNotificationToken, cfg.Token)
	}
	if auth := cfg.Authentication; auth != nil && auth.Credentials != "" {
		for _, scheme := range auth.Schemes {
			if strings.EqualFold(scheme, "bearer") {
				h.Set("Authorization", "Bearer "+auth.Credentials)
				break
			}
		}
	}
	return h
}

// WebhookNotifier POSTs the task JSON straight to the config URL.
type WebhookNotifier struct {
	client *http.Client
}

func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{client: &http.Client{Timeout: timeout}}
}

func (n *WebhookNotifier) Notify(ctx context.Context, cfg a2a.PushNotificationConfig, task a2a.Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("%w: encode task %s: %v", contractx.ErrPushDelivery, task.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrPushDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers(cfg) {
		req.Header[key] = values
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrPushDelivery, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s answered %d", contractx.ErrPushDelivery, cfg.URL, resp.StatusCode)
	}
	log.Ctx(ctx).Debug().Str("task_id", task.ID).Str("config_id", cfg.ID).Msg("push delivered")
	return nil
}

// Publisher is the part of the QStash client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, req qstashx.PublishRequest) (qstashx.PublishResponse, error)
}

// QStashNotifier hands delivery to QStash, which retries on the
// endpoint's behalf.
type QStashNotifier struct {
	publisher Publisher
}

func NewQStashNotifier(p Publisher) *QStashNotifier {
	return &QStashNotifier{publisher: p}
}

func (n *QStashNotifier) Notify(ctx context.Context, cfg a2a.PushNotificationConfig, task a2a.Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("%w: encode task %s: %v", contractx.ErrPushDelivery, task.ID, err)
	}

	resp, err := n.publisher.Publish(ctx, qstashx.PublishRequest{
		Destination: cfg.URL,
		Body:        body,
		Headers:     headers(cfg),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrPushDelivery, err)
	}
	log.Ctx(ctx).Debug().Str("task_id", task.ID).Str("message_id", resp.MessageID).Msg("push queued on qstash")
	return nil
}
