package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

func (e *Executor) requirePush(ctx context.Context, taskID string) error {
	if e.notifier == nil {
		return contractx.ErrPushNotSupported
	}
	if strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("%w: task id is required", contractx.ErrInvalidParams)
	}
	if _, err := e.Get(ctx, taskID, nil); err != nil {
		return err
	}
	return nil
}

func (e *Executor) SetPushConfig(ctx context.Context, cfg a2a.TaskPushNotificationConfig) (a2a.TaskPushNotificationConfig, error) {
	if err := e.requirePush(ctx, cfg.TaskID); err != nil {
		return a2a.TaskPushNotificationConfig{}, err
	}
	saved, err := e.push.Set(cfg.TaskID, cfg.PushNotificationConfig)
	if err != nil {
		return a2a.TaskPushNotificationConfig{}, err
	}
	return a2a.TaskPushNotificationConfig{TaskID: cfg.TaskID, PushNotificationConfig: saved}, nil
}

func (e *Executor) GetPushConfig(ctx context.Context, taskID, cfgID string) (a2a.TaskPushNotificationConfig, error) {
	if err := e.requirePush(ctx, taskID); err != nil {
		return a2a.TaskPushNotificationConfig{}, err
	}
	cfg, ok := e.push.Get(taskID, cfgID)
	if !ok {
		return a2a.TaskPushNotificationConfig{}, fmt.Errorf("%w: no push notification config %q for task %s", contractx.ErrInvalidParams, cfgID, taskID)
	}
	return a2a.TaskPushNotificationConfig{TaskID: taskID, PushNotificationConfig: cfg}, nil
}

func (e *Executor) ListPushConfigs(ctx context.Context, taskID string) ([]a2a.TaskPushNotificationConfig, error) {
	if err := e.requirePush(ctx, taskID); err != nil {
		return nil, err
	}
	configs := e.push.List(taskID)
	out := make([]a2a.TaskPushNotificationConfig, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, a2a.TaskPushNotificationConfig{TaskID: taskID, PushNotificationConfig: cfg})
	}
	return out, nil
}

func (e *Executor) DeletePushConfig(ctx context.Context, taskID, cfgID string) error {
	if err := e.requirePush(ctx, taskID); err != nil {
		return err
	}
	if !e.push.Delete(taskID, cfgID) {
		return fmt.Errorf("%w: no push notification config %q for task %s", contractx.ErrInvalidParams, cfgID, taskID)
	}
	return nil
}
