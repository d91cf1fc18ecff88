package task

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// Notifier delivers a finished task to one push endpoint.
type Notifier interface {
	Notify(ctx context.Context, cfg a2a.PushNotificationConfig, task a2a.Task) error
}

// PushStore keeps push configs per task id.
type PushStore struct {
	mu      sync.RWMutex
	configs map[string][]a2a.PushNotificationConfig
}

func NewPushStore() *PushStore {
	return &PushStore{configs: make(map[string][]a2a.PushNotificationConfig)}
}

// Set adds or replaces a config by id. A missing id is generated.
func (s *PushStore) Set(taskID string, cfg a2a.PushNotificationConfig) (a2a.PushNotificationConfig, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return a2a.PushNotificationConfig{}, fmt.Errorf("%w: push notification url is required", contractx.ErrInvalidParams)
	}
	if strings.TrimSpace(cfg.ID) == "" {
		cfg.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.configs[taskID]
	for i := range list {
		if list[i].ID == cfg.ID {
			list[i] = cfg
			return cfg, nil
		}
	}
	s.configs[taskID] = append(list, cfg)
	return cfg, nil
}

// Get returns the config with cfgID, or the first one when cfgID is empty.
func (s *PushStore) Get(taskID, cfgID string) (a2a.PushNotificationConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.configs[taskID]
	if strings.TrimSpace(cfgID) == "" {
		if len(list) == 0 {
			return a2a.PushNotificationConfig{}, false
		}
		return list[0], true
	}
	for _, cfg := range list {
		if cfg.ID == cfgID {
			return cfg, true
		}
	}
	return a2a.PushNotificationConfig{}, false
}

func (s *PushStore) List(taskID string) []a2a.PushNotificationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]a2a.PushNotificationConfig(nil), s.configs[taskID]...)
}

func (s *PushStore) Delete(taskID, cfgID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.configs[taskID]
	for i, cfg := range list {
		if cfg.ID == cfgID {
			s.configs[taskID] = append(list[:i:i], list[i+1:]...)
			if len(s.configs[taskID]) == 0 {
				delete(s.configs, taskID)
			}
			return true
		}
	}
	return false
}

func (s *PushStore) Forget(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, taskID)
}
