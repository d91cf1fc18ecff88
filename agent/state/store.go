// Package state archives finished tasks so they survive eviction from the live registry.
package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
)

var (
	ErrRecordNotFound = errors.New("archived task not found")
	ErrNilRecord      = errors.New("archived task is nil")
	ErrInvalidTaskID  = errors.New("task id is empty")
)

// Record is one archived task.
type Record struct {
	Agent      string    `json:"agent"`
	Task       a2a.Task  `json:"task"`
	ArchivedAt time.Time `json:"archivedAt"`
}

func (r *Record) Validate() error {
	if r == nil {
		return ErrNilRecord
	}
	if strings.TrimSpace(r.Task.ID) == "" {
		return ErrInvalidTaskID
	}
	if !r.Task.Status.State.Terminal() {
		return fmt.Errorf("task %s is %s, only terminal tasks are archived", r.Task.ID, r.Task.Status.State)
	}
	return nil
}

func (r *Record) normalize() {
	if r.ArchivedAt.IsZero() {
		r.ArchivedAt = time.Now().UTC()
	} else {
		r.ArchivedAt = r.ArchivedAt.UTC()
	}
}

// Store is the archive contract used by the task executor.
type Store interface {
	Load(ctx context.Context, taskID string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, taskID string) error
}

func validTaskID(taskID string) (string, error) {
	trimmed := strings.TrimSpace(taskID)
	if trimmed == "" {
		return "", ErrInvalidTaskID
	}
	return trimmed, nil
}
