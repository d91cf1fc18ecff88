package task

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweep evicts tasks that have been terminal for at least the retention
// window. Evicted tasks stay readable through the archive; a task whose
// archive write has not succeeded stays live.
func (e *Executor) Sweep() int {
	evicted := e.registry.evict(e.now().Add(-e.retention), e.archive != nil)
	for _, t := range evicted {
		e.push.Forget(t.ID)
	}
	if len(evicted) > 0 {
		log.Debug().Str("agent", string(e.agent)).Int("evicted", len(evicted)).Msg("task janitor sweep")
	}
	return len(evicted)
}

// RunJanitor sweeps every interval until ctx is done.
func (e *Executor) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = e.retention / 4
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep()
		}
	}
}
