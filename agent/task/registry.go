package task

import (
	"context"
	"sync"
	"time"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
)

// entry is the single point of mutation for one task id. Every field is
// guarded by mu.
type entry struct {
	mu         sync.Mutex
	task       *a2a.Task
	queue      *EventQueue
	cancel     context.CancelFunc
	createdAt  time.Time
	finishedAt time.Time
	archived   bool
}

// Registry maps task ids to their entries. It is injected into the executor
// and may be shared by readers that only observe queues.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	// tombstones remember the final state of tasks evicted without an archive.
	tombstones map[string]a2a.TaskState
	now        func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		entries:    make(map[string]*entry),
		tombstones: make(map[string]a2a.TaskState),
		now:        time.Now,
	}
}

func (r *Registry) lookup(id string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	en, ok := r.entries[id]
	return en, ok
}

func (r *Registry) getOrCreate(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	en, ok := r.entries[id]
	if !ok {
		en = &entry{queue: newEventQueue(), createdAt: r.now()}
		r.entries[id] = en
	}
	return en
}

// open returns the entry for id unless id belongs to an evicted terminal task.
func (r *Registry) open(id string) (*entry, a2a.TaskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, gone := r.tombstones[id]; gone {
		return nil, state, false
	}
	en, ok := r.entries[id]
	if !ok {
		en = &entry{queue: newEventQueue(), createdAt: r.now()}
		r.entries[id] = en
	}
	return en, "", true
}

func (r *Registry) tombstone(id string) (a2a.TaskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.tombstones[id]
	return state, ok
}

// Queue returns the event queue for id, creating the entry on first reference.
func (r *Registry) Queue(id string) *EventQueue {
	return r.getOrCreate(id).queue
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// evict removes entries that finished, or were referenced without ever
// starting a task, before cutoff. With requireArchived a terminal entry stays
// until its archive write succeeded; without it a tombstone keeps the id
// terminal. It returns the evicted terminal tasks.
func (r *Registry) evict(cutoff time.Time, requireArchived bool) []a2a.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []a2a.Task
	for id, en := range r.entries {
		en.mu.Lock()
		switch {
		case en.task != nil && !en.finishedAt.IsZero() && !en.finishedAt.After(cutoff):
			if requireArchived && !en.archived {
				break
			}
			if !requireArchived {
				r.tombstones[id] = en.task.Status.State
			}
			evicted = append(evicted, en.task.Clone())
			delete(r.entries, id)
		case en.task == nil && !en.createdAt.After(cutoff):
			en.queue.close()
			delete(r.entries, id)
		}
		en.mu.Unlock()
	}
	return evicted
}
