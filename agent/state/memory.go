package state

import (
	"context"
	"sync"
	"time"
)

// MemoryOption customizes MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryTTL drops records once they are older than ttl. Zero keeps them forever.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemoryStore keeps archived tasks in process memory. Expired records read as
// missing and are pruned on the next Save.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	ttl     time.Duration
	now     func() time.Time
}

type memoryRecord struct {
	rec     Record
	expires time.Time
}

func (r memoryRecord) expired(now time.Time) bool {
	return !r.expires.IsZero() && !now.Before(r.expires)
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{records: make(map[string]memoryRecord), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context, taskID string) (*Record, error) {
	id, err := validTaskID(taskID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	stored, ok := s.records[id]
	s.mu.RUnlock()
	if !ok || stored.expired(s.now()) {
		return nil, ErrRecordNotFound
	}
	rec := stored.rec
	rec.Task = rec.Task.Clone()
	return &rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.normalize()

	stored := memoryRecord{rec: *rec}
	stored.rec.Task = rec.Task.Clone()
	now := s.now()
	if s.ttl > 0 {
		stored.expires = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)
	s.records[rec.Task.ID] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, taskID string) error {
	id, err := validTaskID(taskID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// Len counts records that have not expired.
func (s *MemoryStore) Len() int {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if !r.expired(now) {
			n++
		}
	}
	return n
}

// prune must be called with mu held.
func (s *MemoryStore) prune(now time.Time) {
	if s.ttl == 0 {
		return
	}
	for id, r := range s.records {
		if r.expired(now) {
			delete(s.records, id)
		}
	}
}
