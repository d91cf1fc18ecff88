package task

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
)

var ErrQueueClosed = errors.New("event queue is closed")

// EventQueue is an append-only log of one task's events. The executor is the
// only writer; any number of Readers follow it independently.
type EventQueue struct {
	mu     sync.Mutex
	events []a2a.Event
	closed bool
	notify chan struct{}
}

func newEventQueue() *EventQueue {
	return &EventQueue{notify: make(chan struct{})}
}

func (q *EventQueue) publish(ev a2a.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.events = append(q.events, ev)
	q.wakeLocked()
	return nil
}

func (q *EventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.wakeLocked()
}

func (q *EventQueue) wakeLocked() {
	close(q.notify)
	q.notify = make(chan struct{})
}

func (q *EventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Events returns a copy of everything published so far.
func (q *EventQueue) Events() []a2a.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]a2a.Event(nil), q.events...)
}

// Reader starts at the first event.
func (q *EventQueue) Reader() *Reader {
	return &Reader{q: q}
}

type Reader struct {
	q    *EventQueue
	next int
}

// Next blocks until another event is available. It returns io.EOF once the
// queue is closed and drained.
func (r *Reader) Next(ctx context.Context) (a2a.Event, error) {
	for {
		r.q.mu.Lock()
		if r.next < len(r.q.events) {
			ev := r.q.events[r.next]
			r.next++
			r.q.mu.Unlock()
			return ev, nil
		}
		if r.q.closed {
			r.q.mu.Unlock()
			return nil, io.EOF
		}
		wait := r.q.notify
		r.q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}
