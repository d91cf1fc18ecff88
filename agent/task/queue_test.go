package task

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
)

func TestReaderFollowsPublisher(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	first := q.Reader()
	got := make(chan a2a.Event, 2)
	go func() {
		for {
			ev, err := first.Next(context.Background())
			if err != nil {
				close(got)
				return
			}
			got <- ev
		}
	}()

	if err := q.publish(a2a.Message{MessageID: "1"}); err != nil {
		t.Fatalf("publish() error = %v", err)
	}
	if err := q.publish(a2a.Message{MessageID: "2"}); err != nil {
		t.Fatalf("publish() error = %v", err)
	}
	q.close()

	var ids []string
	for ev := range got {
		ids = append(ids, ev.(a2a.Message).MessageID)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("ids = %v", ids)
	}

	// A late reader still sees the whole log.
	late := q.Reader()
	if ev, err := late.Next(context.Background()); err != nil || ev.(a2a.Message).MessageID != "1" {
		t.Fatalf("late reader = %v, %v", ev, err)
	}
	if err := q.publish(a2a.Message{}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("publish after close error = %v", err)
	}
}

func TestReaderHonorsContext(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Reader().Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Next() error = %v", err)
	}
	q.close()
	if _, err := q.Reader().Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() on closed empty queue error = %v", err)
	}
}
