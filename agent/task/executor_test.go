package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	statex "github.com/tanpawarit/travel-agent-mesh/agent/state"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) Notify(_ context.Context, cfg a2a.PushNotificationConfig, task a2a.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, cfg.URL+"|"+task.ID+"|"+string(task.Status.State))
	return nil
}

func (n *recordingNotifier) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func textMessage(taskID, text string) a2a.MessageSendParams {
	return a2a.MessageSendParams{Message: a2a.Message{
		Kind:   a2a.KindMessage,
		TaskID: taskID,
		Role:   a2a.RoleUser,
		Parts:  []a2a.Part{a2a.TextPart(text)},
	}}
}

func echoSkill() Skill {
	return SkillFunc(func(_ context.Context, intent contractx.Intent, text string) (Result, error) {
		return Result{Text: string(intent) + ":" + text, Data: map[string]any{"intent": string(intent)}}, nil
	})
}

func newTestExecutor(t *testing.T, skill Skill, opts ...Option) *Executor {
	t.Helper()
	e, err := NewExecutor(contractx.AgentTypeFlight, skill, NewRegistry(), opts...)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	return e
}

func drain(t *testing.T, q *EventQueue) []a2a.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := q.Reader()
	var events []a2a.Event
	for {
		ev, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		events = append(events, ev)
	}
}

func TestNewExecutorValidates(t *testing.T) {
	t.Parallel()

	if _, err := NewExecutor("", echoSkill(), nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("missing agent error = %v", err)
	}
	if _, err := NewExecutor(contractx.AgentTypeHotel, nil, nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("missing skill error = %v", err)
	}
}

func TestExecuteCompletes(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, echoSkill())
	q := e.Registry().Queue("task-1")

	params := textMessage("task-1", "Find flights ")
	params.Message.Parts = append(params.Message.Parts, a2a.TextPart("to London"))
	task, err := e.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if task.ID != "task-1" || task.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("task = %+v", task)
	}
	if got := task.Text(); got != "search:Find flights to London" {
		t.Fatalf("artifact text = %q", got)
	}
	if len(task.Artifacts) != 1 || len(task.Artifacts[0].Parts) != 2 || task.Artifacts[0].Parts[1].Kind != a2a.PartKindData {
		t.Fatalf("artifacts = %+v", task.Artifacts)
	}
	if task.ContextID == "" || len(task.History) != 2 {
		t.Fatalf("context/history = %q %d", task.ContextID, len(task.History))
	}

	events := drain(t, q)
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if first, ok := events[0].(a2a.Task); !ok || first.Status.State != a2a.TaskStateSubmitted {
		t.Fatalf("first event = %#v", events[0])
	}
	states := []a2a.TaskState{a2a.TaskStateWorking, a2a.TaskStateCompleted}
	for i, want := range states {
		upd := events[i+1].(a2a.TaskStatusUpdateEvent)
		if upd.Status.State != want || upd.Final != (want == a2a.TaskStateCompleted) {
			t.Fatalf("event %d = %+v", i+1, upd)
		}
	}
	if !q.Closed() {
		t.Fatal("queue still open after completion")
	}
}

func TestExecuteGeneratesIDs(t *testing.T) {
	t.Parallel()

	var n int
	e := newTestExecutor(t, echoSkill(), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	task, err := e.Execute(context.Background(), textMessage("", "hello"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if task.ID != "id-1" || task.ContextID != "id-2" {
		t.Fatalf("ids = %s %s", task.ID, task.ContextID)
	}
	if task.Text() != "unrecognized:hello" {
		t.Fatalf("text = %q", task.Text())
	}
}

func TestExecuteFailureIsRecorded(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, SkillFunc(func(context.Context, contractx.Intent, string) (Result, error) {
		return Result{}, errors.New("gateway unreachable")
	}))

	task, err := e.Execute(context.Background(), textMessage("t", "book flight"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if task.Status.State != a2a.TaskStateFailed {
		t.Fatalf("state = %s", task.Status.State)
	}
	if task.Text() != "Flight agent error: gateway unreachable" {
		t.Fatalf("artifact = %q", task.Text())
	}
	if task.Status.Message == nil || task.Status.Message.Text() != "Flight processing failed: gateway unreachable" {
		t.Fatalf("status message = %+v", task.Status.Message)
	}
}

func TestExecutePanicBecomesFailure(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, SkillFunc(func(context.Context, contractx.Intent, string) (Result, error) {
		panic("nil map")
	}))
	task, err := e.Execute(context.Background(), textMessage("t", "search"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if task.Status.State != a2a.TaskStateFailed || !strings.Contains(task.Text(), "nil map") {
		t.Fatalf("task = %+v", task)
	}
}

func TestExecuteRejectsExistingTask(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, echoSkill())
	if _, err := e.Execute(context.Background(), textMessage("dup", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	_, err := e.Execute(context.Background(), textMessage("dup", "search again"))
	if !errors.Is(err, contractx.ErrTaskTerminal) {
		t.Fatalf("second Execute() error = %v", err)
	}
}

// blockingSkill signals when it starts and waits for release or cancellation.
type blockingSkill struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingSkill() *blockingSkill {
	return &blockingSkill{started: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingSkill) Run(ctx context.Context, _ contractx.Intent, _ string) (Result, error) {
	close(s.started)
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-s.release:
		return Result{Text: "done"}, nil
	}
}

func TestExecuteRejectsInFlightTask(t *testing.T) {
	t.Parallel()

	skill := newBlockingSkill()
	e := newTestExecutor(t, skill)

	done := make(chan a2a.Task, 1)
	go func() {
		task, _ := e.Execute(context.Background(), textMessage("busy", "search"))
		done <- task
	}()
	<-skill.started

	if _, err := e.Execute(context.Background(), textMessage("busy", "search")); !errors.Is(err, contractx.ErrTaskInFlight) {
		t.Fatalf("in-flight Execute() error = %v", err)
	}

	close(skill.release)
	if task := <-done; task.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("state = %s", task.Status.State)
	}
}

func TestCancelWhileWorking(t *testing.T) {
	t.Parallel()

	skill := newBlockingSkill()
	e := newTestExecutor(t, skill)

	done := make(chan a2a.Task, 1)
	go func() {
		task, _ := e.Execute(context.Background(), textMessage("c1", "search"))
		done <- task
	}()
	<-skill.started

	canceled, err := e.Cancel(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if canceled.Status.State != a2a.TaskStateCanceled {
		t.Fatalf("state = %s", canceled.Status.State)
	}

	final := <-done
	if final.Status.State != a2a.TaskStateCanceled {
		t.Fatalf("Execute() final state = %s, want canceled", final.Status.State)
	}
	if len(final.Artifacts) != 0 {
		t.Fatalf("canceled task gained artifacts: %+v", final.Artifacts)
	}

	if _, err := e.Cancel(context.Background(), "c1"); !errors.Is(err, contractx.ErrTaskNotCancelable) {
		t.Fatalf("second Cancel() error = %v", err)
	}

	events := drain(t, e.Registry().Queue("c1"))
	last := events[len(events)-1].(a2a.TaskStatusUpdateEvent)
	if last.Status.State != a2a.TaskStateCanceled || !last.Final {
		t.Fatalf("last event = %+v", last)
	}
}

func TestCancelTerminalAndUnknown(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, echoSkill())
	if _, err := e.Cancel(context.Background(), "nope"); !errors.Is(err, contractx.ErrTaskNotFound) {
		t.Fatalf("Cancel(unknown) error = %v", err)
	}

	// A queue referenced before any message does not make the task exist.
	e.Registry().Queue("observed")
	if _, err := e.Cancel(context.Background(), "observed"); !errors.Is(err, contractx.ErrTaskNotFound) {
		t.Fatalf("Cancel(observed) error = %v", err)
	}

	if _, err := e.Execute(context.Background(), textMessage("done", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := e.Cancel(context.Background(), "done"); !errors.Is(err, contractx.ErrTaskNotCancelable) {
		t.Fatalf("Cancel(completed) error = %v", err)
	}
}

func TestCompletedNeverReentersWorking(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, echoSkill())
	if _, err := e.Execute(context.Background(), textMessage("once", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.Execute(context.Background(), textMessage("once", "search")); err == nil {
			t.Fatal("terminal task accepted another message")
		}
	}
	task, err := e.Get(context.Background(), "once", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if task.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("state = %s", task.Status.State)
	}
}

func TestGetHistoryLength(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, echoSkill())
	if _, err := e.Execute(context.Background(), textMessage("h", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	one := 1
	task, err := e.Get(context.Background(), "h", &one)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(task.History) != 1 || task.History[0].Role != a2a.RoleAgent {
		t.Fatalf("history = %+v", task.History)
	}
	if _, err := e.Get(context.Background(), "missing", nil); !errors.Is(err, contractx.ErrTaskNotFound) {
		t.Fatalf("Get(missing) error = %v", err)
	}
}

func TestSweepEvictsToArchive(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	archive := statex.NewMemoryStore()
	e := newTestExecutor(t, echoSkill(), WithClock(clock.Now), WithArchive(archive), WithRetention(time.Minute))

	if _, err := e.Execute(context.Background(), textMessage("old", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	e.Wait()
	if archive.Len() != 1 {
		t.Fatalf("archive len = %d", archive.Len())
	}

	if n := e.Sweep(); n != 0 {
		t.Fatalf("early Sweep() = %d", n)
	}
	clock.Advance(2 * time.Minute)
	if n := e.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}

	task, err := e.Get(context.Background(), "old", nil)
	if err != nil {
		t.Fatalf("Get() after eviction error = %v", err)
	}
	if task.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("archived state = %s", task.Status.State)
	}
	if _, err := e.Execute(context.Background(), textMessage("old", "search")); !errors.Is(err, contractx.ErrTaskTerminal) {
		t.Fatalf("Execute(archived) error = %v", err)
	}
	if _, err := e.Cancel(context.Background(), "old"); !errors.Is(err, contractx.ErrTaskNotCancelable) {
		t.Fatalf("Cancel(archived) error = %v", err)
	}
}

type failingArchive struct {
	statex.Store
}

func (failingArchive) Save(context.Context, *statex.Record) error {
	return errors.New("archive unavailable")
}

func (failingArchive) Load(context.Context, string) (*statex.Record, error) {
	return nil, statex.ErrRecordNotFound
}

func TestSweepWithoutArchiveKeepsTerminalIDs(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	e := newTestExecutor(t, echoSkill(), WithClock(clock.Now), WithRetention(time.Minute))

	if _, err := e.Execute(context.Background(), textMessage("done", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	clock.Advance(2 * time.Minute)
	if n := e.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}

	task, err := e.Execute(context.Background(), textMessage("done", "search"))
	if !errors.Is(err, contractx.ErrTaskTerminal) {
		t.Fatalf("Execute(evicted) = %s, %v, want ErrTaskTerminal", task.Status.State, err)
	}
	if _, err := e.Cancel(context.Background(), "done"); !errors.Is(err, contractx.ErrTaskNotCancelable) {
		t.Fatalf("Cancel(evicted) error = %v, want ErrTaskNotCancelable", err)
	}
}

func TestSweepKeepsTasksWhoseArchiveFailed(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	e := newTestExecutor(t, echoSkill(), WithClock(clock.Now), WithArchive(failingArchive{}), WithRetention(time.Minute))

	if _, err := e.Execute(context.Background(), textMessage("unsaved", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	e.Wait()
	clock.Advance(2 * time.Minute)
	if n := e.Sweep(); n != 0 {
		t.Fatalf("Sweep() = %d, want 0 while the archive write failed", n)
	}

	task, err := e.Get(context.Background(), "unsaved", nil)
	if err != nil || task.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("Get() = %s, %v", task.Status.State, err)
	}
	if _, err := e.Execute(context.Background(), textMessage("unsaved", "search")); !errors.Is(err, contractx.ErrTaskTerminal) {
		t.Fatalf("Execute(unsaved) error = %v, want ErrTaskTerminal", err)
	}
}

func TestPushNotifications(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	e := newTestExecutor(t, echoSkill(), WithNotifier(notifier))

	params := textMessage("p1", "search")
	params.Configuration = &a2a.MessageSendConfiguration{
		PushNotificationConfig: &a2a.PushNotificationConfig{URL: "http://hook.local/a"},
	}
	if _, err := e.Execute(context.Background(), params); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	e.Wait()

	calls := notifier.Calls()
	if len(calls) != 1 || calls[0] != "http://hook.local/a|p1|completed" {
		t.Fatalf("calls = %v", calls)
	}

	cfg, err := e.SetPushConfig(context.Background(), a2a.TaskPushNotificationConfig{
		TaskID:                 "p1",
		PushNotificationConfig: a2a.PushNotificationConfig{ID: "second", URL: "http://hook.local/b"},
	})
	if err != nil {
		t.Fatalf("SetPushConfig() error = %v", err)
	}
	if cfg.PushNotificationConfig.ID != "second" {
		t.Fatalf("config = %+v", cfg)
	}

	list, err := e.ListPushConfigs(context.Background(), "p1")
	if err != nil || len(list) != 2 {
		t.Fatalf("ListPushConfigs() = %+v, %v", list, err)
	}
	got, err := e.GetPushConfig(context.Background(), "p1", "second")
	if err != nil || got.PushNotificationConfig.URL != "http://hook.local/b" {
		t.Fatalf("GetPushConfig() = %+v, %v", got, err)
	}
	if err := e.DeletePushConfig(context.Background(), "p1", "second"); err != nil {
		t.Fatalf("DeletePushConfig() error = %v", err)
	}
	if err := e.DeletePushConfig(context.Background(), "p1", "second"); !errors.Is(err, contractx.ErrInvalidParams) {
		t.Fatalf("second DeletePushConfig() error = %v", err)
	}
	if _, err := e.SetPushConfig(context.Background(), a2a.TaskPushNotificationConfig{
		TaskID:                 "missing",
		PushNotificationConfig: a2a.PushNotificationConfig{URL: "http://x"},
	}); !errors.Is(err, contractx.ErrTaskNotFound) {
		t.Fatalf("SetPushConfig(missing) error = %v", err)
	}
}

func TestPushNotSupportedWithoutNotifier(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, echoSkill())
	if _, err := e.Execute(context.Background(), textMessage("x", "search")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	_, err := e.SetPushConfig(context.Background(), a2a.TaskPushNotificationConfig{
		TaskID:                 "x",
		PushNotificationConfig: a2a.PushNotificationConfig{URL: "http://x"},
	})
	if !errors.Is(err, contractx.ErrPushNotSupported) {
		t.Fatalf("SetPushConfig() error = %v", err)
	}
}

func TestConcurrentTasksAreIndependent(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, echoSkill())
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task, err := e.Execute(context.Background(), textMessage(fmt.Sprintf("t-%d", i), "search"))
			if err != nil {
				errs <- err
				return
			}
			if task.Status.State != a2a.TaskStateCompleted {
				errs <- fmt.Errorf("task %s ended %s", task.ID, task.Status.State)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if e.Registry().Len() != 20 {
		t.Fatalf("registry len = %d", e.Registry().Len())
	}
}
