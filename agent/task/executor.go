// Package task runs inbound agent messages through the task lifecycle:
// submitted, working, then completed, failed or canceled.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	statex "github.com/tanpawarit/travel-agent-mesh/agent/state"
)

const (
	DefaultRetention  = 15 * time.Minute
	pushNotifyTimeout = 10 * time.Second
)

// Result is what a skill produces for a recognized or unrecognized intent.
type Result struct {
	Text string
	Data map[string]any
}

// Skill does the domain work for one message. It runs without the task lock held.
type Skill interface {
	Run(ctx context.Context, intent contractx.Intent, text string) (Result, error)
}

type SkillFunc func(ctx context.Context, intent contractx.Intent, text string) (Result, error)

func (f SkillFunc) Run(ctx context.Context, intent contractx.Intent, text string) (Result, error) {
	return f(ctx, intent, text)
}

type Option func(*Executor)

func WithArchive(store statex.Store) Option {
	return func(e *Executor) {
		e.archive = store
	}
}

func WithNotifier(n Notifier) Option {
	return func(e *Executor) {
		e.notifier = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(e *Executor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

func WithRetention(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.retention = d
		}
	}
}

type Executor struct {
	agent    contractx.AgentType
	skill    Skill
	registry *Registry
	push     *PushStore
	archive  statex.Store
	notifier Notifier

	retention time.Duration
	now       func() time.Time
	newID     func() string

	background sync.WaitGroup
}

func NewExecutor(agent contractx.AgentType, skill Skill, registry *Registry, opts ...Option) (*Executor, error) {
	if strings.TrimSpace(string(agent)) == "" {
		return nil, fmt.Errorf("%w: agent type is required", contractx.ErrValidation)
	}
	if skill == nil {
		return nil, fmt.Errorf("%w: skill is required", contractx.ErrValidation)
	}
	if registry == nil {
		registry = NewRegistry()
	}

	e := &Executor{
		agent:     agent,
		skill:     skill,
		registry:  registry,
		push:      NewPushStore(),
		retention: DefaultRetention,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

func (e *Executor) Agent() contractx.AgentType {
	return e.agent
}

func (e *Executor) Registry() *Registry {
	return e.registry
}

func (e *Executor) PushSupported() bool {
	return e.notifier != nil
}

// Wait blocks until background archive and push deliveries have finished.
func (e *Executor) Wait() {
	e.background.Wait()
}

// Execute runs the message to a terminal state and returns the final task
// snapshot. A message addressed to an existing task is rejected.
func (e *Executor) Execute(ctx context.Context, params a2a.MessageSendParams) (a2a.Task, error) {
	msg := params.Message
	taskID := strings.TrimSpace(msg.TaskID)
	if taskID != "" {
		if _, live := e.registry.lookup(taskID); !live && e.archived(ctx, taskID) {
			return a2a.Task{}, fmt.Errorf("%w: task %s", contractx.ErrTaskTerminal, taskID)
		}
	} else {
		taskID = e.newID()
	}

	en, state, ok := e.registry.open(taskID)
	if !ok {
		return a2a.Task{}, fmt.Errorf("%w: task %s is %s", contractx.ErrTaskTerminal, taskID, state)
	}
	en.mu.Lock()
	if en.task != nil {
		state := en.task.Status.State
		en.mu.Unlock()
		if state.Terminal() {
			return a2a.Task{}, fmt.Errorf("%w: task %s is %s", contractx.ErrTaskTerminal, taskID, state)
		}
		return a2a.Task{}, fmt.Errorf("%w: task %s", contractx.ErrTaskInFlight, taskID)
	}

	contextID := strings.TrimSpace(msg.ContextID)
	if contextID == "" {
		contextID = e.newID()
	}
	msg.Kind = a2a.KindMessage
	msg.TaskID = taskID
	msg.ContextID = contextID
	if msg.MessageID == "" {
		msg.MessageID = e.newID()
	}
	if msg.Role == "" {
		msg.Role = a2a.RoleUser
	}

	en.task = &a2a.Task{
		Kind:      a2a.KindTask,
		ID:        taskID,
		ContextID: contextID,
		Status:    a2a.NewStatus(a2a.TaskStateSubmitted, nil, e.now()),
		History:   []a2a.Message{msg},
	}
	e.publishLocked(en, en.task.Clone())
	if cfg := params.Configuration; cfg != nil && cfg.PushNotificationConfig != nil {
		if e.notifier == nil {
			log.Ctx(ctx).Debug().Str("task_id", taskID).Msg("push notification config ignored, push is not supported")
		} else if _, err := e.push.Set(taskID, *cfg.PushNotificationConfig); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("task_id", taskID).Msg("ignore invalid push notification config")
		}
	}
	e.transitionLocked(en, a2a.TaskStateWorking, nil, false)

	workCtx, cancel := context.WithCancel(ctx)
	en.cancel = cancel
	en.mu.Unlock()

	text := msg.Text()
	intent := contractx.ClassifyIntent(text)
	logger := log.Ctx(ctx).With().Str("agent", string(e.agent)).Str("task_id", taskID).Str("intent", string(intent)).Logger()
	logger.Info().Msg("task working")

	result, runErr := e.runSkill(workCtx, intent, text)

	en.mu.Lock()
	cancel()
	en.cancel = nil
	if en.task.Status.State == a2a.TaskStateCanceled {
		snapshot := en.task.Clone()
		en.mu.Unlock()
		logger.Info().Msg("task canceled while working, result discarded")
		return snapshot, nil
	}

	if runErr != nil {
		title := e.agent.Title()
		e.appendArtifactLocked(en, title+" agent error: "+runErr.Error(), nil, "error")
		status := e.agentMessage(en.task, title+" processing failed: "+runErr.Error())
		e.transitionLocked(en, a2a.TaskStateFailed, &status, true)
	} else {
		e.appendArtifactLocked(en, result.Text, result.Data, "result")
		status := e.agentMessage(en.task, result.Text)
		e.transitionLocked(en, a2a.TaskStateCompleted, &status, true)
	}
	snapshot := en.task.Clone()
	en.mu.Unlock()

	if runErr != nil {
		logger.Warn().Err(runErr).Msg("task failed")
	} else {
		logger.Info().Msg("task completed")
	}
	e.afterTerminal(en, snapshot)
	return snapshot, nil
}

// runSkill turns a panicking skill into a failure so the task never stays working.
func (e *Executor) runSkill(ctx context.Context, intent contractx.Intent, text string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("skill panicked: %v", r)
		}
	}()
	return e.skill.Run(ctx, intent, text)
}

// Cancel moves a submitted or working task to canceled.
func (e *Executor) Cancel(ctx context.Context, taskID string) (a2a.Task, error) {
	en, ok := e.registry.lookup(taskID)
	if !ok {
		if state, gone := e.registry.tombstone(taskID); gone {
			return a2a.Task{}, fmt.Errorf("%w: task %s is %s", contractx.ErrTaskNotCancelable, taskID, state)
		}
		if e.archived(ctx, taskID) {
			return a2a.Task{}, fmt.Errorf("%w: task %s is archived", contractx.ErrTaskNotCancelable, taskID)
		}
		return a2a.Task{}, fmt.Errorf("%w: %s", contractx.ErrTaskNotFound, taskID)
	}

	en.mu.Lock()
	if en.task == nil {
		en.mu.Unlock()
		return a2a.Task{}, fmt.Errorf("%w: %s", contractx.ErrTaskNotFound, taskID)
	}
	if state := en.task.Status.State; state.Terminal() {
		en.mu.Unlock()
		return a2a.Task{}, fmt.Errorf("%w: task %s is %s", contractx.ErrTaskNotCancelable, taskID, state)
	}

	status := e.agentMessage(en.task, "Task canceled")
	e.transitionLocked(en, a2a.TaskStateCanceled, &status, true)
	if en.cancel != nil {
		en.cancel()
	}
	snapshot := en.task.Clone()
	en.mu.Unlock()

	log.Ctx(ctx).Info().Str("agent", string(e.agent)).Str("task_id", taskID).Msg("task canceled")
	e.afterTerminal(en, snapshot)
	return snapshot, nil
}

// Get returns the live task, falling back to the archive after eviction.
// historyLength, when set, keeps only the most recent messages.
func (e *Executor) Get(ctx context.Context, taskID string, historyLength *int) (a2a.Task, error) {
	var (
		task  a2a.Task
		found bool
	)
	if en, ok := e.registry.lookup(taskID); ok {
		en.mu.Lock()
		if en.task != nil {
			task, found = en.task.Clone(), true
		}
		en.mu.Unlock()
	}
	if !found && e.archive != nil {
		rec, err := e.archive.Load(ctx, taskID)
		switch {
		case err == nil:
			task, found = rec.Task, true
		case !errors.Is(err, statex.ErrRecordNotFound) && !errors.Is(err, statex.ErrInvalidTaskID):
			return a2a.Task{}, fmt.Errorf("load archived task %s: %w", taskID, err)
		}
	}
	if !found {
		return a2a.Task{}, fmt.Errorf("%w: %s", contractx.ErrTaskNotFound, taskID)
	}

	if historyLength != nil && *historyLength >= 0 && len(task.History) > *historyLength {
		task.History = task.History[len(task.History)-*historyLength:]
	}
	return task, nil
}

func (e *Executor) archived(ctx context.Context, taskID string) bool {
	if e.archive == nil {
		return false
	}
	_, err := e.archive.Load(ctx, taskID)
	return err == nil
}

func (e *Executor) publishLocked(en *entry, ev a2a.Event) {
	if err := en.queue.publish(ev); err != nil {
		log.Warn().Err(err).Str("task_id", en.task.ID).Msg("drop event")
	}
}

func (e *Executor) transitionLocked(en *entry, state a2a.TaskState, msg *a2a.Message, final bool) {
	en.task.Status = a2a.NewStatus(state, msg, e.now())
	if msg != nil {
		en.task.History = append(en.task.History, *msg)
	}
	e.publishLocked(en, a2a.TaskStatusUpdateEvent{
		Kind:      a2a.KindStatusUpdate,
		TaskID:    en.task.ID,
		ContextID: en.task.ContextID,
		Status:    en.task.Status,
		Final:     final,
	})
	if final {
		en.finishedAt = e.now()
		en.queue.close()
	}
}

func (e *Executor) appendArtifactLocked(en *entry, text string, data map[string]any, suffix string) {
	parts := []a2a.Part{a2a.TextPart(text)}
	if len(data) > 0 {
		parts = append(parts, a2a.DataPart(data))
	}
	en.task.Artifacts = append(en.task.Artifacts, a2a.Artifact{
		ArtifactID: e.newID(),
		Name:       string(e.agent) + "_" + suffix,
		Parts:      parts,
	})
}

func (e *Executor) agentMessage(task *a2a.Task, text string) a2a.Message {
	return a2a.Message{
		Kind:      a2a.KindMessage,
		MessageID: e.newID(),
		Role:      a2a.RoleAgent,
		Parts:     []a2a.Part{a2a.TextPart(text)},
		ContextID: task.ContextID,
		TaskID:    task.ID,
	}
}

// afterTerminal archives the task and fans it out to push endpoints in the background.
func (e *Executor) afterTerminal(en *entry, task a2a.Task) {
	configs := e.push.List(task.ID)
	if e.archive == nil && (e.notifier == nil || len(configs) == 0) {
		return
	}

	e.background.Add(1)
	go func() {
		defer e.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), pushNotifyTimeout)
		defer cancel()

		if e.archive != nil {
			rec := &statex.Record{Agent: string(e.agent), Task: task, ArchivedAt: e.now()}
			if err := e.archive.Save(ctx, rec); err != nil {
				log.Warn().Err(err).Str("task_id", task.ID).Msg("archive task, keeping it live")
			} else {
				en.mu.Lock()
				en.archived = true
				en.mu.Unlock()
			}
		}
		if e.notifier == nil {
			return
		}
		for _, cfg := range configs {
			if err := e.notifier.Notify(ctx, cfg, task); err != nil {
				log.Warn().Err(err).Str("task_id", task.ID).Str("push_url", cfg.URL).Msg("push notification failed")
			}
		}
	}()
}
