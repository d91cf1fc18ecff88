package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// CallResult is what one agent call resolved to.
type CallResult struct {
	Agent  contractx.AgentType
	TaskID string
	State  a2a.TaskState
	Text   string
	Data   []map[string]any
	Err    error
}

func (r CallResult) OK() bool {
	return r.Err == nil
}

// Future resolves exactly once, on the first terminal event of its call.
type Future struct {
	agent contractx.AgentType
	done  chan struct{}
	once  sync.Once
	res   CallResult
}

func newFuture(agent contractx.AgentType) *Future {
	return &Future{agent: agent, done: make(chan struct{})}
}

func (f *Future) resolve(res CallResult) {
	f.once.Do(func() {
		res.Agent = f.agent
		f.res = res
		close(f.done)
	})
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result must only be read after Done is closed.
func (f *Future) Result() CallResult {
	return f.res
}

// Wait blocks until the future resolves or ctx ends.
func (f *Future) Wait(ctx context.Context) CallResult {
	select {
	case <-f.done:
		return f.res
	case <-ctx.Done():
		f.resolve(CallResult{Err: fmt.Errorf("%w: %s agent: %v", contractx.ErrAgentCall, f.agent, ctx.Err())})
		return f.res
	}
}

// Call sends text to caller in the background under timeout.
func Call(ctx context.Context, agent contractx.AgentType, caller AgentCaller, text string, timeout time.Duration) *Future {
	f := newFuture(agent)
	if caller == nil {
		f.resolve(CallResult{Err: fmt.Errorf("%w: %s agent is not configured", contractx.ErrAgentCall, agent)})
		return f
	}

	go func() {
		callCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		started := time.Now()
		ev, err := caller.SendMessage(callCtx, a2a.MessageSendParams{
			Message: a2a.Message{
				Kind:      a2a.KindMessage,
				MessageID: uuid.NewString(),
				Role:      a2a.RoleUser,
				Parts:     []a2a.Part{a2a.TextPart(text)},
			},
		})
		if err != nil {
			f.resolve(CallResult{Err: fmt.Errorf("%w: %s agent: %w", contractx.ErrAgentCall, agent, err)})
		} else {
			f.resolve(resultFromEvent(agent, ev))
		}

		res := f.Result()
		event := log.Ctx(ctx).Debug()
		if res.Err != nil {
			event = log.Ctx(ctx).Warn().Err(res.Err)
		}
		event.Str("agent", string(agent)).Str("task_id", res.TaskID).Dur("elapsed", time.Since(started)).Msg("agent call resolved")
	}()
	return f
}

func resultFromEvent(agent contractx.AgentType, ev a2a.Event) CallResult {
	switch e := ev.(type) {
	case a2a.Message:
		return CallResult{TaskID: e.TaskID, State: a2a.TaskStateCompleted, Text: e.Text(), Data: dataParts(e.Parts)}
	case a2a.Task:
		res := CallResult{TaskID: e.ID, State: e.Status.State, Text: e.Text()}
		for _, art := range e.Artifacts {
			res.Data = append(res.Data, dataParts(art.Parts)...)
		}
		res.Err = stateError(agent, e.ID, e.Status)
		return res
	case a2a.TaskStatusUpdateEvent:
		res := CallResult{TaskID: e.TaskID, State: e.Status.State}
		if e.Status.Message != nil {
			res.Text = e.Status.Message.Text()
		}
		res.Err = stateError(agent, e.TaskID, e.Status)
		return res
	default:
		return CallResult{Err: fmt.Errorf("%w: %s agent answered with %T", contractx.ErrAgentCall, agent, ev)}
	}
}

func stateError(agent contractx.AgentType, taskID string, status a2a.TaskStatus) error {
	switch status.State {
	case a2a.TaskStateFailed, a2a.TaskStateCanceled:
		reason := string(status.State)
		if status.Message != nil && status.Message.Text() != "" {
			reason = status.Message.Text()
		}
		return fmt.Errorf("%w: %s agent task %s: %s", contractx.ErrAgentCall, agent, taskID, reason)
	}
	return nil
}

func dataParts(parts []a2a.Part) []map[string]any {
	var out []map[string]any
	for _, p := range parts {
		if p.Kind == a2a.PartKindData && p.Data != nil {
			out = append(out, p.Data)
		}
	}
	return out
}

// decodeData re-reads loosely typed data parts into dst.
func decodeData(data []map[string]any, dst any) error {
	for _, d := range data {
		raw, err := json.Marshal(d)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
	}
	return nil
}
