package a2a

import (
	"encoding/json"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

func TestMessageTextConcatenatesTextParts(t *testing.T) {
	t.Parallel()

	msg := Message{Parts: []Part{
		TextPart("Find flights "),
		DataPart(map[string]any{"ignored": true}),
		TextPart("to Paris"),
	}}
	if got := msg.Text(); got != "Find flights to Paris" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestTerminalStates(t *testing.T) {
	t.Parallel()

	for state, want := range map[TaskState]bool{
		TaskStateSubmitted: false,
		TaskStateWorking:   false,
		TaskStateCompleted: true,
		TaskStateFailed:    true,
		TaskStateCanceled:  true,
	} {
		if state.Terminal() != want {
			t.Fatalf("%s terminal = %v", state, !want)
		}
	}
}

func TestDecodeEventByKind(t *testing.T) {
	t.Parallel()

	ev, err := DecodeEvent(json.RawMessage(`{"kind":"task","id":"t1","contextId":"c1","status":{"state":"completed"}}`))
	if err != nil {
		t.Fatalf("decode task: %v", err)
	}
	task, ok := ev.(Task)
	if !ok || task.ID != "t1" || task.Status.State != TaskStateCompleted {
		t.Fatalf("event = %#v", ev)
	}

	ev, err = DecodeEvent(json.RawMessage(`{"kind":"status-update","taskId":"t2","status":{"state":"failed"},"final":true}`))
	if err != nil {
		t.Fatalf("decode status update: %v", err)
	}
	if upd := ev.(TaskStatusUpdateEvent); !upd.Final || upd.TaskID != "t2" {
		t.Fatalf("event = %#v", ev)
	}

	ev, err = DecodeEvent(json.RawMessage(`{"kind":"message","messageId":"m","role":"agent","parts":[{"kind":"text","text":"hi"}]}`))
	if err != nil || ev.EventKind() != KindMessage {
		t.Fatalf("decode message: %#v %v", ev, err)
	}

	if _, err := DecodeEvent(json.RawMessage(`{"kind":"artifact-update"}`)); !errors.Is(err, contractx.ErrInvalidParams) {
		t.Fatalf("expected invalid params, got %v", err)
	}
}

func TestTaskCloneDetachesSlices(t *testing.T) {
	t.Parallel()

	orig := Task{ID: "t", Artifacts: []Artifact{{ArtifactID: "a"}}, Status: TaskStatus{Message: &Message{MessageID: "m"}}}
	cp := orig.Clone()
	cp.Artifacts[0].ArtifactID = "changed"
	cp.Status.Message.MessageID = "changed"

	if orig.Artifacts[0].ArtifactID != "a" || orig.Status.Message.MessageID != "m" {
		t.Fatalf("clone shares state with original: %+v", orig)
	}
}
