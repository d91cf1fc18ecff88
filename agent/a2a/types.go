// Package a2a defines the agent-to-agent task protocol: messages, tasks,
// events, agent cards and the JSON-RPC client used to call remote agents.
package a2a

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

const ProtocolVersion = "0.3.0"

const (
	MethodSendMessage       = "message/send"
	MethodGetTask           = "tasks/get"
	MethodCancelTask        = "tasks/cancel"
	MethodSetPushConfig     = "tasks/pushNotificationConfig/set"
	MethodGetPushConfig     = "tasks/pushNotificationConfig/get"
	MethodListPushConfig    = "tasks/pushNotificationConfig/list"
	MethodDeletePushConfig  = "tasks/pushNotificationConfig/delete"
	MethodExtendedAgentCard = "agent/authenticatedExtendedCard"
)

type TaskState string

const (
	TaskStateSubmitted TaskState = "submitted"
	TaskStateWorking   TaskState = "working"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateCanceled  TaskState = "canceled"
)

func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled:
		return true
	}
	return false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

const (
	KindMessage      = "message"
	KindTask         = "task"
	KindStatusUpdate = "status-update"

	PartKindText = "text"
	PartKindData = "data"
)

type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

func TextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

func DataPart(data map[string]any) Part {
	return Part{Kind: PartKindData, Data: data}
}

type Message struct {
	Kind      string         `json:"kind"`
	MessageID string         `json:"messageId"`
	Role      Role           `json:"role"`
	Parts     []Part         `json:"parts"`
	ContextID string         `json:"contextId,omitempty"`
	TaskID    string         `json:"taskId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Text concatenates the text parts in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Kind == PartKindText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

func NewStatus(state TaskState, msg *Message, at time.Time) TaskStatus {
	return TaskStatus{State: state, Message: msg, Timestamp: at.UTC().Format(time.RFC3339Nano)}
}

type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts"`
}

type Task struct {
	Kind      string     `json:"kind"`
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	History   []Message  `json:"history,omitempty"`
}

// Clone returns a deep enough copy for readers outside the executor lock.
func (t Task) Clone() Task {
	out := t
	out.Artifacts = append([]Artifact(nil), t.Artifacts...)
	out.History = append([]Message(nil), t.History...)
	if t.Status.Message != nil {
		msg := *t.Status.Message
		out.Status.Message = &msg
	}
	return out
}

// Text returns the concatenated text of every artifact.
func (t Task) Text() string {
	parts := make([]string, 0, len(t.Artifacts))
	for _, a := range t.Artifacts {
		for _, p := range a.Parts {
			if p.Kind == PartKindText && p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

type TaskStatusUpdateEvent struct {
	Kind      string     `json:"kind"`
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final"`
}

// Event is one item on a task's event stream or a message/send result.
type Event interface {
	EventKind() string
}

func (Message) EventKind() string               { return KindMessage }
func (Task) EventKind() string                  { return KindTask }
func (TaskStatusUpdateEvent) EventKind() string { return KindStatusUpdate }

// DecodeEvent decodes a message/send result by its kind discriminator.
func DecodeEvent(raw json.RawMessage) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode event kind: %w", err)
	}

	switch probe.Kind {
	case KindMessage:
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		return m, nil
	case KindTask:
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		return t, nil
	case KindStatusUpdate:
		var e TaskStatusUpdateEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode status update: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown event kind %q", contractx.ErrInvalidParams, probe.Kind)
	}
}

type PushNotificationAuthentication struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitempty"`
}

type PushNotificationConfig struct {
	ID             string                          `json:"id,omitempty"`
	URL            string                          `json:"url"`
	Token          string                          `json:"token,omitempty"`
	Authentication *PushNotificationAuthentication `json:"authentication,omitempty"`
}

type TaskPushNotificationConfig struct {
	TaskID                 string                 `json:"taskId"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}

type MessageSendConfiguration struct {
	AcceptedOutputModes    []string                `json:"acceptedOutputModes,omitempty"`
	Blocking               bool                    `json:"blocking,omitempty"`
	HistoryLength          *int                    `json:"historyLength,omitempty"`
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig,omitempty"`
}

type MessageSendParams struct {
	Message       Message                   `json:"message"`
	Configuration *MessageSendConfiguration `json:"configuration,omitempty"`
	Metadata      map[string]any            `json:"metadata,omitempty"`
}

type TaskQueryParams struct {
	ID            string `json:"id"`
	HistoryLength *int   `json:"historyLength,omitempty"`
}

type TaskIDParams struct {
	ID string `json:"id"`
}

type GetTaskPushNotificationConfigParams struct {
	ID                       string `json:"id"`
	PushNotificationConfigID string `json:"pushNotificationConfigId,omitempty"`
}

type ListTaskPushNotificationConfigParams struct {
	ID string `json:"id"`
}

type DeleteTaskPushNotificationConfigParams struct {
	ID                       string `json:"id"`
	PushNotificationConfigID string `json:"pushNotificationConfigId"`
}
