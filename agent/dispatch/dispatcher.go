// Package dispatch serves one agent's A2A JSON-RPC surface over HTTP.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	"github.com/tanpawarit/travel-agent-mesh/agent/jsonrpc"
	"github.com/tanpawarit/travel-agent-mesh/pkg/httpx"
	"go.uber.org/atomic"
)

const maxRequestBytes = 1 << 20

// TaskService is the executor surface the dispatcher routes to.
type TaskService interface {
	Execute(ctx context.Context, params a2a.MessageSendParams) (a2a.Task, error)
	Get(ctx context.Context, taskID string, historyLength *int) (a2a.Task, error)
	Cancel(ctx context.Context, taskID string) (a2a.Task, error)
	SetPushConfig(ctx context.Context, cfg a2a.TaskPushNotificationConfig) (a2a.TaskPushNotificationConfig, error)
	GetPushConfig(ctx context.Context, taskID, cfgID string) (a2a.TaskPushNotificationConfig, error)
	ListPushConfigs(ctx context.Context, taskID string) ([]a2a.TaskPushNotificationConfig, error)
	DeletePushConfig(ctx context.Context, taskID, cfgID string) error
}

type Stats struct {
	Requests int64 `json:"requests"`
	Errors   int64 `json:"errors"`
	Panics   int64 `json:"panics"`
}

type handler func(ctx context.Context, params json.RawMessage) (any, error)

type Option func(*Dispatcher)

// WithExtendedCard serves card from agent/authenticatedExtendedCard.
func WithExtendedCard(card a2a.AgentCard) Option {
	return func(d *Dispatcher) {
		d.extended = &card
	}
}

type Dispatcher struct {
	card     a2a.AgentCard
	extended *a2a.AgentCard
	tasks    TaskService
	handlers map[Method]handler

	requests *atomic.Int64
	errors   *atomic.Int64
	panics   *atomic.Int64
}

func New(card a2a.AgentCard, tasks TaskService, opts ...Option) (*Dispatcher, error) {
	if tasks == nil {
		return nil, fmt.Errorf("%w: task service is required", contractx.ErrValidation)
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		card:     card,
		tasks:    tasks,
		requests: atomic.NewInt64(0),
		errors:   atomic.NewInt64(0),
		panics:   atomic.NewInt64(0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if d.extended != nil {
		d.card.SupportsAuthenticatedExtendedCard = true
	}

	d.handlers = map[Method]handler{
		MethodMessageSend:      d.sendMessage,
		MethodTaskGet:          d.getTask,
		MethodTaskCancel:       d.cancelTask,
		MethodPushConfigSet:    d.setPushConfig,
		MethodPushConfigGet:    d.getPushConfig,
		MethodPushConfigList:   d.listPushConfigs,
		MethodPushConfigDelete: d.deletePushConfig,
		MethodExtendedCardGet:  d.extendedCard,
	}
	return d, nil
}

func (d *Dispatcher) Card() a2a.AgentCard {
	return d.card
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Requests: d.requests.Load(),
		Errors:   d.errors.Load(),
		Panics:   d.panics.Load(),
	}
}

// Handle answers one JSON-RPC envelope. Every path, including a panicking
// handler, yields exactly one response carrying the request id.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) (resp jsonrpc.Response) {
	d.requests.Inc()

	header, err := jsonrpc.Peek(body)
	method := ParseMethod(header.Method)
	defer func() {
		if r := recover(); r != nil {
			d.panics.Inc()
			log.Ctx(ctx).Error().Interface("panic", r).Str("method", header.Method).Interface("id", header.ID).Msg("dispatch handler panicked")
			resp = jsonrpc.NewErrorResponse(header.ID, fmt.Errorf("internal error: %v", r))
		}
		if resp.Error != nil {
			d.errors.Inc()
		}
	}()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Interface("id", header.ID).Msg("reject malformed request")
		return jsonrpc.NewErrorResponse(header.ID, err)
	}

	h, ok := d.handlers[method]
	if !ok {
		return jsonrpc.NewErrorResponse(header.ID, fmt.Errorf("%w: method %s", contractx.ErrUnsupportedOperation, header.Method))
	}

	result, err := h(ctx, jsonrpc.Params(body))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("method", header.Method).Interface("id", header.ID).Msg("a2a request failed")
		return jsonrpc.NewErrorResponse(header.ID, err)
	}
	log.Ctx(ctx).Debug().Str("method", header.Method).Interface("id", header.ID).Msg("a2a request handled")
	return jsonrpc.NewResponse(header.ID, result)
}

func decodeParams(params json.RawMessage, dst any) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: params are required", contractx.ErrInvalidParams)
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrInvalidParams, err)
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: task id is required", contractx.ErrInvalidParams)
	}
	return nil
}

func (d *Dispatcher) sendMessage(ctx context.Context, params json.RawMessage) (any, error) {
	var p a2a.MessageSendParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Message.Parts) == 0 {
		return nil, fmt.Errorf("%w: message has no parts", contractx.ErrInvalidParams)
	}

	task, err := d.tasks.Execute(ctx, p)
	if err != nil {
		return nil, err
	}
	if p.Configuration != nil && p.Configuration.HistoryLength != nil {
		task = trimHistory(task, *p.Configuration.HistoryLength)
	}
	return task, nil
}

func (d *Dispatcher) getTask(ctx context.Context, params json.RawMessage) (any, error) {
	var p a2a.TaskQueryParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	return d.tasks.Get(ctx, p.ID, p.HistoryLength)
}

func (d *Dispatcher) cancelTask(ctx context.Context, params json.RawMessage) (any, error) {
	var p a2a.TaskIDParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	return d.tasks.Cancel(ctx, p.ID)
}

func (d *Dispatcher) setPushConfig(ctx context.Context, params json.RawMessage) (any, error) {
	var p a2a.TaskPushNotificationConfig
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireID(p.TaskID); err != nil {
		return nil, err
	}
	return d.tasks.SetPushConfig(ctx, p)
}

func (d *Dispatcher) getPushConfig(ctx context.Context, params json.RawMessage) (any, error) {
	var p a2a.GetTaskPushNotificationConfigParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	return d.tasks.GetPushConfig(ctx, p.ID, p.PushNotificationConfigID)
}

func (d *Dispatcher) listPushConfigs(ctx context.Context, params json.RawMessage) (any, error) {
	var p a2a.ListTaskPushNotificationConfigParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	return d.tasks.ListPushConfigs(ctx, p.ID)
}

func (d *Dispatcher) deletePushConfig(ctx context.Context, params json.RawMessage) (any, error) {
	var p a2a.DeleteTaskPushNotificationConfigParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.PushNotificationConfigID) == "" {
		return nil, fmt.Errorf("%w: push notification config id is required", contractx.ErrInvalidParams)
	}
	if err := d.tasks.DeletePushConfig(ctx, p.ID, p.PushNotificationConfigID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (d *Dispatcher) extendedCard(context.Context, json.RawMessage) (any, error) {
	if d.extended == nil {
		return nil, contractx.ErrExtendedCardNotConfigured
	}
	return *d.extended, nil
}

func trimHistory(task a2a.Task, n int) a2a.Task {
	if n < 0 || len(task.History) <= n {
		return task
	}
	task.History = task.History[len(task.History)-n:]
	return task
}

// Handler mounts POST /, GET /.well-known/agent-card.json and GET /health.
func (d *Dispatcher) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handleRPC)
	mux.HandleFunc(a2a.AgentCardPath, d.handleCard)
	mux.HandleFunc("/health", httpx.Health(d.card.Name))
	return identityMiddleware(d.card.Name, mux)
}

func (d *Dispatcher) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(jsonrpc.UnknownID, fmt.Errorf("%w: %v", contractx.ErrParse, err)))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d.Handle(r.Context(), body))
}

func (d *Dispatcher) handleCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d.card)
}
