package orchestrator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	"github.com/tanpawarit/travel-agent-mesh/pkg/httpx"
)

const maxRequestBytes = 1 << 20

type chatRequest struct {
	Message string `json:"message"`
}

// Handler mounts the travel API and GET /health.
func (o *Orchestrator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/travel/plan", o.handlePlan)
	mux.HandleFunc("/api/travel/chat", o.handleChat)
	mux.HandleFunc("/api/travel/agents/status", o.handleStatus)
	mux.HandleFunc("/health", httpx.Health("Travel Orchestrator"))
	return withRequestLogger(mux)
}

func withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.Logger.With().Str("agent", string(contractx.AgentTypeOrchestrator)).Str("path", r.URL.Path).Logger().WithContext(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.Join(contractx.ErrValidation, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, contractx.ErrAgentCall):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (o *Orchestrator) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req TripRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := o.PlanTrip(r.Context(), req)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("plan trip failed")
		httpx.WriteError(w, statusFor(err), "Failed to create travel plan: "+err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, plan)
}

func (o *Orchestrator) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := o.Chat(r.Context(), req.Message)
	if err != nil {
		httpx.WriteError(w, statusFor(err), err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reply)
}

func (o *Orchestrator) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o.Status(r.Context()))
}
