// Package gateway exposes a tool catalog over JSON-RPC and provides the matching client.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	"github.com/tanpawarit/travel-agent-mesh/agent/jsonrpc"
	toolx "github.com/tanpawarit/travel-agent-mesh/agent/tool"
	"github.com/tanpawarit/travel-agent-mesh/pkg/httpx"
	"go.uber.org/atomic"
)

const (
	ProtocolVersion = "2024-11-05"

	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"

	maxRequestBytes = 1 << 20
)

// Config is loaded with the GATEWAY prefix.
type Config struct {
	FlightAddr string `envconfig:"FLIGHT_ADDR" split_words:"true" default:":8081"`
	HotelAddr  string `envconfig:"HOTEL_ADDR" split_words:"true" default:":8083"`
	Version    string `envconfig:"VERSION" split_words:"true" default:"1.0.0"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Capabilities struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

type ListToolsResult struct {
	Tools []toolx.Descriptor `json:"tools"`
}

type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Stats counts handled requests by outcome.
type Stats struct {
	Requests int64 `json:"requests"`
	Errors   int64 `json:"errors"`
	Calls    int64 `json:"toolCalls"`
}

type methodHandler func(ctx context.Context, params json.RawMessage) (any, error)

// Server answers initialize, tools/list and tools/call for one catalog.
type Server struct {
	info    ServerInfo
	catalog *toolx.Catalog
	methods map[string]methodHandler

	requests *atomic.Int64
	errors   *atomic.Int64
	calls    *atomic.Int64
}

func NewServer(info ServerInfo, catalog *toolx.Catalog) (*Server, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: tool catalog is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(info.Name) == "" {
		return nil, fmt.Errorf("%w: server name is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(info.Version) == "" {
		info.Version = "1.0.0"
	}

	s := &Server{
		info:     info,
		catalog:  catalog,
		requests: atomic.NewInt64(0),
		errors:   atomic.NewInt64(0),
		calls:    atomic.NewInt64(0),
	}
	s.methods = map[string]methodHandler{
		MethodInitialize: s.initialize,
		MethodToolsList:  s.listTools,
		MethodToolsCall:  s.callTool,
	}
	return s, nil
}

func (s *Server) Info() ServerInfo {
	return s.info
}

func (s *Server) Stats() Stats {
	return Stats{
		Requests: s.requests.Load(),
		Errors:   s.errors.Load(),
		Calls:    s.calls.Load(),
	}
}

// Handle decodes one envelope and always returns exactly one response.
func (s *Server) Handle(ctx context.Context, body []byte) (resp jsonrpc.Response) {
	s.requests.Inc()

	header, err := jsonrpc.Peek(body)
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(ctx).Error().Interface("panic", r).Str("method", header.Method).Msg("gateway handler panicked")
			resp = jsonrpc.NewErrorResponse(header.ID, fmt.Errorf("internal error: %v", r))
		}
		if resp.Error != nil {
			s.errors.Inc()
		}
	}()
	if err != nil {
		return jsonrpc.NewErrorResponse(header.ID, err)
	}

	handler, ok := s.methods[header.Method]
	if !ok {
		return jsonrpc.NewErrorResponse(header.ID, fmt.Errorf("%w: %s", contractx.ErrMethodNotFound, header.Method))
	}

	result, err := handler(ctx, jsonrpc.Params(body))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("method", header.Method).Interface("id", header.ID).Msg("gateway request failed")
		return jsonrpc.NewErrorResponse(header.ID, err)
	}
	return jsonrpc.NewResponse(header.ID, result)
}

func (s *Server) initialize(context.Context, json.RawMessage) (any, error) {
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    Capabilities{Tools: true},
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) listTools(context.Context, json.RawMessage) (any, error) {
	return ListToolsResult{Tools: s.catalog.Descriptors()}, nil
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, error) {
	var p CallToolParams
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: tools/call requires params", contractx.ErrInvalidParams)
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrInvalidParams, err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: tool name is required", contractx.ErrInvalidParams)
	}

	s.calls.Inc()
	started := time.Now()
	result, err := s.catalog.Call(ctx, p.Name, p.Arguments)
	event := log.Ctx(ctx).Debug()
	if err != nil {
		event = log.Ctx(ctx).Warn().Err(err)
	}
	event.Str("tool", p.Name).Dur("elapsed", time.Since(started)).Msg("tool call")
	return result, err
}

// Handler mounts POST /mcp, GET /mcp/capabilities and GET /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleRPC)
	mux.HandleFunc("/mcp/capabilities", s.handleCapabilities)
	mux.HandleFunc("/health", httpx.Health(s.info.Name))
	return mux
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := log.Logger.With().Str("server", s.info.Name).Logger().WithContext(r.Context())
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(jsonrpc.UnknownID, fmt.Errorf("%w: %v", contractx.ErrParse, err)))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.Handle(ctx, body))
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"serverInfo":      s.info,
		"protocolVersion": ProtocolVersion,
		"tools":           s.catalog.Names(),
		"stats":           s.Stats(),
	})
}
