package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	"github.com/tanpawarit/travel-agent-mesh/agent/jsonrpc"
)

var _ contractx.ToolCaller = (*Client)(nil)

// Client calls tools on a remote gateway.
type Client struct {
	rpc *jsonrpc.Client
}

func NewClient(endpoint string, opts ...jsonrpc.ClientOption) (*Client, error) {
	rpc, err := jsonrpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: rpc}, nil
}

func (c *Client) Initialize(ctx context.Context) (InitializeResult, error) {
	var out InitializeResult
	if err := c.rpc.Call(ctx, MethodInitialize, map[string]any{"protocolVersion": ProtocolVersion}, &out); err != nil {
		return InitializeResult{}, err
	}
	return out, nil
}

func (c *Client) ListTools(ctx context.Context) (ListToolsResult, error) {
	var out ListToolsResult
	if err := c.rpc.Call(ctx, MethodToolsList, nil, &out); err != nil {
		return ListToolsResult{}, err
	}
	return out, nil
}

// CallTool returns the raw tool result. Transport failures and remote errors
// other than argument problems are reported as ErrToolInvocation.
func (c *Client) CallTool(ctx context.Context, name string, args any) (json.RawMessage, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s arguments: %v", contractx.ErrInvalidArguments, name, err)
	}

	var out json.RawMessage
	err = c.rpc.Call(ctx, MethodToolsCall, CallToolParams{Name: name, Arguments: rawArgs}, &out)
	if err == nil {
		return out, nil
	}

	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) && rpcErr.Code == jsonrpc.CodeInvalidParams {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s: %w", contractx.ErrToolInvocation, name, err)
}

// Local adapts an in-process Server to ToolCaller, skipping HTTP.
type Local struct {
	server *Server
}

var _ contractx.ToolCaller = (*Local)(nil)

func NewLocal(server *Server) *Local {
	return &Local{server: server}
}

func (l *Local) CallTool(ctx context.Context, name string, args any) (json.RawMessage, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s arguments: %v", contractx.ErrInvalidArguments, name, err)
	}
	params, err := json.Marshal(CallToolParams{Name: name, Arguments: rawArgs})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		ID:      "local",
		Method:  MethodToolsCall,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	resp := l.server.Handle(ctx, body)
	if resp.Error != nil {
		if resp.Error.Code == jsonrpc.CodeInvalidParams {
			return nil, resp.Error
		}
		return nil, fmt.Errorf("%w: %s: %w", contractx.ErrToolInvocation, name, resp.Error)
	}
	return resp.Result, nil
}
