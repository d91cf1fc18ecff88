package contract

import (
	"context"
	"encoding/json"
)

// Generator produces free text for a prompt. An empty reply is reported as an error.
type Generator interface {
	Generate(ctx context.Context, prompt string, systemPreamble string) (string, error)
}

// ToolCaller invokes a named tool on a tool-call gateway and returns its raw result.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args any) (json.RawMessage, error)
}
