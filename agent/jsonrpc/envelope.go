package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

const (
	Version = "2.0"

	// UnknownID is used when the id of a request cannot be recovered.
	UnknownID = "unknown"
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Header holds the routing fields of an envelope, read before the params shape is known.
type Header struct {
	JSONRPC string
	ID      any
	Method  string
}

// Peek reads jsonrpc, id and method without decoding params. The returned
// header carries the best id it could recover even when err is not nil.
func Peek(data []byte) (Header, error) {
	h := Header{ID: UnknownID}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return h, fmt.Errorf("%w: %v", contractx.ErrParse, err)
	}

	if raw, ok := fields["id"]; ok {
		h.ID = decodeID(raw)
	}
	if raw, ok := fields["jsonrpc"]; ok {
		_ = json.Unmarshal(raw, &h.JSONRPC)
	}

	raw, ok := fields["method"]
	if !ok {
		return h, fmt.Errorf("%w: method is required", contractx.ErrInvalidRequest)
	}
	if err := json.Unmarshal(raw, &h.Method); err != nil {
		return h, fmt.Errorf("%w: method must be a string", contractx.ErrInvalidRequest)
	}
	h.Method = strings.TrimSpace(h.Method)
	if h.Method == "" {
		return h, fmt.Errorf("%w: method is empty", contractx.ErrInvalidRequest)
	}
	return h, nil
}

// Params returns the raw params member of an envelope, or nil when absent.
func Params(data []byte) json.RawMessage {
	var env struct {
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	return env.Params
}

// decodeID returns the id as a string or a json.Number, never a converted numeric value.
func decodeID(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return UnknownID
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return UnknownID
		}
		return s
	}

	// Numbers are echoed as written so large or fractional ids survive.
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil && n.String() != "" {
		return n
	}
	return UnknownID
}

// IDOrUnknown normalizes an id for a response.
func IDOrUnknown(id any) any {
	switch v := id.(type) {
	case nil:
		return UnknownID
	case string:
		if strings.TrimSpace(v) == "" {
			return UnknownID
		}
	}
	return id
}

// NewResponse builds a success response. A result that cannot be encoded
// turns into an internal error response with the same id.
func NewResponse(id any, result any) Response {
	payload, err := json.Marshal(result)
	if err != nil {
		return NewErrorResponse(id, fmt.Errorf("encode result: %w", err))
	}
	return Response{
		JSONRPC: Version,
		ID:      IDOrUnknown(id),
		Result:  payload,
	}
}

// NewErrorResponse is the single constructor for error responses.
func NewErrorResponse(id any, err error) Response {
	if err == nil {
		err = errors.New("unspecified error")
	}
	return Response{
		JSONRPC: Version,
		ID:      IDOrUnknown(id),
		Error:   FromError(err),
	}
}
