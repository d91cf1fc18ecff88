package jsonrpc

import (
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

const (
	CodeParseError                 = -32700
	CodeInvalidRequest             = -32600
	CodeMethodNotFound             = -32601
	CodeInvalidParams              = -32602
	CodeInternalError              = -32603
	CodeTaskNotFound               = -32001
	CodeTaskNotCancelable          = -32002
	CodePushNotificationNotSupport = -32003
	CodeUnsupportedOperation       = -32004
	CodeExtendedCardNotConfigured  = -32007
)

// Error is a JSON-RPC error object. It also satisfies the error interface so
// clients can return it directly.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Is lets callers compare a decoded remote error against the local sentinels.
func (e *Error) Is(target error) bool {
	for _, m := range codeTable {
		if m.code == e.Code && m.sentinel == target {
			return true
		}
	}
	return false
}

type codeMapping struct {
	sentinel error
	code     int
}

// Order matters: the first matching sentinel decides the code.
var codeTable = []codeMapping{
	{contractx.ErrParse, CodeParseError},
	{contractx.ErrInvalidRequest, CodeInvalidRequest},
	{contractx.ErrMethodNotFound, CodeMethodNotFound},
	{contractx.ErrInvalidParams, CodeInvalidParams},
	{contractx.ErrUnknownTool, CodeInvalidParams},
	{contractx.ErrInvalidArguments, CodeInvalidParams},
	{contractx.ErrTaskNotFound, CodeTaskNotFound},
	{contractx.ErrTaskNotCancelable, CodeTaskNotCancelable},
	{contractx.ErrPushNotSupported, CodePushNotificationNotSupport},
	{contractx.ErrUnsupportedOperation, CodeUnsupportedOperation},
	{contractx.ErrTaskTerminal, CodeUnsupportedOperation},
	{contractx.ErrTaskInFlight, CodeUnsupportedOperation},
	{contractx.ErrExtendedCardNotConfigured, CodeExtendedCardNotConfigured},
}

// CodeFor returns the numeric code for err, defaulting to CodeInternalError.
func CodeFor(err error) int {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	for _, m := range codeTable {
		if errors.Is(err, m.sentinel) {
			return m.code
		}
	}
	return CodeInternalError
}

// FromError converts any error into a JSON-RPC error object.
func FromError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &Error{Code: CodeFor(err), Message: err.Error()}
}
