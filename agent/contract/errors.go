package contract

import "errors"

var (
	ErrModelInvoke   = errors.New("model invoke failed")
	ErrPromptMissing = errors.New("required prompt is missing")
	ErrValidation    = errors.New("validation failed")
)

// Routing errors raised by providers and aggregators.
var (
	ErrNotOwned        = errors.New("item not owned by provider")
	ErrNoProviderFound = errors.New("no provider found")
)

// Tool invocation errors.
var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrToolInvocation   = errors.New("tool invocation failed")
)

// Task lifecycle errors.
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskNotCancelable = errors.New("task cannot be canceled")
	ErrTaskTerminal      = errors.New("task is already in a terminal state")
	ErrTaskInFlight      = errors.New("task is already being processed")
	ErrPushDelivery      = errors.New("push notification delivery failed")
)

// Protocol errors surfaced by the dispatcher and gateway.
var (
	ErrParse                     = errors.New("parse error")
	ErrInvalidRequest            = errors.New("invalid request")
	ErrMethodNotFound            = errors.New("method not found")
	ErrInvalidParams             = errors.New("invalid params")
	ErrUnsupportedOperation      = errors.New("unsupported operation")
	ErrPushNotSupported          = errors.New("push notifications are not supported")
	ErrExtendedCardNotConfigured = errors.New("authenticated extended card is not configured")
	ErrAgentCall                 = errors.New("agent call failed")
)
