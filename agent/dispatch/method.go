package dispatch

import "github.com/tanpawarit/travel-agent-mesh/agent/a2a"

// Method is the closed set of A2A operations the dispatcher serves.
type Method int

const (
	MethodUnknown Method = iota
	MethodMessageSend
	MethodTaskGet
	MethodTaskCancel
	MethodPushConfigSet
	MethodPushConfigGet
	MethodPushConfigList
	MethodPushConfigDelete
	MethodExtendedCardGet
)

var methodNames = map[string]Method{
	a2a.MethodSendMessage:       MethodMessageSend,
	a2a.MethodGetTask:           MethodTaskGet,
	a2a.MethodCancelTask:        MethodTaskCancel,
	a2a.MethodSetPushConfig:     MethodPushConfigSet,
	a2a.MethodGetPushConfig:     MethodPushConfigGet,
	a2a.MethodListPushConfig:    MethodPushConfigList,
	a2a.MethodDeletePushConfig:  MethodPushConfigDelete,
	a2a.MethodExtendedAgentCard: MethodExtendedCardGet,
}

func ParseMethod(name string) Method {
	if m, ok := methodNames[name]; ok {
		return m
	}
	return MethodUnknown
}

func (m Method) String() string {
	for name, v := range methodNames {
		if v == m {
			return name
		}
	}
	return "unknown"
}
