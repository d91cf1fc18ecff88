package contract

import "strings"

type AgentType string

const (
	AgentTypeOrchestrator AgentType = "orchestrator"
	AgentTypeFlight       AgentType = "flight"
	AgentTypeHotel        AgentType = "hotel"
)

// Title returns the display prefix used in agent messages, e.g. "Flight".
func (t AgentType) Title() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type Intent string

const (
	IntentSearch       Intent = "search"
	IntentBook         Intent = "book"
	IntentUnrecognized Intent = "unrecognized"
)

// ClassifyIntent maps free text to an intent by case-insensitive keyword containment.
// Search keywords win over book keywords.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "search"), strings.Contains(lower, "find"):
		return IntentSearch
	case strings.Contains(lower, "book"):
		return IntentBook
	default:
		return IntentUnrecognized
	}
}
