package dispatch

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

const (
	PushNone    = "none"
	PushWebhook = "webhook"
	PushQStash  = "qstash"
)

// Config is loaded with the AGENT prefix. The flight and hotel agents share it.
type Config struct {
	FlightAddr       string        `envconfig:"FLIGHT_ADDR" split_words:"true" default:":8080"`
	HotelAddr        string        `envconfig:"HOTEL_ADDR" split_words:"true" default:":8082"`
	FlightPublicURL  string        `envconfig:"FLIGHT_PUBLIC_URL" split_words:"true" default:"http://localhost:8080"`
	HotelPublicURL   string        `envconfig:"HOTEL_PUBLIC_URL" split_words:"true" default:"http://localhost:8082"`
	FlightGatewayURL string        `envconfig:"FLIGHT_GATEWAY_URL" split_words:"true" default:"http://localhost:8081/mcp"`
	HotelGatewayURL  string        `envconfig:"HOTEL_GATEWAY_URL" split_words:"true" default:"http://localhost:8083/mcp"`
	CardFile         string        `envconfig:"CARD_FILE" split_words:"true"`
	ExtendedCardFile string        `envconfig:"EXTENDED_CARD_FILE" split_words:"true"`
	TaskRetention    time.Duration `envconfig:"TASK_RETENTION" split_words:"true" default:"15m"`
	JanitorInterval  time.Duration `envconfig:"JANITOR_INTERVAL" split_words:"true" default:"1m"`
	Push             string        `envconfig:"PUSH" split_words:"true" default:"none"`
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Push)) {
	case PushNone, PushWebhook, PushQStash:
	default:
		return fmt.Errorf("%w: AGENT_PUSH must be one of none, webhook, qstash, got %q", contractx.ErrValidation, c.Push)
	}
	if c.TaskRetention <= 0 {
		return fmt.Errorf("%w: AGENT_TASK_RETENTION must be positive", contractx.ErrValidation)
	}
	if c.JanitorInterval <= 0 {
		return fmt.Errorf("%w: AGENT_JANITOR_INTERVAL must be positive", contractx.ErrValidation)
	}
	return nil
}
