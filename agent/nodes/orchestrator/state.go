package orchestratornode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	flightx "github.com/tanpawarit/travel-agent-mesh/agent/provider/flight"
	hotelx "github.com/tanpawarit/travel-agent-mesh/agent/provider/hotel"
)

type JoinPolicy string

const (
	JoinAllOrNothing JoinPolicy = "all-or-nothing"
	JoinPartial      JoinPolicy = "partial"
)

func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch p := JoinPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return JoinAllOrNothing, nil
	case JoinAllOrNothing, JoinPartial:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown join policy %q", contractx.ErrValidation, s)
	}
}

type PlanStatus string

const (
	PlanStatusPlanned     PlanStatus = "planned"
	PlanStatusCoordinated PlanStatus = "coordinated"
)

type TripRequest struct {
	From          string `json:"from" validate:"required"`
	To            string `json:"to" validate:"required"`
	DepartureDate string `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"returnDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Passengers    int    `json:"passengers,omitempty" validate:"omitempty,min=1"`
	Preferences   string `json:"preferences,omitempty"`
}

// TravelPlan is built once per PlanTrip call and not changed afterwards.
type TravelPlan struct {
	TripID       string           `json:"tripId"`
	Flights      []flightx.Flight `json:"flights"`
	Hotels       []hotelx.Hotel   `json:"hotels"`
	Status       PlanStatus       `json:"status"`
	Preferences  string           `json:"preferences,omitempty"`
	Narrative    string           `json:"narrative"`
	FlightTaskID string           `json:"flightTaskId,omitempty"`
	HotelTaskID  string           `json:"hotelTaskId,omitempty"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// AgentCaller sends one message to a remote agent and returns its first event.
type AgentCaller interface {
	SendMessage(ctx context.Context, params a2a.MessageSendParams) (a2a.Event, error)
}

type Agents struct {
	Flight AgentCaller
	Hotel  AgentCaller
}

// PlanState is threaded through the plan-trip graph.
type PlanState struct {
	Request TripRequest
	TripID  string
	Now     time.Time

	FlightPrompt string
	HotelPrompt  string

	flightCall *Future
	hotelCall  *Future
	cancel     context.CancelFunc

	Flight CallResult
	Hotel  CallResult

	Plan TravelPlan
}

func (s *PlanState) release() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}
