package orchestratornode

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// FanOut starts the flight and hotel calls concurrently. The calls share a
// cancelable context so a join policy can stop the sibling.
func FanOut(ctx context.Context, in *PlanState, agents Agents, timeout time.Duration) (*PlanState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: plan state is nil", contractx.ErrValidation)
	}

	callCtx, cancel := context.WithCancel(ctx)
	in.cancel = cancel
	in.flightCall = Call(callCtx, contractx.AgentTypeFlight, agents.Flight, in.FlightPrompt, timeout)
	in.hotelCall = Call(callCtx, contractx.AgentTypeHotel, agents.Hotel, in.HotelPrompt, timeout)
	return in, nil
}
