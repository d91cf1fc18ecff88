package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// JoinCalls waits for both agent calls and applies policy. Under
// all-or-nothing the first failure cancels the sibling call and fails the
// plan. Under partial a plan survives as long as one call succeeded.
func JoinCalls(ctx context.Context, in *PlanState, policy JoinPolicy) (*PlanState, error) {
	if in == nil || in.flightCall == nil || in.hotelCall == nil {
		return nil, fmt.Errorf("%w: agent calls were not started", contractx.ErrValidation)
	}
	defer in.release()

	if policy == JoinPartial {
		in.Flight = in.flightCall.Wait(ctx)
		in.Hotel = in.hotelCall.Wait(ctx)
		if !in.Flight.OK() && !in.Hotel.OK() {
			return nil, errors.Join(in.Flight.Err, in.Hotel.Err)
		}
		return in, nil
	}

	futures := []*Future{in.flightCall, in.hotelCall}
	results := make(chan CallResult, len(futures))
	for _, f := range futures {
		go func(f *Future) {
			results <- f.Wait(ctx)
		}(f)
	}

	for range futures {
		res := <-results
		if res.Agent == contractx.AgentTypeFlight {
			in.Flight = res
		} else {
			in.Hotel = res
		}
		if res.Err != nil {
			log.Ctx(ctx).Warn().Err(res.Err).Str("trip_id", in.TripID).Str("agent", string(res.Agent)).Msg("agent call failed, canceling sibling")
			return nil, res.Err
		}
	}
	return in, nil
}
