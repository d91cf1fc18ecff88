package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	promptx "github.com/tanpawarit/travel-agent-mesh/agent/prompt"
)

func FallbackNarrative(plan TravelPlan) string {
	return fmt.Sprintf("Coordinated plan with flight and hotel agents. Task IDs: Flight=%s, Hotel=%s", plan.FlightTaskID, plan.HotelTaskID)
}

// Synthesize asks the generator for a narrative. A generator failure keeps
// the plan planned with the fallback narrative.
func Synthesize(ctx context.Context, in *PlanState, gen contractx.Generator, prompts promptx.PromptSet) (*PlanState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: plan state is nil", contractx.ErrValidation)
	}
	if gen == nil {
		return Fallback(in)
	}

	prompt, err := prompts.Synthesis(promptx.SynthesisInput{
		From:          in.Request.From,
		To:            in.Request.To,
		DepartureDate: in.Request.DepartureDate,
		ReturnDate:    in.Request.ReturnDate,
		Preferences:   in.Request.Preferences,
		FlightTaskID:  in.Plan.FlightTaskID,
		HotelTaskID:   in.Plan.HotelTaskID,
		FlightSummary: in.Flight.Text,
		HotelSummary:  in.Hotel.Text,
		Warnings:      in.Plan.Warnings,
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("trip_id", in.TripID).Msg("synthesis prompt unavailable, using fallback narrative")
		return Fallback(in)
	}

	narrative, err := gen.Generate(ctx, prompt, prompts.Orchestrator)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("trip_id", in.TripID).Msg("narrative generation failed, using fallback narrative")
		return Fallback(in)
	}

	in.Plan.Narrative = narrative
	in.Plan.Status = PlanStatusCoordinated
	return in, nil
}

func Fallback(in *PlanState) (*PlanState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: plan state is nil", contractx.ErrValidation)
	}
	in.Plan.Narrative = FallbackNarrative(in.Plan)
	in.Plan.Status = PlanStatusPlanned
	return in, nil
}
