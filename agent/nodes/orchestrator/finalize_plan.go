package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

func FinalizePlan(in *PlanState) (TravelPlan, error) {
	if in == nil {
		return TravelPlan{}, fmt.Errorf("%w: plan state is nil", contractx.ErrValidation)
	}
	if in.Plan.TripID == "" {
		return TravelPlan{}, fmt.Errorf("%w: plan was not built", contractx.ErrValidation)
	}
	plan := in.Plan
	plan.Flights = append(plan.Flights[:0:0], plan.Flights...)
	plan.Hotels = append(plan.Hotels[:0:0], plan.Hotels...)
	plan.Warnings = append([]string(nil), plan.Warnings...)
	return plan, nil
}
