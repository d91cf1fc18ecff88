package orchestratornode

import (
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	flightx "github.com/tanpawarit/travel-agent-mesh/agent/provider/flight"
	hotelx "github.com/tanpawarit/travel-agent-mesh/agent/provider/hotel"
)

// BuildPlan assembles the planned TravelPlan from the joined call results.
func BuildPlan(in *PlanState) (*PlanState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: plan state is nil", contractx.ErrValidation)
	}

	plan := TravelPlan{
		TripID:       in.TripID,
		Flights:      []flightx.Flight{},
		Hotels:       []hotelx.Hotel{},
		Status:       PlanStatusPlanned,
		Preferences:  in.Request.Preferences,
		FlightTaskID: in.Flight.TaskID,
		HotelTaskID:  in.Hotel.TaskID,
	}

	if in.Flight.OK() {
		var res flightx.SearchResult
		if err := decodeData(in.Flight.Data, &res); err != nil {
			log.Warn().Err(err).Str("trip_id", in.TripID).Msg("ignore undecodable flight data")
		} else if res.Flights != nil {
			plan.Flights = res.Flights
		}
	} else {
		plan.Warnings = append(plan.Warnings, in.Flight.Err.Error())
	}

	if in.Hotel.OK() {
		var res hotelx.SearchResult
		if err := decodeData(in.Hotel.Data, &res); err != nil {
			log.Warn().Err(err).Str("trip_id", in.TripID).Msg("ignore undecodable hotel data")
		} else if res.Hotels != nil {
			plan.Hotels = res.Hotels
		}
	} else {
		plan.Warnings = append(plan.Warnings, in.Hotel.Err.Error())
	}

	in.Plan = plan
	return in, nil
}
