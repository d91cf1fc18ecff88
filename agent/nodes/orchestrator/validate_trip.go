package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

const (
	flightPromptFormat = "Search for flights from %s to %s, departing %s, returning %s. Preferences: %s"
	hotelPromptFormat  = "Find hotels in %s for check-in %s, check-out %s. Consider proximity to airport and city center. Preferences: %s"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func ValidateTrip(in TripRequest, nowFn func() time.Time, newID func() string) (*PlanState, error) {
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)
	in.DepartureDate = strings.TrimSpace(in.DepartureDate)
	in.ReturnDate = strings.TrimSpace(in.ReturnDate)
	in.Preferences = strings.TrimSpace(in.Preferences)

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, fmt.Errorf("%w: trip %s fails %s", contractx.ErrValidation, fe.Field(), fe.Tag())
		}
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	if in.ReturnDate != "" && in.ReturnDate < in.DepartureDate {
		return nil, fmt.Errorf("%w: return date %s is before departure %s", contractx.ErrValidation, in.ReturnDate, in.DepartureDate)
	}

	flightPrompt := fmt.Sprintf(flightPromptFormat, in.From, in.To, in.DepartureDate, in.ReturnDate, in.Preferences)
	hotelPrompt := fmt.Sprintf(hotelPromptFormat, in.To, in.DepartureDate, in.ReturnDate, in.Preferences)
	if in.Passengers > 0 {
		flightPrompt += fmt.Sprintf(" Travelers: %d passengers.", in.Passengers)
		hotelPrompt += fmt.Sprintf(" Guests: %d guests.", in.Passengers)
	}

	return &PlanState{
		Request:      in,
		TripID:       newID(),
		Now:          nowFn().UTC(),
		FlightPrompt: flightPrompt,
		HotelPrompt:  hotelPrompt,
	}, nil
}
