package specialist

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	flightx "github.com/tanpawarit/travel-agent-mesh/agent/provider/flight"
	taskx "github.com/tanpawarit/travel-agent-mesh/agent/task"
	toolx "github.com/tanpawarit/travel-agent-mesh/agent/tool"
)

const (
	defaultFlightFrom       = "NYC"
	defaultFlightTo         = "LON"
	defaultFlightDeparture  = "2024-12-15"
	defaultFlightPassengers = 1

	flightHelpText = "I can help you search and book flights. What would you like to do?"
)

type flightDomain struct{}

func (flightDomain) help() string {
	return flightHelpText
}

func (flightDomain) searchCall(text string) (string, any) {
	args := toolx.SearchFlightsArgs{
		From:          defaultFlightFrom,
		To:            defaultFlightTo,
		DepartureDate: defaultFlightDeparture,
		Passengers:    defaultFlightPassengers,
		CabinClass:    cabin(text),
		Preferences:   preferences(text),
	}
	if from, to, ok := route(text); ok {
		args.From, args.To = from, to
	}
	if ds := dates(text); len(ds) > 0 {
		args.DepartureDate = ds[0]
		if len(ds) > 1 {
			args.ReturnDate = ds[1]
		}
	}
	if n, ok := count(passengerPattern, text); ok {
		args.Passengers = n
	}
	return toolx.ToolSearchFlights, args
}

func (flightDomain) bookCall(text string) (string, any, error) {
	id, ok := itemID(text)
	if !ok {
		return toolx.ToolBookFlight, nil, fmt.Errorf("%w: no flight id found in message", contractx.ErrInvalidArguments)
	}
	details := contactDetails(text)
	if n, ok := count(passengerPattern, text); ok {
		details["passengers"] = n
	}
	return toolx.ToolBookFlight, toolx.BookFlightArgs{FlightID: id, PassengerDetails: details}, nil
}

func (flightDomain) summarize(tool string, raw json.RawMessage) (taskx.Result, error) {
	data := decodeData(raw)
	if tool == toolx.ToolSearchFlights {
		var res flightx.SearchResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return taskx.Result{}, fmt.Errorf("decode %s result: %w", tool, err)
		}
		return taskx.Result{Text: formatFlights(res), Data: data}, nil
	}

	var booking flightx.Booking
	if err := json.Unmarshal(raw, &booking); err == nil && booking.BookingID != "" {
		text := fmt.Sprintf("Flight request processed: booking %s for flight %s is %s with %s (confirmation %s)",
			booking.BookingID, booking.FlightID, booking.Status, booking.Provider, booking.ConfirmationNumber)
		return taskx.Result{Text: text, Data: data}, nil
	}
	return taskx.Result{Text: "Flight request processed: " + compact(raw), Data: data}, nil
}

func formatFlights(res flightx.SearchResult) string {
	total := res.Total
	if total == 0 {
		total = len(res.Flights)
	}
	options := make([]string, 0, len(res.Flights))
	for _, f := range res.Flights {
		options = append(options, fmt.Sprintf("%s %s %s->%s departs %s, %.2f %s",
			f.FlightID, f.Airline, f.From, f.To, f.DepartureTime, f.Fare, f.Currency))
	}
	return fmt.Sprintf("Found %d flights. Here are the options: %s", total, strings.Join(options, "; "))
}

func compact(raw json.RawMessage) string {
	return strings.Join(strings.Fields(string(raw)), " ")
}
