// Package flight holds the flight inventory providers and the aggregated flight service.
package flight

import "context"

const (
	DefaultSearchLimit = 20
	DefaultCabinClass  = "economy"
)

type Criteria struct {
	From          string
	To            string
	DepartureDate string
	ReturnDate    string
	Passengers    int
	CabinClass    string
	Preferences   string
}

type Flight struct {
	FlightID       string   `json:"flightId"`
	FlightNumber   string   `json:"flightNumber"`
	Airline        string   `json:"airline"`
	From           string   `json:"from"`
	To             string   `json:"to"`
	DepartureTime  string   `json:"departureTime"`
	ArrivalTime    string   `json:"arrivalTime"`
	Fare           float64  `json:"price"`
	Currency       string   `json:"currency"`
	CabinClass     string   `json:"cabinClass"`
	AvailableSeats int      `json:"availableSeats"`
	Amenities      []string `json:"amenities"`
	Duration       string   `json:"duration"`
	Stops          int      `json:"stops"`
	Provider       string   `json:"provider"`
}

func (f Flight) ItemID() string {
	return f.FlightID
}

func (f Flight) Price() float64 {
	return f.Fare
}

type Booking struct {
	BookingID          string         `json:"bookingId"`
	FlightID           string         `json:"flightId"`
	Status             string         `json:"status"`
	PassengerDetails   map[string]any `json:"passengerDetails"`
	ConfirmationNumber string         `json:"confirmationNumber"`
	Provider           string         `json:"provider"`
}

type Status struct {
	FlightNumber  string `json:"flightNumber,omitempty"`
	Airline       string `json:"airline,omitempty"`
	Status        string `json:"status"`
	DepartureTime string `json:"departureTime,omitempty"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
	Gate          string `json:"gate,omitempty"`
	Terminal      string `json:"terminal,omitempty"`
	Delay         string `json:"delay,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Provider      string `json:"provider,omitempty"`
	Message       string `json:"message,omitempty"`
}

// UnknownStatus is returned when no provider claims the carrier.
func UnknownStatus() Status {
	return Status{Status: "unknown", Message: "Flight status not available"}
}

// StatusReporter is implemented by providers that can report live status.
type StatusReporter interface {
	HandlesCarrier(carrier string) bool
	Status(ctx context.Context, flightNumber string, carrier string) (Status, error)
}
