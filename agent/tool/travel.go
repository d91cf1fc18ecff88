package tool

import (
	"context"

	"github.com/cloudwego/eino/schema"
	flightx "github.com/tanpawarit/travel-agent-mesh/agent/provider/flight"
	hotelx "github.com/tanpawarit/travel-agent-mesh/agent/provider/hotel"
)

const (
	ToolSearchFlights      = "search_flights"
	ToolBookFlight         = "book_flight"
	ToolGetRecommendations = "get_recommendations"
	ToolGetFlightStatus    = "get_flight_status"

	ToolSearchHotels      = "search_hotels"
	ToolBookHotel         = "book_hotel"
	ToolSearchNearAirport = "search_near_airport"
	ToolGetHotelDetails   = "get_hotel_details"
)

type SearchFlightsArgs struct {
	From          string `json:"from" validate:"required"`
	To            string `json:"to" validate:"required"`
	DepartureDate string `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"returnDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Passengers    int    `json:"passengers" validate:"required,min=1"`
	CabinClass    string `json:"cabinClass,omitempty" validate:"omitempty,oneof=economy business first"`
	Preferences   string `json:"preferences,omitempty"`
}

type BookFlightArgs struct {
	FlightID         string         `json:"flightId" validate:"required"`
	PassengerDetails map[string]any `json:"passengerDetails" validate:"required"`
}

type RecommendationsArgs struct {
	Destination string `json:"destination" validate:"required"`
	Preferences string `json:"preferences,omitempty"`
}

type FlightStatusArgs struct {
	FlightNumber string `json:"flightNumber" validate:"required"`
	Airline      string `json:"airline" validate:"required"`
}

type SearchHotelsArgs struct {
	Destination string `json:"destination" validate:"required"`
	CheckIn     string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut    string `json:"checkOut" validate:"required,datetime=2006-01-02"`
	Guests      int    `json:"guests" validate:"required,min=1"`
	Rooms       int    `json:"rooms,omitempty" validate:"omitempty,min=1"`
	Preferences string `json:"preferences,omitempty"`
}

type BookHotelArgs struct {
	HotelID      string         `json:"hotelId" validate:"required"`
	GuestDetails map[string]any `json:"guestDetails" validate:"required"`
}

type NearAirportArgs struct {
	AirportCode string `json:"airportCode" validate:"required,alpha,len=3"`
	CheckIn     string `json:"checkIn,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOut    string `json:"checkOut,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type HotelDetailsArgs struct {
	HotelID string `json:"hotelId" validate:"required"`
}

// FlightService is the flight aggregator surface exposed as tools.
type FlightService interface {
	Search(ctx context.Context, criteria flightx.Criteria) (flightx.SearchResult, error)
	Book(ctx context.Context, flightID string, passengerDetails map[string]any) (flightx.Booking, error)
	Recommendations(ctx context.Context, destination string, preferences string) (flightx.RecommendationResult, error)
	Status(ctx context.Context, flightNumber string, carrier string) (flightx.Status, error)
}

// HotelService is the hotel aggregator surface exposed as tools.
type HotelService interface {
	Search(ctx context.Context, criteria hotelx.Criteria) (hotelx.SearchResult, error)
	Book(ctx context.Context, hotelID string, guestDetails map[string]any) (hotelx.Booking, error)
	Recommendations(ctx context.Context, destination string, preferences string) (hotelx.RecommendationResult, error)
	SearchNearAirport(ctx context.Context, criteria hotelx.AirportCriteria) (hotelx.AirportResult, error)
	Details(ctx context.Context, hotelID string) (hotelx.Details, error)
}

func NewFlightCatalog(svc FlightService) (*Catalog, error) {
	return NewCatalog(
		Tool{
			Name:        ToolSearchFlights,
			Description: "Search for flights based on origin, destination, dates, and preferences",
			Params: map[string]*schema.ParameterInfo{
				"from":          {Type: schema.String, Desc: "Origin airport code or city", Required: true},
				"to":            {Type: schema.String, Desc: "Destination airport code or city", Required: true},
				"departureDate": {Type: schema.String, Desc: "Departure date (YYYY-MM-DD)", Required: true},
				"returnDate":    {Type: schema.String, Desc: "Return date (YYYY-MM-DD), optional"},
				"passengers":    {Type: schema.Integer, Desc: "Number of passengers", Required: true},
				"cabinClass":    {Type: schema.String, Desc: "Cabin class (economy, business, first)"},
				"preferences":   {Type: schema.String, Desc: "Additional preferences"},
			},
			Handler: Bind(func(ctx context.Context, args SearchFlightsArgs) (any, error) {
				return svc.Search(ctx, flightx.Criteria{
					From:          args.From,
					To:            args.To,
					DepartureDate: args.DepartureDate,
					ReturnDate:    args.ReturnDate,
					Passengers:    args.Passengers,
					CabinClass:    args.CabinClass,
					Preferences:   args.Preferences,
				})
			}),
		},
		Tool{
			Name:        ToolBookFlight,
			Description: "Book a specific flight",
			Params: map[string]*schema.ParameterInfo{
				"flightId":         {Type: schema.String, Desc: "Flight identifier", Required: true},
				"passengerDetails": {Type: schema.Object, Desc: "Passenger information", Required: true},
			},
			Handler: Bind(func(ctx context.Context, args BookFlightArgs) (any, error) {
				return svc.Book(ctx, args.FlightID, args.PassengerDetails)
			}),
		},
		Tool{
			Name:        ToolGetRecommendations,
			Description: "Get flight recommendations for a destination",
			Params:      recommendationParams("Destination city or airport"),
			Handler: Bind(func(ctx context.Context, args RecommendationsArgs) (any, error) {
				return svc.Recommendations(ctx, args.Destination, args.Preferences)
			}),
		},
		Tool{
			Name:        ToolGetFlightStatus,
			Description: "Get real-time flight status information",
			Params: map[string]*schema.ParameterInfo{
				"flightNumber": {Type: schema.String, Desc: "Flight number", Required: true},
				"airline":      {Type: schema.String, Desc: "Airline code", Required: true},
			},
			Handler: Bind(func(ctx context.Context, args FlightStatusArgs) (any, error) {
				return svc.Status(ctx, args.FlightNumber, args.Airline)
			}),
		},
	)
}

func NewHotelCatalog(svc HotelService) (*Catalog, error) {
	return NewCatalog(
		Tool{
			Name:        ToolSearchHotels,
			Description: "Search for hotels based on destination, dates, and preferences",
			Params: map[string]*schema.ParameterInfo{
				"destination": {Type: schema.String, Desc: "Destination city or area", Required: true},
				"checkIn":     {Type: schema.String, Desc: "Check-in date (YYYY-MM-DD)", Required: true},
				"checkOut":    {Type: schema.String, Desc: "Check-out date (YYYY-MM-DD)", Required: true},
				"guests":      {Type: schema.Integer, Desc: "Number of guests", Required: true},
				"rooms":       {Type: schema.Integer, Desc: "Number of rooms"},
				"preferences": {Type: schema.String, Desc: "Additional preferences"},
			},
			Handler: Bind(func(ctx context.Context, args SearchHotelsArgs) (any, error) {
				return svc.Search(ctx, hotelx.Criteria{
					Destination: args.Destination,
					CheckIn:     args.CheckIn,
					CheckOut:    args.CheckOut,
					Guests:      args.Guests,
					Rooms:       args.Rooms,
					Preferences: args.Preferences,
				})
			}),
		},
		Tool{
			Name:        ToolBookHotel,
			Description: "Book a specific hotel room",
			Params: map[string]*schema.ParameterInfo{
				"hotelId":      {Type: schema.String, Desc: "Hotel identifier", Required: true},
				"guestDetails": {Type: schema.Object, Desc: "Guest information", Required: true},
			},
			Handler: Bind(func(ctx context.Context, args BookHotelArgs) (any, error) {
				return svc.Book(ctx, args.HotelID, args.GuestDetails)
			}),
		},
		Tool{
			Name:        ToolGetRecommendations,
			Description: "Get hotel recommendations for a destination",
			Params:      recommendationParams("Destination city or area"),
			Handler: Bind(func(ctx context.Context, args RecommendationsArgs) (any, error) {
				return svc.Recommendations(ctx, args.Destination, args.Preferences)
			}),
		},
		Tool{
			Name:        ToolSearchNearAirport,
			Description: "Find hotels near a specific airport",
			Params: map[string]*schema.ParameterInfo{
				"airportCode": {Type: schema.String, Desc: "Airport code (e.g., JFK, LAX)", Required: true},
				"checkIn":     {Type: schema.String, Desc: "Check-in date (YYYY-MM-DD)"},
				"checkOut":    {Type: schema.String, Desc: "Check-out date (YYYY-MM-DD)"},
			},
			Handler: Bind(func(ctx context.Context, args NearAirportArgs) (any, error) {
				return svc.SearchNearAirport(ctx, hotelx.AirportCriteria{
					AirportCode: args.AirportCode,
					CheckIn:     args.CheckIn,
					CheckOut:    args.CheckOut,
				})
			}),
		},
		Tool{
			Name:        ToolGetHotelDetails,
			Description: "Get detailed information about a specific hotel",
			Params: map[string]*schema.ParameterInfo{
				"hotelId": {Type: schema.String, Desc: "Hotel identifier", Required: true},
			},
			Handler: Bind(func(ctx context.Context, args HotelDetailsArgs) (any, error) {
				return svc.Details(ctx, args.HotelID)
			}),
		},
	)
}

func recommendationParams(destinationDesc string) map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"destination": {Type: schema.String, Desc: destinationDesc, Required: true},
		"preferences": {Type: schema.String, Desc: "User preferences"},
	}
}
