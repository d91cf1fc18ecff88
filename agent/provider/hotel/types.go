// Package hotel holds the hotel inventory providers and the aggregated hotel service.
package hotel

import (
	"context"
	"strings"
)

const (
	DefaultSearchLimit = 15
	DefaultRooms       = 1
)

type Criteria struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Guests      int
	Rooms       int
	Preferences string
}

type AirportCriteria struct {
	AirportCode string
	CheckIn     string
	CheckOut    string
}

type Hotel struct {
	HotelID             string   `json:"hotelId"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	City                string   `json:"city"`
	Country             string   `json:"country,omitempty"`
	StarRating          int      `json:"starRating"`
	PricePerNight       float64  `json:"pricePerNight"`
	Currency            string   `json:"currency"`
	RoomType            string   `json:"roomType,omitempty"`
	Amenities           []string `json:"amenities"`
	Rating              float64  `json:"rating,omitempty"`
	ReviewCount         int      `json:"reviewCount,omitempty"`
	Description         string   `json:"description,omitempty"`
	HasWifi             bool     `json:"hasWifi"`
	HasParking          bool     `json:"hasParking"`
	HasBreakfast        bool     `json:"hasBreakfast"`
	DistanceFromAirport string   `json:"distanceFromAirport,omitempty"`
	ShuttleService      *bool    `json:"shuttleService,omitempty"`
	Provider            string   `json:"provider"`
}

func (h Hotel) ItemID() string {
	return h.HotelID
}

func (h Hotel) Price() float64 {
	return h.PricePerNight
}

type Booking struct {
	BookingID          string         `json:"bookingId"`
	HotelID            string         `json:"hotelId"`
	Status             string         `json:"status"`
	GuestDetails       map[string]any `json:"guestDetails"`
	ConfirmationNumber string         `json:"confirmationNumber"`
	Provider           string         `json:"provider"`
	LoyaltyPoints      int            `json:"loyaltyPoints,omitempty"`
	LoyaltyProgram     string         `json:"loyaltyProgram,omitempty"`
	Includes           string         `json:"includes,omitempty"`
}

type Details struct {
	HotelID            string   `json:"hotelId"`
	DetailedAmenities  []string `json:"detailedAmenities,omitempty"`
	CheckInTime        string   `json:"checkInTime,omitempty"`
	CheckOutTime       string   `json:"checkOutTime,omitempty"`
	PetPolicy          string   `json:"petPolicy,omitempty"`
	CancellationPolicy string   `json:"cancellationPolicy,omitempty"`
	Provider           string   `json:"provider,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// NotFound is the details sentinel returned when no provider owns hotelID.
func NotFound(hotelID string) Details {
	return Details{HotelID: hotelID, Error: "Hotel not found"}
}

// DetailsProvider is implemented by providers that describe a single property.
type DetailsProvider interface {
	Details(ctx context.Context, hotelID string) (Details, error)
}

// AirportSearcher is implemented by providers with airport properties.
type AirportSearcher interface {
	SearchNearAirport(ctx context.Context, criteria AirportCriteria) ([]Hotel, error)
}

var airportCities = map[string]string{
	"JFK": "New York",
	"LGA": "New York",
	"EWR": "New York",
	"LAX": "Los Angeles",
	"ORD": "Chicago",
	"DFW": "Dallas",
	"ATL": "Atlanta",
}

func airportCity(code string) string {
	if city, ok := airportCities[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return city
	}
	return "Airport City"
}

func compactDestination(destination string) string {
	return strings.Join(strings.Fields(destination), "")
}

func boolPtr(v bool) *bool {
	return &v
}
