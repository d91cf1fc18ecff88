package hotel

import (
	"context"
	"fmt"

	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
)

type HolidayInn struct {
	chain
}

func NewHolidayInn(opts ...ChainOption) *HolidayInn {
	return &HolidayInn{chain: newChain("Holiday Inn", "HI", opts)}
}

func (h *HolidayInn) Search(_ context.Context, criteria Criteria) ([]Hotel, error) {
	hotels := make([]Hotel, 0, 2)
	for i := 1; i <= 2; i++ {
		suffix, room := "Express", "Standard Queen"
		if i == 2 {
			suffix, room = "& Suites", "King Suite"
		}
		hotels = append(hotels, Hotel{
			HotelID:       fmt.Sprintf("HI%d:%s", i, compactDestination(criteria.Destination)),
			Name:          fmt.Sprintf("Holiday Inn %s %s", criteria.Destination, suffix),
			Address:       fmt.Sprintf("%d Business Drive, %s", 200+i*30, criteria.Destination),
			City:          criteria.Destination,
			Country:       "USA",
			StarRating:    3,
			PricePerNight: 120 + float64(i)*40,
			Currency:      "USD",
			RoomType:      room,
			Amenities:     []string{"Free WiFi", "Free Breakfast", "Fitness Center", "Business Center"},
			Rating:        4.0 + float64(i)*0.1,
			ReviewCount:   500 + i*75,
			Description:   "Comfortable stay with great value in " + criteria.Destination,
			HasWifi:       true,
			HasParking:    true,
			HasBreakfast:  true,
			Provider:      h.name,
		})
	}
	return hotels, nil
}

func (h *HolidayInn) Book(_ context.Context, hotelID string, guestDetails map[string]any) (Booking, error) {
	b, err := h.booking(hotelID, guestDetails)
	if err != nil {
		return Booking{}, err
	}
	b.Includes = "Free breakfast and WiFi"
	return b, nil
}

func (h *HolidayInn) Recommend(_ context.Context, destination string, _ string) ([]providerx.Recommendation, error) {
	return []providerx.Recommendation{{
		Destination:    destination,
		Recommendation: "Great value Holiday Inn properties in " + destination + " with free breakfast",
		AveragePrice:   140,
		Popularity:     "High",
		Seasonality:    "Stable year-round pricing",
		SpecialOffers:  "Kids stay free",
		Provider:       h.name,
	}}, nil
}

func (h *HolidayInn) SearchNearAirport(_ context.Context, criteria AirportCriteria) ([]Hotel, error) {
	return []Hotel{{
		HotelID:             h.airportID(criteria.AirportCode),
		Name:                "Holiday Inn Express " + criteria.AirportCode + " Airport",
		Address:             "Airport Business Park",
		City:                airportCity(criteria.AirportCode),
		StarRating:          3,
		PricePerNight:       140,
		Currency:            "USD",
		DistanceFromAirport: "1.2 miles",
		ShuttleService:      boolPtr(true),
		Amenities:           []string{"Free Airport Shuttle", "Free WiFi", "Free Breakfast", "Fitness Center"},
		Provider:            h.name,
	}}, nil
}

func (h *HolidayInn) Details(_ context.Context, hotelID string) (Details, error) {
	if !h.Owns(hotelID) {
		return NotFound(hotelID), nil
	}
	return Details{
		HotelID: hotelID,
		DetailedAmenities: []string{
			"24/7 Front Desk", "Free Continental Breakfast", "Free WiFi",
			"Fitness Center", "Business Center", "Free Parking",
			"Indoor Pool", "Laundry Facilities",
		},
		CheckInTime:        "3:00 PM",
		CheckOutTime:       "11:00 AM",
		PetPolicy:          "Pets welcome with deposit",
		CancellationPolicy: "Free cancellation until 6 PM day of arrival",
		Provider:           h.name,
	}, nil
}
