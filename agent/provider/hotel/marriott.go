package hotel

import (
	"context"
	"fmt"

	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
)

var (
	marriottTypes     = []string{"Downtown", "Suites", "Executive"}
	marriottRoomTypes = []string{"Standard King", "Executive Suite", "Presidential Suite"}
)

type Marriott struct {
	chain
}

func NewMarriott(opts ...ChainOption) *Marriott {
	return &Marriott{chain: newChain("Marriott", "MAR", opts)}
}

func (m *Marriott) Search(_ context.Context, criteria Criteria) ([]Hotel, error) {
	hotels := make([]Hotel, 0, len(marriottTypes))
	for i := 1; i <= len(marriottTypes); i++ {
		star := 4
		if i > 2 {
			star = 5
		}
		hotels = append(hotels, Hotel{
			HotelID:       fmt.Sprintf("MAR%d:%s", i, compactDestination(criteria.Destination)),
			Name:          fmt.Sprintf("Marriott %s %s", criteria.Destination, marriottTypes[i-1]),
			Address:       fmt.Sprintf("%d Main Street, %s", 100+i*50, criteria.Destination),
			City:          criteria.Destination,
			Country:       "USA",
			StarRating:    star,
			PricePerNight: 180 + float64(i)*60,
			Currency:      "USD",
			RoomType:      marriottRoomTypes[i-1],
			Amenities:     []string{"WiFi", "Fitness Center", "Business Center", "Room Service", "Concierge"},
			Rating:        4.2 + float64(i)*0.2,
			ReviewCount:   850 + i*100,
			Description:   "Luxury accommodation in the heart of " + criteria.Destination,
			HasWifi:       true,
			HasParking:    true,
			HasBreakfast:  i > 1,
			Provider:      m.name,
		})
	}
	return hotels, nil
}

func (m *Marriott) Book(_ context.Context, hotelID string, guestDetails map[string]any) (Booking, error) {
	b, err := m.booking(hotelID, guestDetails)
	if err != nil {
		return Booking{}, err
	}
	b.LoyaltyPoints = 500
	return b, nil
}

func (m *Marriott) Recommend(_ context.Context, destination string, _ string) ([]providerx.Recommendation, error) {
	return []providerx.Recommendation{{
		Destination:    destination,
		Recommendation: "Premium Marriott properties in " + destination + " with excellent business facilities",
		AveragePrice:   280,
		Popularity:     "Very High",
		Seasonality:    "Peak season premium applies",
		SpecialOffers:  "Marriott Bonvoy members get 10% off",
		Provider:       m.name,
	}}, nil
}

func (m *Marriott) SearchNearAirport(_ context.Context, criteria AirportCriteria) ([]Hotel, error) {
	return []Hotel{{
		HotelID:             m.airportID(criteria.AirportCode),
		Name:                "Marriott " + criteria.AirportCode + " Airport",
		Address:             "Airport Terminal Area",
		City:                airportCity(criteria.AirportCode),
		StarRating:          4,
		PricePerNight:       220,
		Currency:            "USD",
		DistanceFromAirport: "0.5 miles",
		ShuttleService:      boolPtr(true),
		Amenities:           []string{"Airport Shuttle", "WiFi", "Fitness Center", "Restaurant"},
		Provider:            m.name,
	}}, nil
}

func (m *Marriott) Details(_ context.Context, hotelID string) (Details, error) {
	if !m.Owns(hotelID) {
		return NotFound(hotelID), nil
	}
	return Details{
		HotelID: hotelID,
		DetailedAmenities: []string{
			"24/7 Front Desk", "Concierge Service", "Valet Parking",
			"Fitness Center", "Swimming Pool", "Business Center",
			"Restaurant", "Room Service", "Laundry Service",
		},
		CheckInTime:        "3:00 PM",
		CheckOutTime:       "12:00 PM",
		PetPolicy:          "Pets allowed with fee",
		CancellationPolicy: "Free cancellation until 6 PM day before arrival",
		Provider:           m.name,
	}, nil
}
