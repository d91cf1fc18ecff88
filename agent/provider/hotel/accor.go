package hotel

import (
	"context"
	"fmt"

	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
)

type accorBrand struct {
	name         string
	price        float64
	stars        int
	room         string
	rating       float64
	amenities    []string
	description  string
	hasParking   bool
	hasBreakfast bool
}

var accorBrands = []accorBrand{
	{
		name: "Sofitel", price: 350, stars: 5, room: "Luxury Suite", rating: 4.6,
		amenities:   []string{"Luxury Spa", "Fine Dining", "Concierge", "Valet Parking", "WiFi"},
		description: "Luxury French elegance in the heart of %s",
		hasParking:  true, hasBreakfast: true,
	},
	{
		name: "Novotel", price: 160, stars: 4, room: "Superior Room", rating: 4.3,
		amenities:   []string{"Restaurant", "Bar", "Fitness Center", "WiFi", "Parking"},
		description: "Contemporary comfort and convenience in %s",
		hasParking:  true,
	},
	{
		name: "Ibis", price: 90, stars: 3, room: "Standard Room", rating: 4.0,
		amenities:   []string{"Free WiFi", "24/7 Reception", "Budget-Friendly"},
		description: "Smart budget accommodation in %s",
	},
}

type Accor struct {
	chain
}

func NewAccor(opts ...ChainOption) *Accor {
	return &Accor{chain: newChain("Accor", "ACC", opts)}
}

func (a *Accor) Search(_ context.Context, criteria Criteria) ([]Hotel, error) {
	hotels := make([]Hotel, 0, len(accorBrands))
	for i, brand := range accorBrands {
		hotels = append(hotels, Hotel{
			HotelID:       fmt.Sprintf("ACC%d:%s", i+1, compactDestination(criteria.Destination)),
			Name:          brand.name + " " + criteria.Destination,
			Address:       fmt.Sprintf("%d International Ave, %s", 300+i*40, criteria.Destination),
			City:          criteria.Destination,
			Country:       "USA",
			StarRating:    brand.stars,
			PricePerNight: brand.price,
			Currency:      "USD",
			RoomType:      brand.room,
			Amenities:     append([]string(nil), brand.amenities...),
			Rating:        brand.rating,
			ReviewCount:   600 + i*200,
			Description:   fmt.Sprintf(brand.description, criteria.Destination),
			HasWifi:       true,
			HasParking:    brand.hasParking,
			HasBreakfast:  brand.hasBreakfast,
			Provider:      a.name,
		})
	}
	return hotels, nil
}

func (a *Accor) Book(_ context.Context, hotelID string, guestDetails map[string]any) (Booking, error) {
	b, err := a.booking(hotelID, guestDetails)
	if err != nil {
		return Booking{}, err
	}
	b.LoyaltyProgram = "ALL - Accor Live Limitless"
	return b, nil
}

func (a *Accor) Recommend(_ context.Context, destination string, _ string) ([]providerx.Recommendation, error) {
	return []providerx.Recommendation{{
		Destination:    destination,
		Recommendation: "Diverse Accor portfolio in " + destination + " from luxury Sofitel to budget Ibis",
		AveragePrice:   200,
		Popularity:     "High",
		Seasonality:    "Variable by brand",
		SpecialOffers:  "ALL loyalty program benefits",
		Provider:       a.name,
	}}, nil
}

func (a *Accor) SearchNearAirport(_ context.Context, criteria AirportCriteria) ([]Hotel, error) {
	return []Hotel{{
		HotelID:             a.airportID(criteria.AirportCode),
		Name:                "Novotel " + criteria.AirportCode + " Airport",
		Address:             "Airport Terminal Complex",
		City:                airportCity(criteria.AirportCode),
		StarRating:          4,
		PricePerNight:       180,
		Currency:            "USD",
		DistanceFromAirport: "Connected to terminal",
		ShuttleService:      boolPtr(false),
		Amenities:           []string{"Direct Terminal Access", "WiFi", "Restaurant", "Fitness Center"},
		Provider:            a.name,
	}}, nil
}

func (a *Accor) Details(_ context.Context, hotelID string) (Details, error) {
	if !a.Owns(hotelID) {
		return NotFound(hotelID), nil
	}
	return Details{
		HotelID: hotelID,
		DetailedAmenities: []string{
			"24/7 Reception", "Multilingual Staff", "Currency Exchange",
			"Fitness Center", "Restaurant", "Bar", "Room Service",
			"Business Facilities", "Meeting Rooms",
		},
		CheckInTime:        "3:00 PM",
		CheckOutTime:       "12:00 PM",
		PetPolicy:          "Pet-friendly options available",
		CancellationPolicy: "Flexible cancellation based on rate",
		Provider:           a.name,
	}, nil
}
