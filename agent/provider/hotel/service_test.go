package hotel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

func newTestService(t *testing.T, limit int) *Service {
	t.Helper()

	now := func() time.Time { return time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC) }
	svc, err := NewService(limit, DefaultProviders(now)...)
	require.NoError(t, err)
	return svc
}

func TestSearchSortsByNightlyPrice(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	res, err := svc.Search(context.Background(), Criteria{Destination: "New York", CheckIn: "2024-12-15", CheckOut: "2024-12-20", Guests: 2})
	require.NoError(t, err)

	require.Len(t, res.Hotels, 8)
	assert.Equal(t, 8, res.Total)
	assert.Equal(t, []string{"Marriott", "Holiday Inn", "Accor"}, res.Providers)

	assert.Equal(t, "ACC3:NewYork", res.Hotels[0].HotelID)
	assert.Equal(t, 90.0, res.Hotels[0].PricePerNight)
	assert.Equal(t, "MAR3:NewYork", res.Hotels[len(res.Hotels)-1].HotelID)
	for i := 1; i < len(res.Hotels); i++ {
		assert.LessOrEqual(t, res.Hotels[i-1].PricePerNight, res.Hotels[i].PricePerNight)
	}
}

func TestSearchStableTieKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	// Holiday Inn Express and Novotel both cost 160 a night.
	svc := newTestService(t, DefaultSearchLimit)
	res, err := svc.Search(context.Background(), Criteria{Destination: "Paris", Guests: 1})
	require.NoError(t, err)

	var tied []string
	for _, h := range res.Hotels {
		if h.PricePerNight == 160 {
			tied = append(tied, h.HotelID)
		}
	}
	assert.Equal(t, []string{"HI1:Paris", "ACC2:Paris"}, tied)
}

func TestBookMarriottAddsLoyaltyPoints(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	booking, err := svc.Book(context.Background(), "MAR7", map[string]any{"name": "Ada"})
	require.NoError(t, err)

	assert.Equal(t, "Marriott", booking.Provider)
	assert.Equal(t, 500, booking.LoyaltyPoints)
	assert.Regexp(t, `^MAR-[0-9A-F-]{8}$`, booking.BookingID)
}

func TestBookUnknownHotel(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	_, err := svc.Book(context.Background(), "XYZ1:Paris", nil)
	assert.True(t, errors.Is(err, contractx.ErrNoProviderFound))
}

func TestSearchNearAirport(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	res, err := svc.SearchNearAirport(context.Background(), AirportCriteria{AirportCode: "JFK"})
	require.NoError(t, err)

	require.Equal(t, 3, res.Total)
	assert.Equal(t, "JFK", res.AirportCode)
	assert.Equal(t, "MAR-AIRPORT:JFK", res.Hotels[0].HotelID)
	assert.Equal(t, "New York", res.Hotels[0].City)
	assert.Equal(t, 140.0, res.Hotels[1].PricePerNight)
	require.NotNil(t, res.Hotels[2].ShuttleService)
	assert.False(t, *res.Hotels[2].ShuttleService)
}

func TestAirportCityFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Chicago", airportCity("ord"))
	assert.Equal(t, "Airport City", airportCity("CDG"))
}

func TestDetailsRoutesAndFallsBack(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)

	details, err := svc.Details(context.Background(), "HI1:Paris")
	require.NoError(t, err)
	assert.Equal(t, "Holiday Inn", details.Provider)
	assert.Equal(t, "11:00 AM", details.CheckOutTime)

	missing, err := svc.Details(context.Background(), "NOPE1")
	require.NoError(t, err)
	assert.Equal(t, NotFound("NOPE1"), missing)
}

func TestRecommendationsFromAllChains(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	res, err := svc.Recommendations(context.Background(), "Paris", "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, "Kids stay free", res.Recommendations[1].SpecialOffers)
}
