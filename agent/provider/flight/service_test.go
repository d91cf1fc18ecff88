package flight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

func fixedClock() time.Time {
	return time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, limit int) *Service {
	t.Helper()

	svc, err := NewService(limit, DefaultProviders(fixedClock)...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestSearchAggregatesAllCarriers(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	res, err := svc.Search(context.Background(), Criteria{From: "NYC", To: "LON", DepartureDate: "2024-12-15", Passengers: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if res.Total != 9 || len(res.Flights) != 9 {
		t.Fatalf("got total=%d len=%d, want 9/9", res.Total, len(res.Flights))
	}
	if strings.Join(res.Providers, ",") != "Joyair,AeroGo,DracAir" {
		t.Fatalf("unexpected providers: %v", res.Providers)
	}
	if res.Flights[0].FlightID != "AERO1:NYC-LON" || res.Flights[0].Fare != 320.5 {
		t.Fatalf("unexpected cheapest flight: %+v", res.Flights[0])
	}
	last := res.Flights[len(res.Flights)-1]
	if last.FlightID != "DRAC2:NYC-LON" || last.Fare != 600 {
		t.Fatalf("unexpected most expensive flight: %+v", last)
	}
	for i := 1; i < len(res.Flights); i++ {
		if res.Flights[i-1].Fare > res.Flights[i].Fare {
			t.Fatalf("flights not sorted at %d: %v > %v", i, res.Flights[i-1].Fare, res.Flights[i].Fare)
		}
	}
	if res.Flights[0].CabinClass != DefaultCabinClass {
		t.Fatalf("cabin class = %q, want default", res.Flights[0].CabinClass)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 4)
	res, err := svc.Search(context.Background(), Criteria{From: "A", To: "B", DepartureDate: "2024-01-01", Passengers: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(res.Flights) != 4 || res.Total != 9 {
		t.Fatalf("got len=%d total=%d, want 4/9", len(res.Flights), res.Total)
	}
}

func TestBookRoutesByPrefix(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	booking, err := svc.Book(context.Background(), "DRAC1:NYC-LON", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if booking.Provider != "DracAir" || booking.Status != "confirmed" {
		t.Fatalf("unexpected booking: %+v", booking)
	}
	if !strings.HasPrefix(booking.BookingID, "DRAC-") || len(booking.BookingID) != len("DRAC-")+8 {
		t.Fatalf("unexpected booking id: %q", booking.BookingID)
	}
	if !strings.HasPrefix(booking.ConfirmationNumber, "DR") {
		t.Fatalf("unexpected confirmation number: %q", booking.ConfirmationNumber)
	}
}

func TestBookUnknownPrefix(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	_, err := svc.Book(context.Background(), "extracted-from-message", nil)
	if !errors.Is(err, contractx.ErrNoProviderFound) {
		t.Fatalf("Book() error = %v, want ErrNoProviderFound", err)
	}
}

func TestCarrierBookRejectsForeignID(t *testing.T) {
	t.Parallel()

	_, err := NewJoyair().Book(context.Background(), "AERO1:NYC-LON", nil)
	if !errors.Is(err, contractx.ErrNotOwned) {
		t.Fatalf("Book() error = %v, want ErrNotOwned", err)
	}
}

func TestStatusByCodeAndName(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)

	st, err := svc.Status(context.Background(), "DR301", "dr")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Status != "Delayed" || st.Gate != "C15" || st.Delay != "30 minutes" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.DepartureTime != "2024-12-01T13:00:00" {
		t.Fatalf("departure = %q", st.DepartureTime)
	}

	st, err = svc.Status(context.Background(), "AG201", "AeroGo")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Status != "Boarding" || st.Gate != "B8" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestStatusUnknownCarrier(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	st, err := svc.Status(context.Background(), "XX1", "Nowhere Air")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st != UnknownStatus() {
		t.Fatalf("Status() = %+v, want UnknownStatus", st)
	}
}

func TestRecommendations(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, DefaultSearchLimit)
	res, err := svc.Recommendations(context.Background(), "London", "")
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if res.Total != 3 || res.Recommendations[0].Recommendation != "Best deals on London routes with Joyair" {
		t.Fatalf("unexpected recommendations: %+v", res)
	}
}
