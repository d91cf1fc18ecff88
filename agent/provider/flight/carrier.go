package flight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
)

const statusTimeLayout = "2006-01-02T15:04:05"

type schedule struct {
	departureFormat string
	departureBase   int
	arrivalFormat   string
	arrivalBase     int
	hourStep        int
}

type liveStatus struct {
	status          string
	gate            string
	terminal        string
	departureOffset time.Duration
	arrivalOffset   time.Duration
	delay           string
	reason          string
}

type recommendation struct {
	text         string
	averagePrice float64
	popularity   string
	seasonality  string
}

// Carrier is a mock airline built from a static fare table.
type Carrier struct {
	name       string
	code       string
	prefix     providerx.Prefix
	count      int
	numberBase int
	basePrice  float64
	priceStep  float64
	seats      int
	seatStep   int
	amenities  []string
	duration   string
	stops      func(i int) int
	schedule   schedule
	live       liveStatus
	recommend  recommendation
	now        func() time.Time
}

// CarrierOption customizes a Carrier.
type CarrierOption func(*Carrier)

func WithClock(now func() time.Time) CarrierOption {
	return func(c *Carrier) {
		if now != nil {
			c.now = now
		}
	}
}

func applyCarrierOptions(c *Carrier, opts []CarrierOption) *Carrier {
	if c.now == nil {
		c.now = time.Now
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func NewJoyair(opts ...CarrierOption) *Carrier {
	return applyCarrierOptions(&Carrier{
		name:       "Joyair",
		code:       "JY",
		prefix:     "JOY",
		count:      3,
		numberBase: 100,
		basePrice:  299.99,
		priceStep:  50,
		seats:      150,
		seatStep:   10,
		amenities:  []string{"WiFi", "Entertainment", "Meals"},
		duration:   "2h 30m",
		stops:      func(int) int { return 0 },
		schedule:   schedule{departureFormat: "%02d:00:00", departureBase: 8, arrivalFormat: "%02d:00:00", arrivalBase: 10, hourStep: 2},
		live:       liveStatus{status: "On Time", gate: "A12", terminal: "1", departureOffset: 2 * time.Hour, arrivalOffset: 4 * time.Hour},
		recommend:  recommendation{text: "Best deals on %s routes with Joyair", averagePrice: 350, popularity: "High", seasonality: "Peak season rates apply"},
	}, opts)
}

func NewAeroGo(opts ...CarrierOption) *Carrier {
	return applyCarrierOptions(&Carrier{
		name:       "AeroGo",
		code:       "AG",
		prefix:     "AERO",
		count:      4,
		numberBase: 200,
		basePrice:  275.50,
		priceStep:  45,
		seats:      180,
		seatStep:   15,
		amenities:  []string{"WiFi", "Power Outlets", "Snacks"},
		duration:   "2h 15m",
		stops: func(i int) int {
			if i > 2 {
				return 1
			}
			return 0
		},
		schedule:  schedule{departureFormat: "%02d:30:00", departureBase: 9, arrivalFormat: "%02d:45:00", arrivalBase: 11, hourStep: 2},
		live:      liveStatus{status: "Boarding", gate: "B8", terminal: "2", departureOffset: 45 * time.Minute, arrivalOffset: 3 * time.Hour},
		recommend: recommendation{text: "Premium service to %s with AeroGo", averagePrice: 320, popularity: "Medium", seasonality: "Standard rates"},
	}, opts)
}

func NewDracAir(opts ...CarrierOption) *Carrier {
	return applyCarrierOptions(&Carrier{
		name:       "DracAir",
		code:       "DR",
		prefix:     "DRAC",
		count:      2,
		numberBase: 300,
		basePrice:  450,
		priceStep:  75,
		seats:      120,
		seatStep:   20,
		amenities:  []string{"Premium WiFi", "Gourmet Meals", "Luxury Seats", "Priority Boarding"},
		duration:   "2h 15m",
		stops:      func(int) int { return 0 },
		schedule:   schedule{departureFormat: "%02d:15:00", departureBase: 7, arrivalFormat: "%02d:30:00", arrivalBase: 9, hourStep: 3},
		live: liveStatus{
			status: "Delayed", gate: "C15", terminal: "1",
			departureOffset: 3 * time.Hour, arrivalOffset: 5 * time.Hour,
			delay: "30 minutes", reason: "Weather conditions",
		},
		recommend: recommendation{text: "Luxury travel experience to %s with DracAir", averagePrice: 500, popularity: "Premium", seasonality: "Luxury rates year-round"},
	}, opts)
}

func (c *Carrier) Name() string {
	return c.name
}

func (c *Carrier) Owns(itemID string) bool {
	return c.prefix.Owns(itemID)
}

func (c *Carrier) HandlesCarrier(carrier string) bool {
	carrier = strings.TrimSpace(carrier)
	return strings.EqualFold(carrier, c.name) || strings.EqualFold(carrier, c.code)
}

func (c *Carrier) Search(_ context.Context, criteria Criteria) ([]Flight, error) {
	cabin := criteria.CabinClass
	if strings.TrimSpace(cabin) == "" {
		cabin = DefaultCabinClass
	}

	flights := make([]Flight, 0, c.count)
	for i := 1; i <= c.count; i++ {
		hour := i * c.schedule.hourStep
		flights = append(flights, Flight{
			FlightID:       fmt.Sprintf("%s%d:%s-%s", c.prefix, i, criteria.From, criteria.To),
			FlightNumber:   fmt.Sprintf("%s%d", c.code, c.numberBase+i),
			Airline:        c.name,
			From:           criteria.From,
			To:             criteria.To,
			DepartureTime:  criteria.DepartureDate + "T" + fmt.Sprintf(c.schedule.departureFormat, c.schedule.departureBase+hour),
			ArrivalTime:    criteria.DepartureDate + "T" + fmt.Sprintf(c.schedule.arrivalFormat, c.schedule.arrivalBase+hour),
			Fare:           c.basePrice + float64(i)*c.priceStep,
			Currency:       "USD",
			CabinClass:     cabin,
			AvailableSeats: c.seats - i*c.seatStep,
			Amenities:      append([]string(nil), c.amenities...),
			Duration:       c.duration,
			Stops:          c.stops(i),
			Provider:       c.name,
		})
	}
	return flights, nil
}

func (c *Carrier) Book(_ context.Context, flightID string, passengerDetails map[string]any) (Booking, error) {
	if err := c.prefix.RequireOwned(c.name, flightID); err != nil {
		return Booking{}, err
	}

	return Booking{
		BookingID:          string(c.prefix) + "-" + strings.ToUpper(uuid.NewString()[:8]),
		FlightID:           flightID,
		Status:             "confirmed",
		PassengerDetails:   passengerDetails,
		ConfirmationNumber: fmt.Sprintf("%s%d", c.code, c.now().UnixMilli()%10000),
		Provider:           c.name,
	}, nil
}

func (c *Carrier) Recommend(_ context.Context, destination string, _ string) ([]providerx.Recommendation, error) {
	return []providerx.Recommendation{{
		Destination:    destination,
		Recommendation: fmt.Sprintf(c.recommend.text, destination),
		AveragePrice:   c.recommend.averagePrice,
		Popularity:     c.recommend.popularity,
		Seasonality:    c.recommend.seasonality,
		Provider:       c.name,
	}}, nil
}

func (c *Carrier) Status(_ context.Context, flightNumber string, carrier string) (Status, error) {
	if !c.HandlesCarrier(carrier) {
		return Status{Status: "unknown"}, nil
	}

	now := c.now()
	return Status{
		FlightNumber:  flightNumber,
		Airline:       carrier,
		Status:        c.live.status,
		DepartureTime: now.Add(c.live.departureOffset).Format(statusTimeLayout),
		ArrivalTime:   now.Add(c.live.arrivalOffset).Format(statusTimeLayout),
		Gate:          c.live.gate,
		Terminal:      c.live.terminal,
		Delay:         c.live.delay,
		Reason:        c.live.reason,
		Provider:      c.name,
	}, nil
}
