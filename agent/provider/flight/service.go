package flight

import (
	"context"
	"fmt"
	"strings"
	"time"

	aggregatorx "github.com/tanpawarit/travel-agent-mesh/agent/aggregator"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
)

type Provider = providerx.Provider[Criteria, Flight, Booking]

type SearchResult struct {
	Flights   []Flight `json:"flights"`
	Total     int      `json:"total"`
	Providers []string `json:"providers"`
}

type RecommendationResult struct {
	Recommendations []providerx.Recommendation `json:"recommendations"`
	Total           int                        `json:"total"`
}

// DefaultProviders returns the built-in carriers in registration order.
func DefaultProviders(now func() time.Time) []Provider {
	return []Provider{
		NewJoyair(WithClock(now)),
		NewAeroGo(WithClock(now)),
		NewDracAir(WithClock(now)),
	}
}

// Service exposes the flight aggregator operations used by the tool catalog.
type Service struct {
	agg *aggregatorx.Aggregator[Criteria, Flight, Booking]
}

func NewService(limit int, providers ...Provider) (*Service, error) {
	agg, err := aggregatorx.New[Criteria, Flight, Booking]("flight", limit, providers...)
	if err != nil {
		return nil, err
	}
	return &Service{agg: agg}, nil
}

func (s *Service) Search(ctx context.Context, criteria Criteria) (SearchResult, error) {
	if strings.TrimSpace(criteria.CabinClass) == "" {
		criteria.CabinClass = DefaultCabinClass
	}

	res, err := s.agg.SearchAll(ctx, criteria)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		Flights:   res.Items,
		Total:     res.Total,
		Providers: res.ProviderNames,
	}, nil
}

func (s *Service) Book(ctx context.Context, flightID string, passengerDetails map[string]any) (Booking, error) {
	return s.agg.RouteBooking(ctx, flightID, passengerDetails)
}

func (s *Service) Recommendations(ctx context.Context, destination string, preferences string) (RecommendationResult, error) {
	recs, err := s.agg.Recommendations(ctx, destination, preferences)
	if err != nil {
		return RecommendationResult{}, err
	}
	return RecommendationResult{Recommendations: recs, Total: len(recs)}, nil
}

// Status routes to the first provider that handles the carrier code or name.
// An unclaimed carrier yields UnknownStatus rather than an error.
func (s *Service) Status(ctx context.Context, flightNumber string, carrier string) (Status, error) {
	p, ok := s.agg.Find(func(p Provider) bool {
		reporter, ok := p.(StatusReporter)
		return ok && reporter.HandlesCarrier(carrier)
	})
	if !ok {
		return UnknownStatus(), nil
	}

	status, err := p.(StatusReporter).Status(ctx, flightNumber, carrier)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %s status: %w", contractx.ErrToolInvocation, p.Name(), err)
	}
	return status, nil
}

func (s *Service) Providers() []string {
	return s.agg.Names()
}
