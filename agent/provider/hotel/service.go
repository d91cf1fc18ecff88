package hotel

import (
	"context"
	"fmt"
	"time"

	aggregatorx "github.com/tanpawarit/travel-agent-mesh/agent/aggregator"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
)

type Provider = providerx.Provider[Criteria, Hotel, Booking]

type SearchResult struct {
	Hotels    []Hotel  `json:"hotels"`
	Total     int      `json:"total"`
	Providers []string `json:"providers"`
}

type AirportResult struct {
	Hotels      []Hotel `json:"hotels"`
	Total       int     `json:"total"`
	AirportCode string  `json:"airportCode"`
}

type RecommendationResult struct {
	Recommendations []providerx.Recommendation `json:"recommendations"`
	Total           int                        `json:"total"`
}

func DefaultProviders(now func() time.Time) []Provider {
	return []Provider{
		NewMarriott(WithClock(now)),
		NewHolidayInn(WithClock(now)),
		NewAccor(WithClock(now)),
	}
}

type Service struct {
	agg *aggregatorx.Aggregator[Criteria, Hotel, Booking]
}

func NewService(limit int, providers ...Provider) (*Service, error) {
	agg, err := aggregatorx.New[Criteria, Hotel, Booking]("hotel", limit, providers...)
	if err != nil {
		return nil, err
	}
	return &Service{agg: agg}, nil
}

func (s *Service) Search(ctx context.Context, criteria Criteria) (SearchResult, error) {
	if criteria.Rooms <= 0 {
		criteria.Rooms = DefaultRooms
	}

	res, err := s.agg.SearchAll(ctx, criteria)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		Hotels:    res.Items,
		Total:     res.Total,
		Providers: res.ProviderNames,
	}, nil
}

func (s *Service) Book(ctx context.Context, hotelID string, guestDetails map[string]any) (Booking, error) {
	return s.agg.RouteBooking(ctx, hotelID, guestDetails)
}

func (s *Service) Recommendations(ctx context.Context, destination string, preferences string) (RecommendationResult, error) {
	recs, err := s.agg.Recommendations(ctx, destination, preferences)
	if err != nil {
		return RecommendationResult{}, err
	}
	return RecommendationResult{Recommendations: recs, Total: len(recs)}, nil
}

// SearchNearAirport concatenates airport properties from every provider that has them.
func (s *Service) SearchNearAirport(ctx context.Context, criteria AirportCriteria) (AirportResult, error) {
	hotels := make([]Hotel, 0)
	for _, p := range s.agg.Providers() {
		searcher, ok := p.(AirportSearcher)
		if !ok {
			continue
		}
		found, err := searcher.SearchNearAirport(ctx, criteria)
		if err != nil {
			return AirportResult{}, fmt.Errorf("%w: %s airport search: %w", contractx.ErrToolInvocation, p.Name(), err)
		}
		hotels = append(hotels, found...)
	}
	return AirportResult{
		Hotels:      hotels,
		Total:       len(hotels),
		AirportCode: criteria.AirportCode,
	}, nil
}

// Details routes to the owning provider. An unowned id yields the NotFound
// sentinel rather than an error, unlike Book.
func (s *Service) Details(ctx context.Context, hotelID string) (Details, error) {
	p, ok := s.agg.Owner(hotelID)
	if !ok {
		return NotFound(hotelID), nil
	}
	describer, ok := p.(DetailsProvider)
	if !ok {
		return NotFound(hotelID), nil
	}

	details, err := describer.Details(ctx, hotelID)
	if err != nil {
		return Details{}, fmt.Errorf("%w: %s details: %w", contractx.ErrToolInvocation, p.Name(), err)
	}
	return details, nil
}

func (s *Service) Providers() []string {
	return s.agg.Names()
}
