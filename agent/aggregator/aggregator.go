// Package aggregator fans one logical query out to every registered provider
// of a domain and routes item-scoped calls to the single owning provider.
package aggregator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
	"golang.org/x/sync/errgroup"
)

// Result is the merged, ranked and truncated output of SearchAll.
type Result[R any] struct {
	Items []R
	// Total is the number of records before truncation.
	Total int
	// ProviderNames lists every provider queried, in registration order.
	ProviderNames []string
}

// Aggregator is read-only after construction and safe for concurrent use.
type Aggregator[C any, R providerx.Record, B any] struct {
	domain    string
	limit     int
	providers []providerx.Provider[C, R, B]
}

func New[C any, R providerx.Record, B any](
	domain string,
	limit int,
	providers ...providerx.Provider[C, R, B],
) (*Aggregator[C, R, B], error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, fmt.Errorf("%w: aggregator domain is required", contractx.ErrValidation)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %s result limit must be > 0", contractx.ErrValidation, domain)
	}

	registered := make([]providerx.Provider[C, R, B], 0, len(providers))
	for _, p := range providers {
		if p != nil {
			registered = append(registered, p)
		}
	}
	if len(registered) == 0 {
		return nil, fmt.Errorf("%w: %s aggregator needs at least one provider", contractx.ErrValidation, domain)
	}

	return &Aggregator[C, R, B]{
		domain:    domain,
		limit:     limit,
		providers: registered,
	}, nil
}

func (a *Aggregator[C, R, B]) Domain() string {
	return a.domain
}

func (a *Aggregator[C, R, B]) Limit() int {
	return a.limit
}

// Providers returns the registered providers in registration order.
func (a *Aggregator[C, R, B]) Providers() []providerx.Provider[C, R, B] {
	return slices.Clone(a.providers)
}

func (a *Aggregator[C, R, B]) Names() []string {
	names := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}

// SearchAll queries every provider concurrently, concatenates the records in
// registration order, stable-sorts them by ascending price and truncates to
// the configured limit. Any provider failure fails the whole search.
func (a *Aggregator[C, R, B]) SearchAll(ctx context.Context, criteria C) (Result[R], error) {
	batches := make([][]R, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			records, err := p.Search(gctx, criteria)
			if err != nil {
				return fmt.Errorf("%w: %s search: %w", contractx.ErrToolInvocation, p.Name(), err)
			}
			batches[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result[R]{}, err
	}

	size := 0
	for _, batch := range batches {
		size += len(batch)
	}
	merged := make([]R, 0, size)
	for _, batch := range batches {
		merged = append(merged, batch...)
	}

	total := len(merged)
	slices.SortStableFunc(merged, func(x, y R) int {
		return cmp.Compare(x.Price(), y.Price())
	})
	if len(merged) > a.limit {
		merged = merged[:a.limit]
	}

	return Result[R]{
		Items:         merged,
		Total:         total,
		ProviderNames: a.Names(),
	}, nil
}

// Find returns the first provider, in registration order, accepted by match.
// Provider counts are single digits so a linear scan is used on purpose; this
// becomes a scalability limit if registries grow large.
func (a *Aggregator[C, R, B]) Find(match func(providerx.Provider[C, R, B]) bool) (providerx.Provider[C, R, B], bool) {
	for _, p := range a.providers {
		if match(p) {
			return p, true
		}
	}
	return nil, false
}

// Owner returns the first provider whose Owns predicate accepts itemID.
func (a *Aggregator[C, R, B]) Owner(itemID string) (providerx.Provider[C, R, B], bool) {
	return a.Find(func(p providerx.Provider[C, R, B]) bool {
		return p.Owns(itemID)
	})
}

// RouteBooking delegates to the owning provider and fails with
// ErrNoProviderFound when no provider claims itemID.
func (a *Aggregator[C, R, B]) RouteBooking(ctx context.Context, itemID string, details map[string]any) (B, error) {
	var zero B

	owner, ok := a.Owner(itemID)
	if !ok {
		return zero, fmt.Errorf("%w for %s %q", contractx.ErrNoProviderFound, a.domain, itemID)
	}

	booking, err := owner.Book(ctx, itemID, details)
	if err != nil {
		if errors.Is(err, contractx.ErrNotOwned) {
			return zero, err
		}
		return zero, fmt.Errorf("%w: %s booking: %w", contractx.ErrToolInvocation, owner.Name(), err)
	}
	return booking, nil
}

// Recommendations concatenates every provider's recommendations in registration order.
func (a *Aggregator[C, R, B]) Recommendations(ctx context.Context, destination string, preferences string) ([]providerx.Recommendation, error) {
	out := make([]providerx.Recommendation, 0, len(a.providers))
	for _, p := range a.providers {
		recs, err := p.Recommend(ctx, destination, preferences)
		if err != nil {
			return nil, fmt.Errorf("%w: %s recommendations: %w", contractx.ErrToolInvocation, p.Name(), err)
		}
		out = append(out, recs...)
	}
	return out, nil
}
