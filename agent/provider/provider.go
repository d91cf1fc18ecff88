// Package provider defines the contract implemented by every inventory supplier.
package provider

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// Record is an inventory item that can be ranked and routed.
type Record interface {
	ItemID() string
	Price() float64
}

// Provider is a single supplier of one domain. C is the search criteria type,
// R the record type and B the booking type.
type Provider[C any, R Record, B any] interface {
	Name() string
	// Owns reports whether itemID carries this provider's identifier prefix.
	Owns(itemID string) bool
	Search(ctx context.Context, criteria C) ([]R, error)
	Book(ctx context.Context, itemID string, details map[string]any) (B, error)
	Recommend(ctx context.Context, destination string, preferences string) ([]Recommendation, error)
}

type Recommendation struct {
	Destination    string  `json:"destination"`
	Recommendation string  `json:"recommendation"`
	AveragePrice   float64 `json:"averagePrice"`
	Popularity     string  `json:"popularity"`
	Seasonality    string  `json:"seasonality"`
	SpecialOffers  string  `json:"specialOffers,omitempty"`
	Provider       string  `json:"provider"`
}

// Prefix is an ownership predicate over item identifiers.
type Prefix string

func (p Prefix) Owns(itemID string) bool {
	return p != "" && strings.HasPrefix(itemID, string(p))
}

// RequireOwned returns ErrNotOwned when the prefix does not match itemID.
func (p Prefix) RequireOwned(provider string, itemID string) error {
	if p.Owns(itemID) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot handle %q", contractx.ErrNotOwned, provider, itemID)
}
