package hotel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	providerx "github.com/tanpawarit/travel-agent-mesh/agent/provider"
)

// chain carries the identity shared by every hotel brand.
type chain struct {
	name   string
	prefix providerx.Prefix
	now    func() time.Time
}

// ChainOption customizes a hotel provider.
type ChainOption func(*chain)

func WithClock(now func() time.Time) ChainOption {
	return func(c *chain) {
		if now != nil {
			c.now = now
		}
	}
}

func newChain(name string, prefix providerx.Prefix, opts []ChainOption) chain {
	c := chain{name: name, prefix: prefix, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

func (c chain) Name() string {
	return c.name
}

func (c chain) Owns(hotelID string) bool {
	return c.prefix.Owns(hotelID)
}

func (c chain) booking(hotelID string, guestDetails map[string]any) (Booking, error) {
	if err := c.prefix.RequireOwned(c.name, hotelID); err != nil {
		return Booking{}, err
	}
	return Booking{
		BookingID:          string(c.prefix) + "-" + strings.ToUpper(uuid.NewString()[:8]),
		HotelID:            hotelID,
		Status:             "confirmed",
		GuestDetails:       guestDetails,
		ConfirmationNumber: fmt.Sprintf("%s%d", c.prefix, c.now().UnixMilli()%10000),
		Provider:           c.name,
	}, nil
}

func (c chain) airportID(code string) string {
	return fmt.Sprintf("%s-AIRPORT:%s", c.prefix, code)
}
