package specialist

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	hotelx "github.com/tanpawarit/travel-agent-mesh/agent/provider/hotel"
	taskx "github.com/tanpawarit/travel-agent-mesh/agent/task"
	toolx "github.com/tanpawarit/travel-agent-mesh/agent/tool"
)

const (
	defaultHotelDestination = "Paris"
	defaultHotelCheckIn     = "2024-12-15"
	defaultHotelCheckOut    = "2024-12-20"
	defaultHotelGuests      = 2
	defaultStayNights       = 5

	hotelHelpText = "I can help you search and book hotels. What would you like to do?"
)

type hotelDomain struct{}

func (hotelDomain) help() string {
	return hotelHelpText
}

func (hotelDomain) searchCall(text string) (string, any) {
	ds := dates(text)
	checkIn, checkOut := defaultHotelCheckIn, defaultHotelCheckOut
	if len(ds) > 0 {
		checkIn, checkOut = ds[0], addDays(ds[0], defaultStayNights)
		if len(ds) > 1 {
			checkOut = ds[1]
		}
	}

	if code, ok := airportCode(text); ok {
		return toolx.ToolSearchNearAirport, toolx.NearAirportArgs{AirportCode: code, CheckIn: checkIn, CheckOut: checkOut}
	}

	args := toolx.SearchHotelsArgs{
		Destination: defaultHotelDestination,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      defaultHotelGuests,
		Preferences: preferences(text),
	}
	if c, ok := city(text); ok {
		args.Destination = c
	}
	if n, ok := count(guestPattern, text); ok {
		args.Guests = n
	}
	if n, ok := count(roomPattern, text); ok {
		args.Rooms = n
	}
	return toolx.ToolSearchHotels, args
}

func (hotelDomain) bookCall(text string) (string, any, error) {
	id, ok := itemID(text)
	if !ok {
		return toolx.ToolBookHotel, nil, fmt.Errorf("%w: no hotel id found in message", contractx.ErrInvalidArguments)
	}
	details := contactDetails(text)
	if n, ok := count(guestPattern, text); ok {
		details["guests"] = n
	}
	return toolx.ToolBookHotel, toolx.BookHotelArgs{HotelID: id, GuestDetails: details}, nil
}

func (hotelDomain) summarize(tool string, raw json.RawMessage) (taskx.Result, error) {
	data := decodeData(raw)
	if tool == toolx.ToolSearchHotels || tool == toolx.ToolSearchNearAirport {
		var res hotelx.SearchResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return taskx.Result{}, fmt.Errorf("decode %s result: %w", tool, err)
		}
		return taskx.Result{Text: formatHotels(res), Data: data}, nil
	}

	var booking hotelx.Booking
	if err := json.Unmarshal(raw, &booking); err == nil && booking.BookingID != "" {
		text := fmt.Sprintf("Hotel request processed: booking %s at %s is %s with %s (confirmation %s)",
			booking.BookingID, booking.HotelID, booking.Status, booking.Provider, booking.ConfirmationNumber)
		return taskx.Result{Text: text, Data: data}, nil
	}
	return taskx.Result{Text: "Hotel request processed: " + compact(raw), Data: data}, nil
}

func formatHotels(res hotelx.SearchResult) string {
	total := res.Total
	if total == 0 {
		total = len(res.Hotels)
	}
	options := make([]string, 0, len(res.Hotels))
	for _, h := range res.Hotels {
		options = append(options, fmt.Sprintf("%s %s (%d stars) in %s, %.2f %s per night",
			h.HotelID, h.Name, h.StarRating, h.City, h.PricePerNight, h.Currency))
	}
	return fmt.Sprintf("Found %d hotels. Here are the options: %s", total, strings.Join(options, "; "))
}
