package specialist

import (
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
)

var textModes = []string{"text"}

// FlightCard describes the flight agent served at url.
func FlightCard(url string, pushNotifications bool) a2a.AgentCard {
	return agentCard(
		"Flight Agent",
		"AI agent for flight search and booking via MCP servers",
		url,
		pushNotifications,
		a2a.AgentSkill{
			ID:          "flight_search",
			Name:        "Flight Search",
			Description: "Search flights via MCP server integration",
			Tags:        []string{"flights", "search", "mcp"},
			Examples:    []string{"Find flights from NYC to London"},
		},
		a2a.AgentSkill{
			ID:          "flight_booking",
			Name:        "Flight Booking",
			Description: "Book flights via MCP server integration",
			Tags:        []string{"flights", "booking", "mcp"},
			Examples:    []string{"Book flight for 2 passengers"},
		},
	)
}

// HotelCard describes the hotel agent served at url.
func HotelCard(url string, pushNotifications bool) a2a.AgentCard {
	return agentCard(
		"Hotel Agent",
		"AI agent for hotel search and booking via MCP servers",
		url,
		pushNotifications,
		a2a.AgentSkill{
			ID:          "hotel_search",
			Name:        "Hotel Search",
			Description: "Search hotels via MCP server integration",
			Tags:        []string{"hotels", "search", "mcp"},
			Examples:    []string{"Find hotels in Paris"},
		},
		a2a.AgentSkill{
			ID:          "hotel_booking",
			Name:        "Hotel Booking",
			Description: "Book hotels via MCP server integration",
			Tags:        []string{"hotels", "booking", "mcp"},
			Examples:    []string{"Book hotel room for 3 nights"},
		},
	)
}

func agentCard(name, description, url string, push bool, skills ...a2a.AgentSkill) a2a.AgentCard {
	return a2a.AgentCard{
		ProtocolVersion:    a2a.ProtocolVersion,
		Name:               name,
		Description:        description,
		URL:                url,
		PreferredTransport: a2a.TransportJSONRPC,
		Version:            "1.0.0",
		Capabilities: a2a.AgentCapabilities{
			Streaming:              true,
			PushNotifications:      push,
			StateTransitionHistory: true,
		},
		DefaultInputModes:  textModes,
		DefaultOutputModes: textModes,
		Skills:             skills,
	}
}
