package gateway

import (
	toolx "github.com/tanpawarit/travel-agent-mesh/agent/tool"
)

const (
	FlightServerName = "Flight MCP Server"
	HotelServerName  = "Hotel MCP Server"
)

func NewFlightServer(version string, svc toolx.FlightService) (*Server, error) {
	catalog, err := toolx.NewFlightCatalog(svc)
	if err != nil {
		return nil, err
	}
	return NewServer(ServerInfo{Name: FlightServerName, Version: version}, catalog)
}

func NewHotelServer(version string, svc toolx.HotelService) (*Server, error) {
	catalog, err := toolx.NewHotelCatalog(svc)
	if err != nil {
		return nil, err
	}
	return NewServer(ServerInfo{Name: HotelServerName, Version: version}, catalog)
}
