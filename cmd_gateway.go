package main

import (
	"github.com/spf13/cobra"
	"github.com/tanpawarit/travel-agent-mesh/agent/gateway"
	flightx "github.com/tanpawarit/travel-agent-mesh/agent/provider/flight"
	hotelx "github.com/tanpawarit/travel-agent-mesh/agent/provider/hotel"
	configx "github.com/tanpawarit/travel-agent-mesh/pkg/config"
	"github.com/tanpawarit/travel-agent-mesh/pkg/httpx"
)

type agentKind string

const (
	agentFlight agentKind = "flight"
	agentHotel  agentKind = "hotel"
)

func gatewayCmd(kind agentKind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + "-gateway",
		Short: "Serve the " + string(kind) + " tool-call gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configx.New[gateway.Config]("GATEWAY")
			if err != nil {
				return err
			}

			srv, addr, err := newGateway(kind, *cfg)
			if err != nil {
				return err
			}
			return httpx.Serve(cmd.Context(), srv.Info().Name, addr, srv.Handler())
		},
	}
}

func newGateway(kind agentKind, cfg gateway.Config) (*gateway.Server, string, error) {
	if kind == agentHotel {
		svc, err := hotelx.NewService(hotelx.DefaultSearchLimit, hotelx.DefaultProviders(nil)...)
		if err != nil {
			return nil, "", err
		}
		srv, err := gateway.NewHotelServer(cfg.Version, svc)
		return srv, cfg.HotelAddr, err
	}

	svc, err := flightx.NewService(flightx.DefaultSearchLimit, flightx.DefaultProviders(nil)...)
	if err != nil {
		return nil, "", err
	}
	srv, err := gateway.NewFlightServer(cfg.Version, svc)
	return srv, cfg.FlightAddr, err
}
