package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	"github.com/tanpawarit/travel-agent-mesh/agent/agents/orchestrator"
	"github.com/tanpawarit/travel-agent-mesh/agent/llm"
	nodex "github.com/tanpawarit/travel-agent-mesh/agent/nodes/orchestrator"
	configx "github.com/tanpawarit/travel-agent-mesh/pkg/config"
	"github.com/tanpawarit/travel-agent-mesh/pkg/httpx"
)

func orchestratorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orchestrator",
		Short: "Serve the travel orchestrator API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := configx.New[orchestrator.Config]("ORCHESTRATOR")
			if err != nil {
				return err
			}
			llmCfg, err := configx.New[llm.Config]("LLM")
			if err != nil {
				return err
			}

			flight, err := a2a.NewClient(cfg.FlightAgentURL)
			if err != nil {
				return err
			}
			hotel, err := a2a.NewClient(cfg.HotelAgentURL)
			if err != nil {
				return err
			}

			policy, err := nodex.ParseJoinPolicy(cfg.JoinPolicy)
			if err != nil {
				return err
			}
			opts := []orchestrator.Option{
				orchestrator.WithJoinPolicy(policy),
				orchestrator.WithCallTimeout(cfg.CallTimeout),
				orchestrator.WithStatusTimeout(cfg.StatusTimeout),
			}

			gen, err := llm.New(ctx, *llmCfg)
			switch {
			case errors.Is(err, llm.ErrNotConfigured):
				log.Warn().Msg("no llm backend configured, plans use the fallback narrative")
			case err != nil:
				return err
			default:
				opts = append(opts, orchestrator.WithGenerator(gen))
			}

			o, err := orchestrator.New(flight, hotel, opts...)
			if err != nil {
				return err
			}
			return httpx.Serve(ctx, "Travel Orchestrator", cfg.Addr, o.Handler())
		},
	}
}
