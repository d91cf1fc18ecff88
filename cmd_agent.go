package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	"github.com/tanpawarit/travel-agent-mesh/agent/agents/specialist"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	"github.com/tanpawarit/travel-agent-mesh/agent/dispatch"
	"github.com/tanpawarit/travel-agent-mesh/agent/gateway"
	"github.com/tanpawarit/travel-agent-mesh/agent/push"
	statex "github.com/tanpawarit/travel-agent-mesh/agent/state"
	taskx "github.com/tanpawarit/travel-agent-mesh/agent/task"
	configx "github.com/tanpawarit/travel-agent-mesh/pkg/config"
	"github.com/tanpawarit/travel-agent-mesh/pkg/httpx"
	qstashx "github.com/tanpawarit/travel-agent-mesh/pkg/qstash"
)

func agentCmd(kind agentKind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + "-agent",
		Short: "Serve the " + string(kind) + " A2A agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAgent(cmd.Context(), kind)
		},
	}
}

func runAgent(ctx context.Context, kind agentKind) error {
	cfg, err := configx.New[dispatch.Config]("AGENT")
	if err != nil {
		return err
	}
	storeCfg, err := configx.New[statex.Config]("STORAGE")
	if err != nil {
		return err
	}

	addr, publicURL, gatewayURL := cfg.FlightAddr, cfg.FlightPublicURL, cfg.FlightGatewayURL
	agentType := contractx.AgentTypeFlight
	if kind == agentHotel {
		addr, publicURL, gatewayURL = cfg.HotelAddr, cfg.HotelPublicURL, cfg.HotelGatewayURL
		agentType = contractx.AgentTypeHotel
	}

	tools, err := gateway.NewClient(gatewayURL)
	if err != nil {
		return err
	}
	skill, err := newSkill(ctx, kind, tools)
	if err != nil {
		return err
	}

	archive, closer, err := statex.Open(ctx, *storeCfg, string(agentType))
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("close task archive")
		}
	}()

	notifier, err := newNotifier(cfg.Push)
	if err != nil {
		return err
	}

	opts := []taskx.Option{taskx.WithArchive(archive), taskx.WithRetention(cfg.TaskRetention)}
	if notifier != nil {
		opts = append(opts, taskx.WithNotifier(notifier))
	}
	exec, err := taskx.NewExecutor(agentType, skill, taskx.NewRegistry(), opts...)
	if err != nil {
		return err
	}
	defer exec.Wait()

	card := specialist.FlightCard(publicURL, notifier != nil)
	if kind == agentHotel {
		card = specialist.HotelCard(publicURL, notifier != nil)
	}
	if card, err = a2a.LoadCardOverride(card, cfg.CardFile); err != nil {
		return err
	}

	var dispatchOpts []dispatch.Option
	if strings.TrimSpace(cfg.ExtendedCardFile) != "" {
		extended, err := a2a.LoadCardOverride(card, cfg.ExtendedCardFile)
		if err != nil {
			return err
		}
		dispatchOpts = append(dispatchOpts, dispatch.WithExtendedCard(extended))
	}

	d, err := dispatch.New(card, exec, dispatchOpts...)
	if err != nil {
		return err
	}

	go exec.RunJanitor(ctx, cfg.JanitorInterval)

	log.Info().
		Str("agent", string(agentType)).
		Str("gateway", gatewayURL).
		Str("storage", storeCfg.Backend).
		Str("push", cfg.Push).
		Msg("agent ready")
	return httpx.Serve(ctx, card.Name, addr, d.Handler())
}

func newSkill(ctx context.Context, kind agentKind, tools contractx.ToolCaller) (taskx.Skill, error) {
	if kind == agentHotel {
		return specialist.NewHotelSkill(ctx, tools)
	}
	return specialist.NewFlightSkill(ctx, tools)
}

// newNotifier returns nil when push delivery is disabled.
func newNotifier(mode string) (taskx.Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case dispatch.PushNone, "":
		return nil, nil
	case dispatch.PushWebhook:
		return push.NewWebhookNotifier(0), nil
	case dispatch.PushQStash:
		qcfg, err := configx.New[qstashx.Config]("QSTASH")
		if err != nil {
			return nil, err
		}
		client, err := qstashx.NewClient(*qcfg)
		if err != nil {
			return nil, err
		}
		return push.NewQStashNotifier(client), nil
	default:
		return nil, fmt.Errorf("%w: unknown push mode %q", contractx.ErrValidation, mode)
	}
}
