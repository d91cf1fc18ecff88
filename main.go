package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/travel-agent-mesh/pkg/config"
	logx "github.com/tanpawarit/travel-agent-mesh/pkg/logger"
	_ "github.com/tanpawarit/travel-agent-mesh/pkg/logger/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "travel-agent-mesh",
		Short:         "Flight, hotel and orchestrator agents for trip planning",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envFile == "" {
				return nil
			}
			configx.SetEnvFile(envFile)
			conf, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*conf)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "env file exported before loading config")

	root.AddCommand(
		gatewayCmd(agentFlight),
		gatewayCmd(agentHotel),
		agentCmd(agentFlight),
		agentCmd(agentHotel),
		orchestratorCmd(),
	)
	return root
}
