package main

import (
	"github.com/spf13/cobra"

	"github.com/yigit/edutech/internal/bootstrap"
	"github.com/yigit/edutech/internal/server"
)

// defaultConfigPath is read when --config is not given
const defaultConfigPath = "configs/config.yaml"

// Global flags available to all subcommands.
var configFile string

// newRootCmd creates the root command. Without a subcommand it serves the API.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "edutech",
		Short:         "EduTech course management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigPath, "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configFile)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cmd.Context(), cfg, lgr)
	if err != nil {
		return err
	}
	if err := srv.Run(); err != nil {
		return err
	}

	lgr.Info().Msg("Application finished gracefully.")
	return nil
}
