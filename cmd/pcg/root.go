package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/planning-center-groups-go/internal/config"
	"github.com/kapu/planning-center-groups-go/internal/util"
)

const version = "0.83.0-go"

var rootCmd = &cobra.Command{
	Use:   "pcg",
	Short: "Planning Center groups embed",
	Long: `pcg fetches active groups from Planning Center, filters them by tag and
group type, and renders them as an embeddable HTML grid.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// bootstrap loads configuration and the logger shared by every subcommand.
// Logs go to the command's stderr; stdout carries only command output.
func bootstrap(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to load config: %v\n", err)
		return nil, nil, err
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File, cmd.ErrOrStderr())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to initialize logger: %v\n", err)
		return nil, nil, err
	}

	return cfg, logger, nil
}
