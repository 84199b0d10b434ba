package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/planning-center-groups-go/internal/app"
	"github.com/kapu/planning-center-groups-go/internal/constants"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the groups embed and the admin settings page over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		logger.Info("Planning Center groups embed starting...",
			zap.String("version", version),
			zap.String("log_level", cfg.Logging.Level),
		)

		buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
		container, err := app.Build(buildCtx, cfg, logger)
		buildCancel()
		if err != nil {
			logger.Error("Failed to assemble application services", zap.Error(err))
			return err
		}
		defer container.Close()

		srv, err := container.NewServer()
		if err != nil {
			logger.Error("Failed to initialize server", zap.Error(err))
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil {
				errCh <- err
			}
		}()

		select {
		case sig := <-sigCh:
			logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		case err := <-errCh:
			logger.Error("Server error", zap.Error(err))
			return err
		}

		logger.Info("Shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ServerConfig.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}

		logger.Info("Shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
