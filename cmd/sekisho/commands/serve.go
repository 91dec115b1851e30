package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shizukutanaka/Sekisho/internal/app"
	"github.com/shizukutanaka/Sekisho/internal/config"
	"github.com/shizukutanaka/Sekisho/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger with the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sys, err := app.New(logger, cfg, nil)
	if err != nil {
		logger.Error("Failed to build system", zap.Error(err))
		return err
	}

	if err := sys.Start(); err != nil {
		logger.Error("Failed to start system", zap.Error(err))
		return err
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sys.Shutdown(ctx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return err
	}

	logger.Info("Sekisho stopped")
	return nil
}
