package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Lagergrenk/grindmode-sub001/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "grindmode",
	Short:        "grindmode serves the nutrition and workout tracking API",
	Long:         "grindmode stores per-user nutrition entries, workout plans, active workouts and progress photos, and serves them over HTTP.",
	SilenceUsage: true,
}

// @title GrindMode API
// @version 1.0
// @description API for tracking nutrition, workout plans, active workouts and progress photos.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding config.yaml")
	rootCmd.AddCommand(serveCmd, indexesCmd)
}

// loadConfig reads the configuration and builds the process logger from it.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
