package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-fireball/portfolio-tracker/config"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	rootCmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Portfolio tracker: broker CSV imports and portfolio reporting on Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newCreateDbCmd(cfg),
		newImportCsvCmd(cfg),
		newAccountsCmd(cfg),
		newPositionsCmd(cfg),
		newReportCmd(cfg),
		newWatchCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
