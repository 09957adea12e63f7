package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan all sources once and notify new postings",
	Long:  "Scans every enabled source, sends one notification per new matching posting, saves history and exits.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"sources", len(cfg.EnabledSources()),
		"keywords", len(cfg.Filters.Keywords),
		"history", cfg.History.Path,
		"politeness_delay", cfg.PolitenessDelay.String(),
	)

	hs, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open history", "error", err)
		os.Exit(1)
	}
	defer hs.Close()

	n := setupNotifier(cfg, &http.Client{}, logger)
	p, err := buildPoller(cfg, hs, n, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		hs.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	if err != nil {
		logger.Error("scan failed", "error", err)
		hs.Close()
		os.Exit(1)
	}

	if summary.FailedSources == summary.Sources && summary.Sources > 0 {
		logger.Warn("every source failed this run", "sources", summary.Sources)
	}
	return nil
}
