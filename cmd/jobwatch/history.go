package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show how many postings have been seen",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	hs, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer hs.Close()

	h, err := hs.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load history: %v\n", err)
		hs.Close()
		os.Exit(1)
	}

	fmt.Printf("%s (%s): %d seen postings\n", cfg.History.Path, cfg.History.Backend, h.Len())
	return nil
}
