// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/listing-finder/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape configured regions and print raw listings as JSON",
	Long: `Scrape queries every configured region and writes the raw listing batch
to stdout as JSON, without filtering or deduplication. Progress goes to
stderr, so the output can be piped into score.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := scrape.NewClient(cfg.Scrape, os.Stderr)
		listings, err := client.ScrapeAll(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
