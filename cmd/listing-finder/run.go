// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/listing-finder/internal/archive"
	"github.com/pdiddy/listing-finder/internal/dedup"
	"github.com/pdiddy/listing-finder/internal/geo"
	"github.com/pdiddy/listing-finder/internal/pipeline"
	"github.com/pdiddy/listing-finder/internal/report"
	"github.com/pdiddy/listing-finder/internal/scrape"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: scrape, filter, enrich, score, report",
	Long: `Run executes the whole evaluation. New listings are scraped from every
configured region, filtered, enriched with driving times, scored, and
written to the report sinks. Listings from prior runs are skipped; the
seen set is only updated once the reports land.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().Bool("no-archive", false, "skip the SQLite listing archive")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seen, err := dedup.Open(cfg.Store.SeenPath)
	if err != nil {
		return err
	}

	writers, err := report.New(cfg.Report, cfg.Cost)
	if err != nil {
		return err
	}
	defer func() {
		for _, w := range writers {
			w.Close()
		}
	}()

	var arc pipeline.Archiver
	if noArchive, _ := cmd.Flags().GetBool("no-archive"); !noArchive {
		store, err := archive.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()
		arc = store
	}

	p := pipeline.New(cfg,
		scrape.NewClient(cfg.Scrape, os.Stderr),
		geo.NewClient(cfg.Geo, os.Stderr),
		seen, writers, arc, os.Stdout)

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if res.Evaluated == 0 {
		fmt.Println("no new listings this run")
	}
	return nil
}
