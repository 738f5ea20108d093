// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/listing-finder/internal/filter"
	"github.com/pdiddy/listing-finder/internal/geo"
	"github.com/pdiddy/listing-finder/internal/report"
	"github.com/pdiddy/listing-finder/internal/score"
	"github.com/pdiddy/listing-finder/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [listings.json]",
	Short: "Filter, enrich, and score a saved listing batch",
	Long: `Score takes a listing batch produced by scrape (a file argument, or
stdin), applies the filter, enriches survivors with driving times, scores
them, and writes the report sinks. The seen set is not consulted or
updated; use run for the full pipeline.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var listings []types.Listing
	if err := json.NewDecoder(in).Decode(&listings); err != nil {
		return fmt.Errorf("parsing listing batch: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var candidates []types.Listing
	for _, l := range listings {
		if !filter.Accept(l, cfg.Filter) {
			continue
		}
		l.Town = filter.ResolveTown(l.Address, l.Town, cfg.Filter)
		candidates = append(candidates, l)
	}
	fmt.Fprintf(os.Stderr, "%d of %d listings pass the filter\n", len(candidates), len(listings))

	enriched := geo.NewClient(cfg.Geo, os.Stderr).EnrichBatch(ctx, candidates)

	scored := make([]types.ScoredListing, 0, len(enriched))
	for _, e := range enriched {
		e.RentOffset = score.RentOffset(e.Listing, cfg.Cost)
		e.NetMonthlyCost = score.NetMonthlyCost(e.Price, e.Fee, e.RentOffset, cfg.Cost)
		scored = append(scored, score.Score(e, cfg.Score))
	}
	score.SortBest(scored)

	writers, err := report.New(cfg.Report, cfg.Cost)
	if err != nil {
		return err
	}
	defer func() {
		for _, w := range writers {
			w.Close()
		}
	}()

	if err := report.WriteAll(ctx, writers, scored); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "scored %d listings\n", len(scored))
	return nil
}
