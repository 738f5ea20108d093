// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the full evaluation: acquire, dedup, filter,
// enrich, score, report, archive. Stages are injected through small
// interfaces so tests can swap any of them.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/listing-finder/internal/dedup"
	"github.com/pdiddy/listing-finder/internal/filter"
	"github.com/pdiddy/listing-finder/internal/report"
	"github.com/pdiddy/listing-finder/internal/score"
	"github.com/pdiddy/listing-finder/pkg/types"
)

// Source produces the raw listing batch.
type Source interface {
	ScrapeAll(ctx context.Context) ([]types.Listing, error)
}

// Enricher resolves coordinates and travel times for a batch.
type Enricher interface {
	EnrichBatch(ctx context.Context, listings []types.Listing) []types.EnrichedListing
}

// Archiver records scored listings durably across runs.
type Archiver interface {
	UpsertBatch(ctx context.Context, listings []types.ScoredListing, w io.Writer) (int, error)
}

// Pipeline wires the stages for one run.
type Pipeline struct {
	cfg      types.PipelineConfig
	source   Source
	enricher Enricher
	seen     dedup.Store
	writers  []report.Writer
	archive  Archiver
	w        io.Writer
}

// New assembles a pipeline. archive may be nil to skip archiving.
func New(cfg types.PipelineConfig, source Source, enricher Enricher, seen dedup.Store, writers []report.Writer, archive Archiver, w io.Writer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		enricher: enricher,
		seen:     seen,
		writers:  writers,
		archive:  archive,
		w:        w,
	}
}

// Result summarizes one run.
type Result struct {
	Scraped   int
	Skipped   int
	Rejected  int
	Evaluated int
	Green     int
	Yellow    int
	Red       int
	Archived  int

	// LookupFailures counts destination lookups that degraded to unknown
	// (geocode miss or no route).
	LookupFailures int
}

// Run executes the pipeline end to end. The seen set is only persisted
// after the report lands; a failed report leaves the dedup store exactly
// as the run found it, so the next run re-evaluates the same batch.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result

	listings, err := p.source.ScrapeAll(ctx)
	if err != nil {
		return res, fmt.Errorf("acquiring listings: %w", err)
	}
	res.Scraped = len(listings)

	candidates, processedIDs := p.screen(listings, &res)

	scored := p.evaluate(ctx, candidates, &res)
	score.SortBest(scored)
	res.Evaluated = len(scored)
	for _, l := range scored {
		switch l.Tier {
		case types.TierGreen:
			res.Green++
		case types.TierYellow:
			res.Yellow++
		case types.TierRed:
			res.Red++
		}
	}

	if err := report.WriteAll(ctx, p.writers, scored); err != nil {
		return res, err
	}

	if p.archive != nil {
		archived, err := p.archive.UpsertBatch(ctx, scored, p.w)
		if err != nil {
			return res, fmt.Errorf("archiving listings: %w", err)
		}
		res.Archived = archived
	}

	p.seen.Merge(processedIDs)
	if err := p.seen.Persist(); err != nil {
		return res, fmt.Errorf("persisting seen set: %w", err)
	}

	fmt.Fprintf(p.w, "\nscraped: %d, seen: %d, rejected: %d, evaluated: %d (green %d, yellow %d, red %d), failed lookups: %d\n",
		res.Scraped, res.Skipped, res.Rejected, res.Evaluated, res.Green, res.Yellow, res.Red, res.LookupFailures)
	return res, nil
}

// screen drops already-seen listings and applies the filter. Rejected
// listings are recorded for the seen set too: a listing that fails the
// hard criteria today will still fail them tomorrow.
func (p *Pipeline) screen(listings []types.Listing, res *Result) ([]types.Listing, []string) {
	var candidates []types.Listing
	var processed []string

	for _, l := range listings {
		if p.seen.Contains(l.ID) {
			res.Skipped++
			continue
		}
		if !filter.Accept(l, p.cfg.Filter) {
			res.Rejected++
			processed = append(processed, l.ID)
			continue
		}
		l.Town = filter.ResolveTown(l.Address, l.Town, p.cfg.Filter)
		candidates = append(candidates, l)
		processed = append(processed, l.ID)
	}

	return candidates, processed
}

// evaluate enriches the surviving candidates and scores them.
func (p *Pipeline) evaluate(ctx context.Context, candidates []types.Listing, res *Result) []types.ScoredListing {
	if len(candidates) == 0 {
		return nil
	}

	enriched := p.enricher.EnrichBatch(ctx, candidates)

	scored := make([]types.ScoredListing, 0, len(enriched))
	for _, e := range enriched {
		for _, tr := range e.Commutes {
			if tr.Minutes == nil {
				res.LookupFailures++
			}
		}
		e.RentOffset = score.RentOffset(e.Listing, p.cfg.Cost)
		e.NetMonthlyCost = score.NetMonthlyCost(e.Price, e.Fee, e.RentOffset, p.cfg.Cost)
		scored = append(scored, score.Score(e, p.cfg.Score))
	}
	return scored
}
