// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders scored listings to the configured sinks: an
// Excel workbook, a CSV snapshot, and optionally a Postgres table.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/listing-finder/pkg/types"
)

// Writer renders one report of the scored batch.
type Writer interface {
	// Name identifies the sink in logs and error messages.
	Name() string
	Write(ctx context.Context, listings []types.ScoredListing) error
	Close() error
}

// New builds the configured writers. Excel and CSV are always on; the
// Postgres sink joins when a DSN is configured.
func New(cfg types.ReportConfig, costs types.CostConfig) ([]Writer, error) {
	stamp := time.Now().Format("20060102-150405")

	writers := []Writer{
		NewExcelWriter(cfg.OutputDir, stamp, costs),
	}

	csvw, err := NewCSVWriter(cfg.OutputDir, stamp)
	if err != nil {
		closeAll(writers)
		return nil, err
	}
	writers = append(writers, csvw)

	if cfg.PostgresDSN != "" {
		pg, err := NewPostgresWriter(cfg.PostgresDSN)
		if err != nil {
			closeAll(writers)
			return nil, err
		}
		writers = append(writers, pg)
	}

	return writers, nil
}

// WriteAll fans the batch out to every writer. The first failure stops
// the run; a partial report must not count as delivered.
func WriteAll(ctx context.Context, writers []Writer, listings []types.ScoredListing) error {
	for _, w := range writers {
		if err := w.Write(ctx, listings); err != nil {
			return fmt.Errorf("%s report: %w", w.Name(), err)
		}
	}
	return nil
}

func closeAll(writers []Writer) {
	for _, w := range writers {
		w.Close()
	}
}

// commuteKeys returns the union of commute destination keys across the
// batch, sorted for stable column order.
func commuteKeys(listings []types.ScoredListing) []string {
	set := map[string]struct{}{}
	for _, l := range listings {
		for k := range l.Commutes {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func laundryLabel(v *bool) string {
	switch {
	case v == nil:
		return "Unknown"
	case *v:
		return "Yes"
	default:
		return "No"
	}
}
