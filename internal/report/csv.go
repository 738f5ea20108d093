// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/listing-finder/pkg/types"
)

// CSVWriter writes the scored batch as a flat CSV snapshot.
type CSVWriter struct {
	path string
}

// NewCSVWriter prepares a CSV sink under dir, stamped with the run time.
// Intermediate directories are created automatically.
func NewCSVWriter(dir, stamp string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: filepath.Join(dir, "listings-"+stamp+".csv")}, nil
}

func (c *CSVWriter) Name() string { return "csv" }

// Write renders every listing as one row. Missing numeric fields stay
// empty rather than zero, so spreadsheets sort them last.
func (c *CSVWriter) Write(ctx context.Context, listings []types.ScoredListing) error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	defer f.Close()

	keys := commuteKeys(listings)

	w := csv.NewWriter(f)
	header := []string{
		"id", "address", "town", "url", "price", "fee", "beds", "baths",
		"sqft", "laundry", "parking", "rent_offset", "net_monthly_cost",
	}
	for _, k := range keys {
		header = append(header, "drive_"+k+"_min")
	}
	header = append(header, "score", "tier")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row := []string{
			l.ID,
			l.Address,
			l.Town,
			l.URL,
			strconv.Itoa(l.Price),
			strconv.Itoa(l.Fee),
			optInt(l.Beds),
			optInt(l.Baths),
			optInt(l.Sqft),
			laundryLabel(l.InUnitLaundry),
			l.Parking,
			strconv.Itoa(l.RentOffset),
			strconv.FormatFloat(l.NetMonthlyCost, 'f', 2, 64),
		}
		for _, k := range keys {
			row = append(row, optMinutes(l.Commutes[k].Minutes))
		}
		row = append(row,
			strconv.FormatFloat(l.Score, 'f', 4, 64),
			string(l.Tier),
		)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}

func (c *CSVWriter) Close() error { return nil }

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optMinutes(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
