// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/listing-finder/pkg/types"
)

const (
	listingsSheet    = "Listings"
	assumptionsSheet = "Assumptions"
	currencyFmt      = "$#,##0"
	latestName       = "listings-latest.xlsx"
)

// Tier fills follow a traffic-light palette; the whole row is tinted so
// the verdict reads at a glance.
var tierColors = map[types.Tier]string{
	types.TierGreen:  "E2F0D9",
	types.TierYellow: "FFF2CC",
	types.TierRed:    "F4CCCC",
}

// ExcelWriter renders the scored batch as a styled workbook with a
// Listings sheet and an Assumptions sheet. Each run gets a timestamped
// file plus a refreshed latest copy.
type ExcelWriter struct {
	dir   string
	stamp string
	costs types.CostConfig
}

func NewExcelWriter(dir, stamp string, costs types.CostConfig) *ExcelWriter {
	return &ExcelWriter{dir: dir, stamp: stamp, costs: costs}
}

func (e *ExcelWriter) Name() string { return "excel" }

func (e *ExcelWriter) Write(ctx context.Context, listings []types.ScoredListing) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("excel: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", assumptionsSheet); err != nil {
		return fmt.Errorf("excel: rename sheet: %w", err)
	}
	if err := e.writeAssumptions(f); err != nil {
		return err
	}

	idx, err := f.NewSheet(listingsSheet)
	if err != nil {
		return fmt.Errorf("excel: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := e.writeListings(ctx, f, listings); err != nil {
		return err
	}

	path := filepath.Join(e.dir, "listings-"+e.stamp+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("excel: save %q: %w", path, err)
	}
	if err := f.SaveAs(filepath.Join(e.dir, latestName)); err != nil {
		return fmt.Errorf("excel: save latest copy: %w", err)
	}
	return nil
}

func (e *ExcelWriter) Close() error { return nil }

func (e *ExcelWriter) writeAssumptions(f *excelize.File) error {
	rows := []struct {
		label string
		value any
	}{
		{"Interest Rate", e.costs.InterestRate},
		{"Down Payment %", e.costs.DownPaymentPct},
		{"Loan Term Years", e.costs.LoanTermYears},
		{"Property Tax Rate", e.costs.PropertyTaxRate},
		{"Insurance $/mo", e.costs.InsuranceMonthly},
		{"Utilities $/mo", e.costs.UtilitiesMonthly},
		{"Internet $/mo", e.costs.InternetMonthly},
		{"Metro Rent $/mo", e.costs.MetroRent},
	}

	if err := f.SetSheetRow(assumptionsSheet, "A1", &[]any{"Assumption", "Value"}); err != nil {
		return fmt.Errorf("excel: assumptions header: %w", err)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(assumptionsSheet, cell, &[]any{r.label, r.value}); err != nil {
			return fmt.Errorf("excel: assumptions row: %w", err)
		}
	}

	return e.styleHeader(f, assumptionsSheet, 2)
}

func (e *ExcelWriter) writeListings(ctx context.Context, f *excelize.File, listings []types.ScoredListing) error {
	keys := commuteKeys(listings)

	header := []any{
		"Address", "Town", "Listing URL", "Price", "HOA/mo", "Beds", "Baths",
		"Sq Ft", "In-Unit Laundry", "Parking", "Roommate Rent", "Net Monthly Cost",
	}
	for _, k := range keys {
		header = append(header, fmt.Sprintf("Drive to %s (min)", k))
	}
	header = append(header, "Score", "Tier")

	if err := f.SetSheetRow(listingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("excel: listings header: %w", err)
	}

	// Money cells inside a tinted row need the fill and the number
	// format in one style, so each tier gets a combined variant.
	type tierStyle struct {
		fill     int
		currency int
	}
	styles := map[types.Tier]tierStyle{}
	for tier, color := range tierColors {
		fill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
		fillID, err := f.NewStyle(&excelize.Style{Fill: fill})
		if err != nil {
			return fmt.Errorf("excel: tier style: %w", err)
		}
		curID, err := f.NewStyle(&excelize.Style{Fill: fill, CustomNumFmt: strPtr(currencyFmt)})
		if err != nil {
			return fmt.Errorf("excel: tier currency style: %w", err)
		}
		styles[tier] = tierStyle{fill: fillID, currency: curID}
	}

	for i, l := range listings {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rowNum := i + 2
		row := []any{
			l.Address, l.Town, l.URL, l.Price, l.Fee,
			cellInt(l.Beds), cellInt(l.Baths), cellInt(l.Sqft),
			laundryLabel(l.InUnitLaundry), l.Parking,
			l.RentOffset, l.NetMonthlyCost,
		}
		for _, k := range keys {
			row = append(row, cellFloat(l.Commutes[k].Minutes))
		}
		row = append(row, l.Score, string(l.Tier))

		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(listingsSheet, start, &row); err != nil {
			return fmt.Errorf("excel: listing row: %w", err)
		}

		if l.URL != "" {
			cell, _ := excelize.CoordinatesToCellName(3, rowNum)
			if err := f.SetCellHyperLink(listingsSheet, cell, l.URL, "External"); err != nil {
				return fmt.Errorf("excel: hyperlink: %w", err)
			}
		}

		if ts, ok := styles[l.Tier]; ok {
			end, _ := excelize.CoordinatesToCellName(len(row), rowNum)
			if err := f.SetCellStyle(listingsSheet, start, end, ts.fill); err != nil {
				return fmt.Errorf("excel: tier fill: %w", err)
			}
			for _, col := range []string{"D", "E", "K", "L"} {
				cell := fmt.Sprintf("%s%d", col, rowNum)
				if err := f.SetCellStyle(listingsSheet, cell, cell, ts.currency); err != nil {
					return fmt.Errorf("excel: currency format: %w", err)
				}
			}
		}
	}

	if err := f.SetColWidth(listingsSheet, "A", "C", 36); err != nil {
		return fmt.Errorf("excel: column width: %w", err)
	}

	return e.styleHeader(f, listingsSheet, len(header))
}

// styleHeader bolds and tints row 1 and freezes it.
func (e *ExcelWriter) styleHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("excel: header style: %w", err)
	}

	end, _ := excelize.CoordinatesToCellName(cols, 1)
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return fmt.Errorf("excel: header fill: %w", err)
	}

	err = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("excel: freeze header: %w", err)
	}
	return nil
}

func cellInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func cellFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func strPtr(s string) *string { return &s }
