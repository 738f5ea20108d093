// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/listing-finder/pkg/types"
)

func sampleBatch() []types.ScoredListing {
	beds := 2
	sqft := 900
	laundry := true
	minutes := 12.5

	return []types.ScoredListing{
		{
			EnrichedListing: types.EnrichedListing{
				Listing: types.Listing{
					ID:            "12345",
					Address:       "12 Example St, Quincy, MA 02169",
					Town:          "Quincy",
					URL:           "https://www.redfin.com/MA/Quincy/home/12345",
					Price:         450000,
					Fee:           320,
					Beds:          &beds,
					Sqft:          &sqft,
					InUnitLaundry: &laundry,
					Parking:       "1 space",
				},
				Commutes: map[string]types.TravelResult{
					"seaport": {Minutes: &minutes},
					"transit": {},
				},
				RentOffset:     1200,
				NetMonthlyCost: 2875.40,
			},
			SubScores: map[string]float64{"price": 0.5},
			Score:     0.71,
			Tier:      types.TierGreen,
		},
		{
			EnrichedListing: types.EnrichedListing{
				Listing: types.Listing{
					ID:      "67890",
					Address: "4 Other Ave, Milton, MA 02186",
					Town:    "Milton",
					Price:   399000,
					Parking: "Unknown",
				},
				Commutes: map[string]types.TravelResult{
					"seaport": {},
					"transit": {},
				},
				NetMonthlyCost: 3320.00,
			},
			Score: 0.28,
			Tier:  types.TierRed,
		},
	}
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, "20260830-120000")
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(context.Background(), sampleBatch()))

	f, err := os.Open(filepath.Join(dir, "listings-20260830-120000.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "id", header[0])
	assert.Contains(t, header, "drive_seaport_min")
	assert.Contains(t, header, "drive_transit_min")
	assert.Equal(t, "tier", header[len(header)-1])

	first := rows[1]
	assert.Equal(t, "12345", first[0])
	assert.Equal(t, "450000", first[4])
	assert.Equal(t, "Yes", first[9])
	assert.Equal(t, "2875.40", first[12])
	assert.Equal(t, "12.5", first[13]) // seaport sorts before transit
	assert.Equal(t, "", first[14], "unknown commute stays blank")
	assert.Equal(t, "Green", first[len(first)-1])

	second := rows[2]
	assert.Equal(t, "", second[6], "missing beds stays blank")
	assert.Equal(t, "Unknown", second[9])
	assert.Equal(t, "Red", second[len(second)-1])
}

func TestExcelWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir, "20260830-120000", types.CostConfig{
		InterestRate:     0.065,
		DownPaymentPct:   0.20,
		LoanTermYears:    30,
		PropertyTaxRate:  0.0105,
		InsuranceMonthly: 150,
		UtilitiesMonthly: 250,
		InternetMonthly:  60,
		MetroRent:        1800,
	})
	defer w.Close()

	require.NoError(t, w.Write(context.Background(), sampleBatch()))

	stamped := filepath.Join(dir, "listings-20260830-120000.xlsx")
	latest := filepath.Join(dir, latestName)
	require.FileExists(t, stamped)
	require.FileExists(t, latest)

	f, err := excelize.OpenFile(stamped)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{assumptionsSheet, listingsSheet}, f.GetSheetList())

	got, err := f.GetCellValue(listingsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "12 Example St, Quincy, MA 02169", got)

	price, err := f.GetCellValue(listingsSheet, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "450000", price)

	rows, err := f.GetRows(listingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Green", rows[1][len(rows[1])-1])

	rate, err := f.GetCellValue(assumptionsSheet, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.065", rate)
}

func TestExcelWriterEmptyBatch(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir, "20260830-120000", types.CostConfig{})
	require.NoError(t, w.Write(context.Background(), nil))
	require.FileExists(t, filepath.Join(dir, latestName))
}

type stubWriter struct {
	name   string
	err    error
	writes int
}

func (s *stubWriter) Name() string { return s.name }
func (s *stubWriter) Write(context.Context, []types.ScoredListing) error {
	s.writes++
	return s.err
}
func (s *stubWriter) Close() error { return nil }

func TestWriteAllStopsOnFirstFailure(t *testing.T) {
	boom := errors.New("disk full")
	a := &stubWriter{name: "a"}
	b := &stubWriter{name: "b", err: boom}
	c := &stubWriter{name: "c"}

	err := WriteAll(context.Background(), []Writer{a, b, c}, sampleBatch())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "b report")
	assert.Equal(t, 1, a.writes)
	assert.Equal(t, 1, b.writes)
	assert.Equal(t, 0, c.writes, "later sinks never run after a failure")
}

func TestNewBuildsDefaultWriters(t *testing.T) {
	writers, err := New(types.ReportConfig{OutputDir: t.TempDir()}, types.CostConfig{})
	require.NoError(t, err)
	defer closeAll(writers)

	require.Len(t, writers, 2)
	assert.Equal(t, "excel", writers[0].Name())
	assert.Equal(t, "csv", writers[1].Name())
}
