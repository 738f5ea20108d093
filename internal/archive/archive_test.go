// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/listing-finder/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{ArchiveDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func scored(id string, score float64, tier types.Tier) types.ScoredListing {
	return types.ScoredListing{
		EnrichedListing: types.EnrichedListing{
			Listing: types.Listing{
				ID:      id,
				Address: "12 Example St, Quincy, MA 02169",
				Town:    "Quincy",
				Price:   450000,
				Fee:     320,
			},
			NetMonthlyCost: 3100.50,
		},
		SubScores: map[string]float64{"price": 0.5},
		Score:     score,
		Tier:      tier,
	}
}

func TestUpsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, scored("A1", 0.72, types.TierGreen)))
	require.NoError(t, s.Upsert(ctx, scored("A2", 0.41, types.TierYellow)))
	require.NoError(t, s.Upsert(ctx, scored("A3", 0.88, types.TierGreen)))

	rows, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Best first.
	assert.Equal(t, "A3", rows[0].Listing.ID)
	assert.Equal(t, "A1", rows[1].Listing.ID)
	assert.Equal(t, "A2", rows[2].Listing.ID)

	// Payload round-trips the full scored listing.
	assert.Equal(t, 450000, rows[0].Listing.Price)
	assert.InDelta(t, 0.5, rows[0].Listing.SubScores["price"], 1e-9)
	assert.Equal(t, types.TierGreen, rows[0].Listing.Tier)
}

func TestUpsertRefreshKeepsFirstSeen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, scored("A1", 0.72, types.TierGreen)))

	rows, err := s.List(ctx, 0)
	require.NoError(t, err)
	firstSeen := rows[0].FirstSeen

	time.Sleep(10 * time.Millisecond)

	updated := scored("A1", 0.30, types.TierRed)
	updated.Price = 440000
	require.NoError(t, s.Upsert(ctx, updated))

	rows, err = s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, 440000, rows[0].Listing.Price)
	assert.Equal(t, types.TierRed, rows[0].Listing.Tier)
	assert.Equal(t, firstSeen, rows[0].FirstSeen)
	assert.True(t, rows[0].LastSeen.After(firstSeen))
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, l := range []types.ScoredListing{
		scored("A1", 0.9, types.TierGreen),
		scored("A2", 0.5, types.TierYellow),
		scored("A3", 0.1, types.TierRed),
	} {
		require.NoError(t, s.Upsert(ctx, l))
	}

	rows, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A1", rows[0].Listing.ID)
}

func TestUpsertBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	archived, err := s.UpsertBatch(ctx, []types.ScoredListing{
		scored("A1", 0.9, types.TierGreen),
		scored("A2", 0.5, types.TierYellow),
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, archived)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := types.StoreConfig{ArchiveDir: dir}

	s, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(context.Background(), scored("A1", 0.9, types.TierGreen)))
	require.NoError(t, s.Close())

	s2, err := Open(cfg)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
