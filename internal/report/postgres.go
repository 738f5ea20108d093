// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/pdiddy/listing-finder/pkg/types"
)

// PostgresWriter mirrors the scored batch into a shared Postgres table,
// for dashboards and ad-hoc SQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection, waits briefly for the server to
// come up, and runs schema migration.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) Name() string { return "postgres" }

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS scored_listings (
			id               TEXT PRIMARY KEY,
			address          TEXT NOT NULL DEFAULT '',
			town             TEXT NOT NULL DEFAULT '',
			url              TEXT NOT NULL DEFAULT '',
			price            INTEGER NOT NULL,
			fee              INTEGER NOT NULL DEFAULT 0,
			beds             INTEGER,
			baths            INTEGER,
			sqft             INTEGER,
			rent_offset      INTEGER NOT NULL DEFAULT 0,
			net_monthly_cost NUMERIC(10,2) NOT NULL DEFAULT 0,
			score            NUMERIC(6,4) NOT NULL,
			tier             VARCHAR(10) NOT NULL,
			evaluated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_scored_listings_score ON scored_listings(score);
		CREATE INDEX IF NOT EXISTS idx_scored_listings_tier  ON scored_listings(tier);
		CREATE INDEX IF NOT EXISTS idx_scored_listings_town  ON scored_listings(town);
	`)
	return err
}

// Write upserts every listing by ID, refreshing rows evaluated in
// earlier runs.
func (pw *PostgresWriter) Write(ctx context.Context, listings []types.ScoredListing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scored_listings
			(id, address, town, url, price, fee, beds, baths, sqft,
			 rent_offset, net_monthly_cost, score, tier, evaluated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW())
		ON CONFLICT (id) DO UPDATE SET
			address = EXCLUDED.address,
			town = EXCLUDED.town,
			url = EXCLUDED.url,
			price = EXCLUDED.price,
			fee = EXCLUDED.fee,
			beds = EXCLUDED.beds,
			baths = EXCLUDED.baths,
			sqft = EXCLUDED.sqft,
			rent_offset = EXCLUDED.rent_offset,
			net_monthly_cost = EXCLUDED.net_monthly_cost,
			score = EXCLUDED.score,
			tier = EXCLUDED.tier,
			evaluated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("postgres: prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		_, err := stmt.ExecContext(ctx,
			l.ID, l.Address, l.Town, l.URL, l.Price, l.Fee,
			nullInt(l.Beds), nullInt(l.Baths), nullInt(l.Sqft),
			l.RentOffset, l.NetMonthlyCost, l.Score, string(l.Tier))
		if err != nil {
			return fmt.Errorf("postgres: upsert %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
