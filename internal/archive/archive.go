// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a durable record of every scored listing across
// runs, so that listings which later disappear from the feed remain
// queryable.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/listing-finder/pkg/types"
)

const dbFile = "listings.db"

// Store manages the listing archive SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database under cfg.ArchiveDir,
// creating the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.ArchiveDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id TEXT PRIMARY KEY,
			address TEXT,
			town TEXT,
			url TEXT,
			price INTEGER,
			fee INTEGER,
			net_monthly_cost REAL,
			score REAL,
			tier TEXT,
			payload TEXT NOT NULL,
			first_seen TEXT NOT NULL,
			last_seen TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_tier ON listings(tier)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_score ON listings(score)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Upsert inserts a scored listing, or refreshes an existing row in
// place. first_seen survives refreshes; everything else reflects the
// latest evaluation.
func (s *Store) Upsert(ctx context.Context, l types.ScoredListing) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding listing %s: %w", l.ID, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO listings
			(id, address, town, url, price, fee, net_monthly_cost, score, tier, payload, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			address = excluded.address,
			town = excluded.town,
			url = excluded.url,
			price = excluded.price,
			fee = excluded.fee,
			net_monthly_cost = excluded.net_monthly_cost,
			score = excluded.score,
			tier = excluded.tier,
			payload = excluded.payload,
			last_seen = excluded.last_seen`,
		l.ID, l.Address, l.Town, l.URL, l.Price, l.Fee,
		l.NetMonthlyCost, l.Score, string(l.Tier), string(payload), now, now)
	if err != nil {
		return fmt.Errorf("upserting listing %s: %w", l.ID, err)
	}
	return nil
}

// UpsertBatch archives a batch, tolerating per-listing failures. It
// returns the number archived.
func (s *Store) UpsertBatch(ctx context.Context, listings []types.ScoredListing, w io.Writer) (int, error) {
	archived := 0
	for _, l := range listings {
		select {
		case <-ctx.Done():
			return archived, ctx.Err()
		default:
		}

		if err := s.Upsert(ctx, l); err != nil {
			fmt.Fprintf(w, "warning: archive failed for %s: %v\n", l.ID, err)
			continue
		}
		archived++
	}
	return archived, nil
}

// Row is one archived listing as returned by List.
type Row struct {
	Listing   types.ScoredListing
	FirstSeen time.Time
	LastSeen  time.Time
}

// List returns archived listings ordered best first. limit <= 0 means
// no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Row, error) {
	query := `SELECT payload, first_seen, last_seen FROM listings
		ORDER BY score DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var payload, firstSeen, lastSeen string
		if err := rows.Scan(&payload, &firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("scanning archive row: %w", err)
		}

		var r Row
		if err := json.Unmarshal([]byte(payload), &r.Listing); err != nil {
			return nil, fmt.Errorf("decoding archived listing: %w", err)
		}
		r.FirstSeen, _ = time.Parse(time.RFC3339Nano, firstSeen)
		r.LastSeen, _ = time.Parse(time.RFC3339Nano, lastSeen)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Remove deletes the archive database and its WAL sidecars. A missing
// database is not an error.
func Remove(cfg types.StoreConfig) error {
	path := filepath.Join(cfg.ArchiveDir, dbFile)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}

// Count returns the number of archived listings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM listings`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting archive: %w", err)
	}
	return n, nil
}
