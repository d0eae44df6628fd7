package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"zillow-scraper/identity"
	"zillow-scraper/models"
)

// PostgresStore persists deduplicated listing summaries across runs,
// keyed by address fingerprint so repeated scrapes of the same search
// update rather than duplicate.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id UUID PRIMARY KEY,
			fingerprint TEXT UNIQUE NOT NULL,
			url TEXT NOT NULL,
			street TEXT,
			unit TEXT,
			city TEXT,
			state TEXT,
			zip TEXT,
			address_text TEXT,
			price NUMERIC,
			price_is_range BOOLEAN DEFAULT FALSE,
			beds INTEGER,
			baths NUMERIC,
			sqft INTEGER,
			property_type TEXT,
			year_built INTEGER,
			lot_size TEXT,
			hoa_fee TEXT,
			first_seen_at TIMESTAMPTZ NOT NULL,
			last_seen_at TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// WriteListings upserts each summary. COALESCE keeps any previously known
// field when a later scrape degraded it to unknown, matching the in-memory
// merge-by-completeness rule.
func (s *PostgresStore) WriteListings(ctx context.Context, listings []models.ListingSummary) error {
	for i := range listings {
		l := &listings[i]
		_, err := s.pool.Exec(ctx, `
			INSERT INTO listings (
				id, fingerprint, url, street, unit, city, state, zip, address_text,
				price, price_is_range, beds, baths, sqft, property_type,
				year_built, lot_size, hoa_fee, first_seen_at, last_seen_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$19)
			ON CONFLICT (fingerprint) DO UPDATE SET
				url = EXCLUDED.url,
				price = COALESCE(EXCLUDED.price, listings.price),
				price_is_range = EXCLUDED.price_is_range,
				beds = COALESCE(EXCLUDED.beds, listings.beds),
				baths = COALESCE(EXCLUDED.baths, listings.baths),
				sqft = COALESCE(EXCLUDED.sqft, listings.sqft),
				property_type = COALESCE(EXCLUDED.property_type, listings.property_type),
				year_built = COALESCE(EXCLUDED.year_built, listings.year_built),
				lot_size = COALESCE(EXCLUDED.lot_size, listings.lot_size),
				hoa_fee = COALESCE(EXCLUDED.hoa_fee, listings.hoa_fee),
				last_seen_at = EXCLUDED.last_seen_at`,
			uuid.New(), identity.Fingerprint(l), l.URL,
			l.Address.Street, l.Address.Unit, l.Address.City, l.Address.State,
			l.Address.Zip, l.Address.String(),
			l.Price, l.PriceIsRange, l.Beds, l.Baths, l.Sqft, l.PropertyType,
			l.YearBuilt, l.LotSize, l.HOAFee, l.ScrapedAt)
		if err != nil {
			return fmt.Errorf("upsert listing %s: %w", l.URL, err)
		}
	}
	return nil
}

// CountListings reports how many distinct properties the sink holds.
func (s *PostgresStore) CountListings(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}
