package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/newscrawl/internal/domain"
)

const seedColumns = `id, created_at, updated_at, url, config_id, is_active, last_fetched_at, last_error`

// ActiveSeeds returns the seeds the engine considers live for configID:
// is_active = true AND (config_id IS NULL OR config_id = configID), ordered
// by URL. Callers re-read this at the top of every step.
func (db *DB) ActiveSeeds(ctx context.Context, configID string) ([]domain.CrawlSeed, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+seedColumns+`
		FROM crawl_seeds
		WHERE is_active = true AND (config_id IS NULL OR config_id = $1)
		ORDER BY url
	`, toUUID(configID))
	if err != nil {
		return nil, fmt.Errorf("list active seeds: %w", err)
	}
	defer rows.Close()

	return scanSeedRows(rows)
}

// ListSeeds returns every seed row, ordered by URL, for the admin surface.
func (db *DB) ListSeeds(ctx context.Context) ([]domain.CrawlSeed, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+seedColumns+`
		FROM crawl_seeds
		ORDER BY url
	`)
	if err != nil {
		return nil, fmt.Errorf("list seeds: %w", err)
	}
	defer rows.Close()

	return scanSeedRows(rows)
}

// GetSeed loads a single seed by ID.
func (db *DB) GetSeed(ctx context.Context, id string) (domain.CrawlSeed, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT `+seedColumns+`
		FROM crawl_seeds
		WHERE id = $1
	`, toUUID(id))

	seed, err := scanSeed(row)
	if err != nil {
		if isNoRows(err) {
			return domain.CrawlSeed{}, domain.ErrSeedNotFound
		}

		return domain.CrawlSeed{}, fmt.Errorf("get seed: %w", err)
	}

	return seed, nil
}

// CreateSeed inserts a new seed row. The URL must be unique.
func (db *DB) CreateSeed(ctx context.Context, url string, configID string, isActive bool) (domain.CrawlSeed, error) {
	var configIDParam pgtype.UUID
	if configID != "" {
		configIDParam = toUUID(configID)
	}

	row := db.Pool.QueryRow(ctx, `
		INSERT INTO crawl_seeds (url, config_id, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+seedColumns,
		url, configIDParam, isActive,
	)

	seed, err := scanSeed(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.CrawlSeed{}, domain.ErrSeedURLExists
		}

		return domain.CrawlSeed{}, fmt.Errorf("create seed: %w", err)
	}

	return seed, nil
}

// UpdateSeedActive flips is_active on a seed. The engine's automatic
// deactivation on fetch failure goes through RecordSeedFetchFailure instead.
func (db *DB) UpdateSeedActive(ctx context.Context, id string, isActive bool) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE crawl_seeds SET is_active = $2, updated_at = now() WHERE id = $1
	`, toUUID(id), isActive)
	if err != nil {
		return fmt.Errorf("update seed active: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSeedNotFound
	}

	return nil
}

// RecordSeedFetchFailure marks a seed's last attempt as failed and
// deactivates it, matching the engine's auto-deactivation invariant.
func (db *DB) RecordSeedFetchFailure(ctx context.Context, id string, errMsg string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE crawl_seeds
		SET last_fetched_at = now(), last_error = $2, is_active = false, updated_at = now()
		WHERE id = $1
	`, toUUID(id), domain.ClipError(errMsg))
	if err != nil {
		return fmt.Errorf("record seed fetch failure: %w", err)
	}

	return nil
}

// RecordSeedFetchSuccess clears a seed's error state after a successful step.
func (db *DB) RecordSeedFetchSuccess(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE crawl_seeds
		SET last_fetched_at = now(), last_error = '', updated_at = now()
		WHERE id = $1
	`, toUUID(id))
	if err != nil {
		return fmt.Errorf("record seed fetch success: %w", err)
	}

	return nil
}

// DeleteSeed removes a seed row. Queue items referencing it keep their
// seed_url and fall back to seed-less claim matching.
func (db *DB) DeleteSeed(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM crawl_seeds WHERE id = $1`, toUUID(id))
	if err != nil {
		return fmt.Errorf("delete seed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSeedNotFound
	}

	return nil
}

func scanSeedRows(rows pgx.Rows) ([]domain.CrawlSeed, error) {
	var seeds []domain.CrawlSeed

	for rows.Next() {
		seed, err := scanSeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seed: %w", err)
		}

		seeds = append(seeds, seed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seeds: %w", err)
	}

	return seeds, nil
}

func scanSeed(row scannableRow) (domain.CrawlSeed, error) {
	var (
		id            pgtype.UUID
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
		configID      pgtype.UUID
		lastFetchedAt pgtype.Timestamptz
		seed          domain.CrawlSeed
	)

	err := row.Scan(
		&id, &createdAt, &updatedAt, &seed.URL, &configID,
		&seed.IsActive, &lastFetchedAt, &seed.LastError,
	)
	if err != nil {
		return domain.CrawlSeed{}, err
	}

	seed.ID = fromUUID(id)
	seed.CreatedAt = fromTimestamptz(createdAt)
	seed.UpdatedAt = fromTimestamptz(updatedAt)
	seed.ConfigID = fromUUID(configID)

	if lastFetchedAt.Valid {
		t := fromTimestamptz(lastFetchedAt)
		seed.LastFetchedAt = &t
	}

	return seed, nil
}
