package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/newscrawl/internal/domain"
)

const runColumns = `id, status, objective, use_llm_filtering, started_at, ended_at,
		pages_processed, articles_created, queued_urls, last_error`

// CreateRun inserts a new run with status=running and zeroed counters.
func (db *DB) CreateRun(ctx context.Context, objective string, useLLMFiltering bool) (domain.CrawlRun, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO crawl_runs (status, objective, use_llm_filtering)
		VALUES ($1, $2, $3)
		RETURNING `+runColumns,
		domain.RunStatusRunning, objective, useLLMFiltering,
	)

	run, err := scanRun(row)
	if err != nil {
		return domain.CrawlRun{}, fmt.Errorf("create run: %w", err)
	}

	return run, nil
}

// GetRun loads a run by ID.
func (db *DB) GetRun(ctx context.Context, id string) (domain.CrawlRun, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT `+runColumns+` FROM crawl_runs WHERE id = $1
	`, toUUID(id))

	run, err := scanRun(row)
	if err != nil {
		if isNoRows(err) {
			return domain.CrawlRun{}, domain.ErrRunNotFound
		}

		return domain.CrawlRun{}, fmt.Errorf("get run: %w", err)
	}

	return run, nil
}

// LatestRun returns the most recently started run, if any.
func (db *DB) LatestRun(ctx context.Context) (domain.CrawlRun, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT `+runColumns+` FROM crawl_runs ORDER BY started_at DESC LIMIT 1
	`)

	run, err := scanRun(row)
	if err != nil {
		if isNoRows(err) {
			return domain.CrawlRun{}, domain.ErrRunNotFound
		}

		return domain.CrawlRun{}, fmt.Errorf("get latest run: %w", err)
	}

	return run, nil
}

// ResumeRun transitions an existing run back to running and clears its
// last_error, matching the "supplied run is not running" branch of the
// engine's run operation.
func (db *DB) ResumeRun(ctx context.Context, id string) (domain.CrawlRun, error) {
	row := db.Pool.QueryRow(ctx, `
		UPDATE crawl_runs SET status = $2, last_error = '' WHERE id = $1
		RETURNING `+runColumns,
		toUUID(id), domain.RunStatusRunning,
	)

	run, err := scanRun(row)
	if err != nil {
		if isNoRows(err) {
			return domain.CrawlRun{}, domain.ErrRunNotFound
		}

		return domain.CrawlRun{}, fmt.Errorf("resume run: %w", err)
	}

	return run, nil
}

// IncrementRunCounters adds to a run's pages_processed/articles_created/
// queued_urls counters; all deltas are non-negative per-step increments.
func (db *DB) IncrementRunCounters(ctx context.Context, id string, pagesProcessed, articlesCreated, queuedURLs int) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE crawl_runs
		SET pages_processed = pages_processed + $2,
		    articles_created = articles_created + $3,
		    queued_urls = queued_urls + $4
		WHERE id = $1
	`, toUUID(id), pagesProcessed, articlesCreated, queuedURLs)
	if err != nil {
		return fmt.Errorf("increment run counters: %w", err)
	}

	return nil
}

// FinishRun closes out a run: sets its terminal status, last_error (clipped
// by the caller), and ended_at.
func (db *DB) FinishRun(ctx context.Context, id string, status string, lastErr string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE crawl_runs SET status = $2, last_error = $3, ended_at = now() WHERE id = $1
	`, toUUID(id), status, lastErr)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	return nil
}

func scanRun(row scannableRow) (domain.CrawlRun, error) {
	var (
		id             pgtype.UUID
		startedAt      pgtype.Timestamptz
		endedAt        pgtype.Timestamptz
		pagesProcessed pgtype.Int4
		articlesMade   pgtype.Int4
		queuedURLs     pgtype.Int4
		run            domain.CrawlRun
	)

	err := row.Scan(
		&id, &run.Status, &run.Objective, &run.UseLLMFiltering, &startedAt, &endedAt,
		&pagesProcessed, &articlesMade, &queuedURLs, &run.LastError,
	)
	if err != nil {
		return domain.CrawlRun{}, err
	}

	run.ID = fromUUID(id)
	run.StartedAt = fromTimestamptz(startedAt)
	run.PagesProcessed = fromInt4(pagesProcessed)
	run.ArticlesCreated = fromInt4(articlesMade)
	run.QueuedURLs = fromInt4(queuedURLs)

	if endedAt.Valid {
		t := fromTimestamptz(endedAt)
		run.EndedAt = &t
	}

	return run, nil
}
