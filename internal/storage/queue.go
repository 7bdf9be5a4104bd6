package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/newscrawl/internal/domain"
)

const queueColumns = `id, created_at, updated_at, url, seed_id, seed_url, depth,
		status, discovered_at, last_attempt_at, attempts, last_error`

// HasPendingItems reports whether any queue item is still pending, used to
// decide whether ensure-seed-queue needs to seed the frontier.
func (db *DB) HasPendingItems(ctx context.Context) (bool, error) {
	var exists bool

	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM crawl_queue_items WHERE status = $1)
	`, domain.QueueStatusPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending items: %w", err)
	}

	return exists, nil
}

// EnsureSeedQueue inserts one depth-0 queue item per active seed, but only
// when the frontier is fully drained; callers must check HasPendingItems
// first per the engine's ensure-seed-queue semantics.
func (db *DB) EnsureSeedQueue(ctx context.Context, seeds []domain.CrawlSeed) error {
	for _, s := range seeds {
		if _, err := db.InsertQueueItemIfAbsent(ctx, s.URL, s.ID, s.URL, 0); err != nil {
			return fmt.Errorf("ensure seed queue for %s: %w", s.URL, err)
		}
	}

	return nil
}

// InsertQueueItemIfAbsent inserts a queue item, returning whether it was
// newly created. url uniqueness is enforced by the table's unique index.
// seedID may be empty, in which case the row is inserted with a NULL
// seed_id.
func (db *DB) InsertQueueItemIfAbsent(
	ctx context.Context, url string, seedID string, seedURL string, depth int,
) (bool, error) {
	var seedIDArg pgtype.UUID
	if seedID != "" {
		seedIDArg = toUUID(seedID)
	}

	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO crawl_queue_items (url, seed_id, seed_url, depth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO NOTHING
	`, url, seedIDArg, seedURL, depth)
	if err != nil {
		return false, fmt.Errorf("insert queue item %s: %w", url, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ClaimBatch implements the two-phase frontier claim: one atomic
// oldest-claimable claim per seed (in seed order), then top-up from any
// remaining oldest-claimable item (regardless of seed) until targetSize is
// reached or the frontier runs dry. Each single-item claim locks with
// SELECT ... FOR UPDATE SKIP LOCKED inside its own transaction so
// concurrent claimers never observe the same row as claimable.
//
// "Claimable" is pending rows plus stale in_progress rows: an item claimed
// more than claimTTL ago and never finalized (worker crashed or the run was
// killed mid-fetch) is treated as an orphaned claim and reclaimed for
// another attempt, the same pending-or-stale-processing rule the teacher
// repo's crawl frontier used. claimTTL <= 0 disables reclaim, so only
// pending rows are claimable.
func (db *DB) ClaimBatch(ctx context.Context, seeds []domain.CrawlSeed, targetSize int, claimTTL time.Duration) ([]domain.CrawlQueueItem, error) {
	var batch []domain.CrawlQueueItem

	reclaim, staleThreshold := staleClaimWindow(claimTTL)

	claimed := make(map[string]bool, targetSize)

	for _, s := range seeds {
		item, err := db.claimOneForSeed(ctx, s, claimed, reclaim, staleThreshold)
		if err != nil {
			return nil, fmt.Errorf("claim for seed %s: %w", s.URL, err)
		}

		if item != nil {
			batch = append(batch, *item)
			claimed[item.ID] = true
		}
	}

	for len(batch) < targetSize {
		item, err := db.claimAnyPending(ctx, claimed, reclaim, staleThreshold)
		if err != nil {
			return nil, fmt.Errorf("claim top-up: %w", err)
		}

		if item == nil {
			break
		}

		batch = append(batch, *item)
		claimed[item.ID] = true
	}

	return batch, nil
}

// staleClaimWindow reports whether stale in_progress reclaim is enabled and,
// if so, the cutoff before which an in_progress claim counts as orphaned.
func staleClaimWindow(claimTTL time.Duration) (bool, time.Time) {
	if claimTTL <= 0 {
		return false, time.Time{}
	}

	return true, time.Now().UTC().Add(-claimTTL)
}

func (db *DB) claimOneForSeed(
	ctx context.Context, s domain.CrawlSeed, exclude map[string]bool, reclaim bool, staleThreshold time.Time,
) (*domain.CrawlQueueItem, error) {
	excludeIDs := excludedIDs(exclude)

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seedIDParam pgtype.UUID
	if s.ID != "" {
		seedIDParam = toUUID(s.ID)
	}

	row := tx.QueryRow(ctx, `
		SELECT id FROM crawl_queue_items
		WHERE NOT (id = ANY($2::uuid[]))
		  AND (
		      status = $1
		      OR ($5 AND status = $6 AND last_attempt_at < $7)
		  )
		  AND (
		      ($3::uuid IS NOT NULL AND seed_id = $3)
		      OR (seed_id IS NULL AND seed_url = $4)
		  )
		ORDER BY (status <> $1), discovered_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, domain.QueueStatusPending, excludeIDs, nullableUUIDArg(seedIDParam), s.URL,
		reclaim, domain.QueueStatusInProgress, staleThreshold)

	var id pgtype.UUID
	if err := row.Scan(&id); err != nil {
		if isNoRows(err) {
			return nil, nil
		}

		return nil, err
	}

	item, err := claimRow(ctx, tx, fromUUID(id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}

	return item, nil
}

func (db *DB) claimAnyPending(
	ctx context.Context, exclude map[string]bool, reclaim bool, staleThreshold time.Time,
) (*domain.CrawlQueueItem, error) {
	excludeIDs := excludedIDs(exclude)

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		SELECT id FROM crawl_queue_items
		WHERE NOT (id = ANY($2::uuid[]))
		  AND (
		      status = $1
		      OR ($3 AND status = $4 AND last_attempt_at < $5)
		  )
		ORDER BY (status <> $1), discovered_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, domain.QueueStatusPending, excludeIDs, reclaim, domain.QueueStatusInProgress, staleThreshold)

	var id pgtype.UUID
	if err := row.Scan(&id); err != nil {
		if isNoRows(err) {
			return nil, nil
		}

		return nil, err
	}

	item, err := claimRow(ctx, tx, fromUUID(id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}

	return item, nil
}

// claimRow marks the row in_progress and returns its updated contents,
// run inside the caller's transaction so the UPDATE participates in the
// same row lock acquired by the SELECT ... FOR UPDATE SKIP LOCKED above.
func claimRow(ctx context.Context, tx pgx.Tx, id string) (*domain.CrawlQueueItem, error) {
	row := tx.QueryRow(ctx, `
		UPDATE crawl_queue_items
		SET status = $2, attempts = attempts + 1, last_attempt_at = now(), updated_at = now()
		WHERE id = $1
		RETURNING `+queueColumns,
		toUUID(id), domain.QueueStatusInProgress,
	)

	item, err := scanQueueItem(row)
	if err != nil {
		return nil, fmt.Errorf("claim row %s: %w", id, err)
	}

	return &item, nil
}

// MarkItemDone finalizes a successfully processed queue item.
func (db *DB) MarkItemDone(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE crawl_queue_items
		SET status = $2, last_error = '', updated_at = now()
		WHERE id = $1
	`, toUUID(id), domain.QueueStatusDone)
	if err != nil {
		return fmt.Errorf("mark item done: %w", err)
	}

	return nil
}

// MarkItemFailed finalizes a queue item that failed fetch, clipping the
// error message to the engine's persisted-error length limit.
func (db *DB) MarkItemFailed(ctx context.Context, id string, errMsg string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE crawl_queue_items
		SET status = $2, last_error = $3, updated_at = now()
		WHERE id = $1
	`, toUUID(id), domain.QueueStatusFailed, domain.ClipError(errMsg))
	if err != nil {
		return fmt.Errorf("mark item failed: %w", err)
	}

	return nil
}

// QueueCounts returns the number of queue items in each lifecycle state,
// used by the admin status endpoint.
func (db *DB) QueueCounts(ctx context.Context) (map[string]int, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT status, count(*) FROM crawl_queue_items GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("queue counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{
		domain.QueueStatusPending:    0,
		domain.QueueStatusInProgress: 0,
		domain.QueueStatusDone:       0,
		domain.QueueStatusFailed:     0,
	}

	for rows.Next() {
		var (
			status string
			count  int
		)

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan queue count: %w", err)
		}

		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue counts: %w", err)
	}

	return counts, nil
}

func excludedIDs(exclude map[string]bool) []string {
	ids := make([]string, 0, len(exclude))
	for id := range exclude {
		ids = append(ids, id)
	}

	return ids
}

// nullableUUIDArg returns nil for an invalid UUID so the bind parameter is
// SQL NULL rather than the zero UUID, which would otherwise match real rows.
func nullableUUIDArg(u pgtype.UUID) *pgtype.UUID {
	if !u.Valid {
		return nil
	}

	return &u
}

func scanQueueItem(row scannableRow) (domain.CrawlQueueItem, error) {
	var (
		id             pgtype.UUID
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
		seedID         pgtype.UUID
		discoveredAt   pgtype.Timestamptz
		lastAttemptAt  pgtype.Timestamptz
		maxDepth       pgtype.Int4
		attempts       pgtype.Int4
		item           domain.CrawlQueueItem
	)

	err := row.Scan(
		&id, &createdAt, &updatedAt, &item.URL, &seedID, &item.SeedURL, &maxDepth,
		&item.Status, &discoveredAt, &lastAttemptAt, &attempts, &item.LastError,
	)
	if err != nil {
		return domain.CrawlQueueItem{}, err
	}

	item.ID = fromUUID(id)
	item.CreatedAt = fromTimestamptz(createdAt)
	item.UpdatedAt = fromTimestamptz(updatedAt)
	item.SeedID = fromUUID(seedID)
	item.Depth = fromInt4(maxDepth)
	item.DiscoveredAt = fromTimestamptz(discoveredAt)
	item.Attempts = fromInt4(attempts)

	if lastAttemptAt.Valid {
		t := fromTimestamptz(lastAttemptAt)
		item.LastAttemptAt = &t
	}

	return item, nil
}
