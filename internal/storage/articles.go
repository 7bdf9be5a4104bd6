package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/newscrawl/internal/domain"
)

// UpsertArticle inserts or overwrites an article row keyed by URL, reporting
// whether a new row was created (the engine uses this to update
// articles_created without counting overwrites).
func (db *DB) UpsertArticle(ctx context.Context, a domain.Article) (created bool, err error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO articles (url, source, published_at, fetched_at, title, body, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE SET
			source = EXCLUDED.source,
			published_at = EXCLUDED.published_at,
			fetched_at = EXCLUDED.fetched_at,
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			language = EXCLUDED.language
		RETURNING (xmax = 0) AS inserted
	`, a.URL, a.Source, toTimestamptz(a.PublishedAt), toTimestamptz(a.FetchedAt), a.Title, a.Body, a.Language)

	if err := row.Scan(&created); err != nil {
		return false, fmt.Errorf("upsert article %s: %w", a.URL, err)
	}

	return created, nil
}

// StreamArticles calls yield for every article ordered by published_at
// desc, used by the CSV exporter so the full table never has to be
// materialized in memory.
func (db *DB) StreamArticles(ctx context.Context, yield func(domain.Article) error) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, url, source, published_at, fetched_at, title, body, language
		FROM articles
		ORDER BY published_at DESC
	`)
	if err != nil {
		return fmt.Errorf("stream articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          pgtype.UUID
			publishedAt pgtype.Timestamptz
			fetchedAt   pgtype.Timestamptz
			a           domain.Article
		)

		if err := rows.Scan(&id, &a.URL, &a.Source, &publishedAt, &fetchedAt, &a.Title, &a.Body, &a.Language); err != nil {
			return fmt.Errorf("scan article: %w", err)
		}

		a.ID = fromUUID(id)
		a.PublishedAt = fromTimestamptz(publishedAt)
		a.FetchedAt = fromTimestamptz(fetchedAt)

		if err := yield(a); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate articles: %w", err)
	}

	return nil
}

// ArticleCount returns the total number of stored articles.
func (db *DB) ArticleCount(ctx context.Context) (int, error) {
	var count int

	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	return count, nil
}
