// Package csvexport streams the article table as CSV for the admin
// surface's export endpoint.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/lueurxax/newscrawl/internal/domain"
	"github.com/lueurxax/newscrawl/internal/storage"
)

// Header is the exact column order the export endpoint writes.
var Header = []string{"published_at", "fetched_at", "source", "url", "title", "body", "language"}

// WriteArticles streams every article, ordered by published_at desc, as
// CSV to w. Returns the number of data rows written.
func WriteArticles(ctx context.Context, db *storage.DB, w io.Writer) (int, error) {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	rows := 0

	err := db.StreamArticles(ctx, func(a domain.Article) error {
		record := []string{
			a.PublishedAt.UTC().Format(storage.TimestampLayout),
			a.FetchedAt.UTC().Format(storage.TimestampLayout),
			a.Source,
			a.URL,
			a.Title,
			a.Body,
			a.Language,
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write article row %s: %w", a.URL, err)
		}

		rows++

		return nil
	})
	if err != nil {
		return rows, err
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}

	return rows, nil
}
