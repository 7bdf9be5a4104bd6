package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/lueurxax/newscrawl/internal/domain"
	"github.com/lueurxax/newscrawl/internal/nexturl"
)

// enqueueSelections implements the enqueue step: each (seed_url, next_url)
// selection is depth-bound checked, resolved against its seed when
// relative, and inserted into the frontier if not already present.
// Returns the count of URLs actually newly queued.
func (e *Engine) enqueueSelections(
	ctx context.Context, cfg domain.CrawlerConfig,
	seedMap map[string]domain.CrawlSeed, seedDepth map[string]int,
	selections []nexturl.SeedPair,
) (int, error) {
	queued := 0

	for _, sel := range selections {
		next := strings.TrimSpace(sel.NextURL)
		if next == "" {
			continue
		}

		newDepth := seedDepth[sel.SeedURL] + 1
		if cfg.MaxDepth > 0 && newDepth > cfg.MaxDepth {
			continue
		}

		resolved := resolveCandidateURL(sel.SeedURL, next)

		seed := seedMap[sel.SeedURL]

		created, err := e.db.InsertQueueItemIfAbsent(ctx, resolved, seed.ID, sel.SeedURL, newDepth)
		if err != nil {
			return queued, fmt.Errorf("enqueue %s: %w", resolved, err)
		}

		if created {
			queued++
		}
	}

	return queued, nil
}

// resolveCandidateURL resolves next against seedURL when it isn't already
// absolute (doesn't start with http:// or https://).
func resolveCandidateURL(seedURL, next string) string {
	if strings.HasPrefix(next, "http://") || strings.HasPrefix(next, "https://") {
		return next
	}

	base, err := url.Parse(seedURL)
	if err != nil {
		return next
	}

	ref, err := url.Parse(next)
	if err != nil {
		return next
	}

	return base.ResolveReference(ref).String()
}
