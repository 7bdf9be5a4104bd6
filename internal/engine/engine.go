// Package engine implements the crawl scheduler: one run claims and
// processes batches of pending frontier URLs across active seeds until a
// stop condition, driving fetch, clean, LLM-or-heuristic extraction, and
// enqueue for each batch.
package engine

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/newscrawl/internal/core/llm"
	"github.com/lueurxax/newscrawl/internal/domain"
	"github.com/lueurxax/newscrawl/internal/httpfetch"
	"github.com/lueurxax/newscrawl/internal/platform/observability"
	"github.com/lueurxax/newscrawl/internal/platform/worker"
	"github.com/lueurxax/newscrawl/internal/storage"
)

// Engine executes crawl runs against a shared storage layer.
type Engine struct {
	db           *storage.DB
	logger       *zerolog.Logger
	rng          *rand.Rand
	fetchTimeout time.Duration
	llmTimeout   time.Duration
}

// New builds an Engine. rng is an explicit dependency so callers can seed
// it for deterministic tests of the next-URL heuristic fallback.
func New(db *storage.DB, logger *zerolog.Logger, rng *rand.Rand, fetchTimeout, llmTimeout time.Duration) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // scheduling randomness, not security-sensitive
	}

	return &Engine{db: db, logger: logger, rng: rng, fetchTimeout: fetchTimeout, llmTimeout: llmTimeout}
}

// Run executes one run to completion or fatal error. If runID is empty a
// new run is created; otherwise the existing run is resumed (set to
// running, last_error cleared).
func (e *Engine) Run(ctx context.Context, runID string) (run domain.CrawlRun, err error) {
	cfg, err := e.db.GetOrCreateConfig(ctx)
	if err != nil {
		return domain.CrawlRun{}, fmt.Errorf("load crawler config: %w", err)
	}

	run, err = e.startOrResumeRun(ctx, runID)
	if err != nil {
		return domain.CrawlRun{}, err
	}

	client := httpfetch.New(cfg.UserAgent, e.fetchTimeout)
	defer client.Close()

	provider, closer := e.buildProvider(ctx, cfg, run)
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	observability.RunActive.Set(1)
	defer observability.RunActive.Set(0)

	runErr := e.runLoop(ctx, &run, cfg, client, provider)

	status := domain.RunStatusDone
	lastErr := ""

	if runErr != nil {
		status = domain.RunStatusFailed
		lastErr = domain.ClipError(runErr.Error())
	}

	if err := e.db.FinishRun(ctx, run.ID, status, lastErr); err != nil {
		e.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to finalize run")
	}

	run.Status = status
	run.LastError = lastErr

	return run, nil
}

func (e *Engine) startOrResumeRun(ctx context.Context, runID string) (domain.CrawlRun, error) {
	if runID == "" {
		return e.db.CreateRun(ctx, "", true)
	}

	existing, err := e.db.GetRun(ctx, runID)
	if err != nil {
		return domain.CrawlRun{}, fmt.Errorf("load run %s: %w", runID, err)
	}

	if existing.Status == domain.RunStatusRunning {
		return existing, nil
	}

	return e.db.ResumeRun(ctx, runID)
}

// buildProvider returns the LLM extractor for this run, or (nil, nil) when
// the run isn't using LLM filtering or the provider is disabled, in which
// case every step falls back to heuristic extraction.
func (e *Engine) buildProvider(ctx context.Context, cfg domain.CrawlerConfig, run domain.CrawlRun) (llm.Provider, io.Closer) {
	if !run.UseLLMFiltering || !llm.Enabled(cfg) {
		return nil, nil
	}

	provider, err := llm.New(ctx, cfg, e.logger, e.llmTimeout)
	if err != nil {
		e.logger.Warn().Err(err).Msg("llm provider construction failed, falling back to heuristic extraction")

		return nil, nil
	}

	closer, _ := provider.(io.Closer)

	return provider, closer
}

// runLoop executes ensure-seed-queue then steps until a stop condition,
// mutating run's counters as it goes. A non-nil return is a run-level
// fatal error; per-item failures never reach here.
func (e *Engine) runLoop(
	ctx context.Context, run *domain.CrawlRun, cfg domain.CrawlerConfig,
	client *httpfetch.Client, provider llm.Provider,
) error {
	seeds, err := e.db.ActiveSeeds(ctx, cfg.ID)
	if err != nil {
		return fmt.Errorf("load active seeds: %w", err)
	}

	pending, err := e.db.HasPendingItems(ctx)
	if err != nil {
		return fmt.Errorf("check pending items: %w", err)
	}

	if !pending {
		if err := e.db.EnsureSeedQueue(ctx, seeds); err != nil {
			return fmt.Errorf("ensure seed queue: %w", err)
		}
	}

	pagesTarget := cfg.MaxPagesPerRun

	steps := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		seeds, err = e.db.ActiveSeeds(ctx, cfg.ID)
		if err != nil {
			return fmt.Errorf("reload active seeds: %w", err)
		}

		targetBatchSize := len(seeds)
		if targetBatchSize < 1 {
			targetBatchSize = 1
		}

		batch, err := e.db.ClaimBatch(ctx, seeds, targetBatchSize, cfg.ClaimTTL)
		if err != nil {
			return fmt.Errorf("claim batch: %w", err)
		}

		if len(batch) == 0 {
			break
		}

		result, err := e.processBatch(ctx, run.ID, cfg, run.Objective, batch, client, provider)
		if err != nil {
			return fmt.Errorf("process batch: %w", err)
		}

		if err := e.db.IncrementRunCounters(ctx, run.ID, len(batch), result.articlesCreated, result.queuedURLs); err != nil {
			return fmt.Errorf("increment run counters: %w", err)
		}

		observability.PagesProcessed.Add(float64(len(batch)))
		observability.ArticlesCreated.Add(float64(result.articlesCreated))
		observability.QueuedURLs.Add(float64(result.queuedURLs))

		run.PagesProcessed += len(batch)
		run.ArticlesCreated += result.articlesCreated
		run.QueuedURLs += result.queuedURLs

		steps++

		delay := time.Duration(cfg.RequestDelaySeconds * float64(time.Second))
		if err := worker.Wait(ctx, delay); err != nil {
			return err
		}

		if pagesTarget > 0 && steps >= pagesTarget {
			break
		}
	}

	return nil
}
