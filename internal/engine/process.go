package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lueurxax/newscrawl/internal/core/llm"
	"github.com/lueurxax/newscrawl/internal/domain"
	"github.com/lueurxax/newscrawl/internal/htmlclean"
	"github.com/lueurxax/newscrawl/internal/httpfetch"
	"github.com/lueurxax/newscrawl/internal/nexturl"
	"github.com/lueurxax/newscrawl/internal/prompt"
)

type stepResult struct {
	articlesCreated int
	queuedURLs      int
}

// fetchedPayload is one successfully fetched, cleaned, candidate-harvested
// page from the batch's fetch phase.
type fetchedPayload struct {
	item       domain.CrawlQueueItem
	rawBody    []byte
	cleaned    string
	candidates []string
}

// processBatch runs the per-step pipeline in spec order: fetch, prompt,
// LLM-or-heuristic extraction, article store, next-URL assignment,
// enqueue, finalize.
func (e *Engine) processBatch(
	ctx context.Context, runID string, cfg domain.CrawlerConfig, objective string,
	batch []domain.CrawlQueueItem, client *httpfetch.Client, provider llm.Provider,
) (stepResult, error) {
	successes := e.fetchPhase(ctx, client, cfg, batch)

	if len(successes) == 0 {
		return stepResult{}, nil
	}

	payloads := make([]prompt.Payload, 0, len(successes))
	for _, s := range successes {
		payloads = append(payloads, prompt.Payload{
			SeedURL:       s.item.SeedURL,
			URL:           s.item.URL,
			CleanedText:   s.cleaned,
			CandidateURLs: s.candidates,
		})
	}

	promptText := prompt.Build(cfg.PromptTemplate, objective, payloads, cfg.MaxNextURLs, cfg.MaxArticles, cfg.MaxArticleChars)

	var llmResult *llm.Result

	if provider != nil {
		llmResult, _ = provider.Extract(ctx, promptText)
	}

	articlesCreated, err := e.storeArticles(ctx, cfg, successes, llmResult)
	if err != nil {
		return stepResult{}, err
	}

	seedURLs := prompt.UniqueSeedURLs(payloads)
	targetBatchSize := len(batch)

	var candidatePool []string
	for _, p := range payloads {
		candidatePool = append(candidatePool, p.CandidateURLs...)
	}

	selections := nexturl.Assign(extractLLMPairs(llmResult), extractLLMFlat(llmResult), seedURLs, targetBatchSize, candidatePool, e.rng)

	seedMap, seedDepth := seedContext(batch)

	queuedURLs, err := e.enqueueSelections(ctx, cfg, seedMap, seedDepth, selections)
	if err != nil {
		return stepResult{}, err
	}

	if err := e.finalizeSuccesses(ctx, successes); err != nil {
		return stepResult{}, err
	}

	return stepResult{articlesCreated: articlesCreated, queuedURLs: queuedURLs}, nil
}

// fetchPhase issues sequential GETs over the batch, marking each failed
// item failed as it resolves and returning only the successful payloads;
// successful items are marked done later, by finalizeSuccesses.
func (e *Engine) fetchPhase(ctx context.Context, client *httpfetch.Client, cfg domain.CrawlerConfig, batch []domain.CrawlQueueItem) []fetchedPayload {
	successes := make([]fetchedPayload, 0, len(batch))

	for _, item := range batch {
		page, err := client.Get(ctx, item.URL)
		if err != nil {
			e.failItem(ctx, item, err.Error())
			continue
		}

		if page.StatusCode >= 400 {
			e.failItem(ctx, item, "http status "+strconv.Itoa(page.StatusCode))
			continue
		}

		cleaned, err := htmlclean.Clean(page.Body)
		if err != nil {
			e.failItem(ctx, item, "clean html: "+err.Error())
			continue
		}

		cleaned = htmlclean.Clip(cleaned, cfg.MaxContextChars)

		if strings.TrimSpace(cleaned) == "" {
			e.failItem(ctx, item, "empty_context")
			continue
		}

		candidates, err := htmlclean.CandidateURLs(page.Body, item.URL, cfg.AllowExternalDomain)
		if err != nil {
			e.failItem(ctx, item, "extract candidates: "+err.Error())
			continue
		}

		successes = append(successes, fetchedPayload{
			item:       item,
			rawBody:    page.Body,
			cleaned:    cleaned,
			candidates: candidates,
		})
	}

	return successes
}

func (e *Engine) failItem(ctx context.Context, item domain.CrawlQueueItem, reason string) {
	if err := e.db.MarkItemFailed(ctx, item.ID, reason); err != nil {
		e.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to mark item failed")
	}

	if item.SeedID == "" {
		return
	}

	if err := e.db.RecordSeedFetchFailure(ctx, item.SeedID, reason); err != nil {
		e.logger.Error().Err(err).Str("seed_id", item.SeedID).Msg("failed to record seed fetch failure")
	}
}

func (e *Engine) finalizeSuccesses(ctx context.Context, successes []fetchedPayload) error {
	for _, s := range successes {
		if err := e.db.MarkItemDone(ctx, s.item.ID); err != nil {
			return fmt.Errorf("mark item %s done: %w", s.item.ID, err)
		}

		if s.item.SeedID == "" {
			continue
		}

		if err := e.db.RecordSeedFetchSuccess(ctx, s.item.SeedID); err != nil {
			return fmt.Errorf("record seed %s fetch success: %w", s.item.SeedID, err)
		}
	}

	return nil
}

func extractLLMPairs(result *llm.Result) []nexturl.SeedPair {
	if result == nil {
		return nil
	}

	pairs := make([]nexturl.SeedPair, 0, len(result.NextURLsBySeed))
	for _, p := range result.NextURLsBySeed {
		pairs = append(pairs, nexturl.SeedPair{SeedURL: p.SeedURL, NextURL: p.NextURL})
	}

	return pairs
}

func extractLLMFlat(result *llm.Result) []string {
	if result == nil {
		return nil
	}

	return result.NextURLs
}

// seedContext derives, from this step's batch, the seed lookup (by seed
// URL) and the minimum depth observed per seed URL.
func seedContext(batch []domain.CrawlQueueItem) (map[string]domain.CrawlSeed, map[string]int) {
	seedMap := make(map[string]domain.CrawlSeed)
	seedDepth := make(map[string]int)

	for _, item := range batch {
		if item.SeedID != "" {
			seedMap[item.SeedURL] = domain.CrawlSeed{ID: item.SeedID, URL: item.SeedURL}
		}

		if depth, ok := seedDepth[item.SeedURL]; !ok || item.Depth < depth {
			seedDepth[item.SeedURL] = item.Depth
		}
	}

	return seedMap, seedDepth
}
