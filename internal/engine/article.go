package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/lueurxax/newscrawl/internal/core/llm"
	"github.com/lueurxax/newscrawl/internal/domain"
	"github.com/lueurxax/newscrawl/internal/htmlclean"
)

// qualityGateBlocklist is matched case-insensitively against the article's
// "title\nbody" text; any hit rejects the article as a fetch artifact
// rather than real content.
var qualityGateBlocklist = []string{
	"301 moved permanently",
	"302 found",
	"403 forbidden",
	"404 not found",
	"500 internal server error",
	"nginx",
	"cloudflare",
	"access denied",
	"captcha",
	"enable javascript",
	"service unavailable",
}

// storeArticles persists every article surfaced by this step, either from
// the LLM result's Articles field or, when the LLM was skipped or
// returned nothing, from the heuristic extractor run over each
// successfully fetched payload. Returns the count of newly created rows.
func (e *Engine) storeArticles(
	ctx context.Context, cfg domain.CrawlerConfig, successes []fetchedPayload, llmResult *llm.Result,
) (int, error) {
	if llmResult != nil && len(llmResult.Articles) > 0 {
		baseURL := ""
		if len(successes) > 0 {
			baseURL = successes[0].item.URL
		}

		return e.storeLLMArticles(ctx, cfg, baseURL, llmResult.Articles)
	}

	return e.storeHeuristicArticles(ctx, cfg, successes)
}

func (e *Engine) storeLLMArticles(
	ctx context.Context, cfg domain.CrawlerConfig, baseURL string, dicts []map[string]any,
) (int, error) {
	created := 0

	for _, dict := range dicts {
		url := strings.TrimSpace(asString(dict["url"]))
		title := strings.TrimSpace(asString(dict["title"]))
		body := strings.TrimSpace(asString(dict["body"]))
		source := strings.TrimSpace(asString(dict["source"]))

		var publishedAt time.Time

		if raw := strings.TrimSpace(asString(dict["published_at"])); raw != "" {
			if parsed, ok := htmlclean.ParseTimestamp(raw); ok {
				publishedAt = parsed
			}
		}

		wasCreated, err := e.storeOneArticle(ctx, cfg, baseURL, url, title, body, source, publishedAt)
		if err != nil {
			return created, err
		}

		if wasCreated {
			created++
		}
	}

	return created, nil
}

func (e *Engine) storeHeuristicArticles(ctx context.Context, cfg domain.CrawlerConfig, successes []fetchedPayload) (int, error) {
	created := 0

	for _, s := range successes {
		extracted, ok := htmlclean.Extract(s.rawBody, s.cleaned, cfg.MaxArticleChars)
		if !ok {
			continue
		}

		var publishedAt time.Time
		if extracted.HasDate {
			publishedAt = extracted.PublishedAt
		}

		wasCreated, err := e.storeOneArticle(ctx, cfg, s.item.URL, "", extracted.Title, extracted.Body, "", publishedAt)
		if err != nil {
			return created, err
		}

		if wasCreated {
			created++
		}
	}

	return created, nil
}

// storeOneArticle implements the article storage gateway (URL resolution,
// trim/fallback, quality gate, clip, upsert) shared by both the LLM and
// heuristic sources.
func (e *Engine) storeOneArticle(
	ctx context.Context, cfg domain.CrawlerConfig, sourceURL, rawURL, title, body, source string, publishedAt time.Time,
) (bool, error) {
	resolvedURL := resolveArticleURL(sourceURL, rawURL)

	if title == "" && body == "" {
		return false, nil
	}

	if !passesQualityGate(title, body) {
		return false, nil
	}

	body = htmlclean.Clip(body, cfg.MaxArticleChars)

	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	if source == "" {
		source = hostOf(resolvedURL)
	}

	article := domain.Article{
		URL:         resolvedURL,
		Source:      source,
		PublishedAt: publishedAt,
		FetchedAt:   time.Now().UTC(),
		Title:       title,
		Body:        body,
		Language:    "",
	}

	wasCreated, err := e.db.UpsertArticle(ctx, article)
	if err != nil {
		return false, fmt.Errorf("upsert article %s: %w", resolvedURL, err)
	}

	return wasCreated, nil
}

// resolveArticleURL trims rawURL, falls back to sourceURL when empty, and
// resolves a relative rawURL against sourceURL.
func resolveArticleURL(sourceURL, rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return sourceURL
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return trimmed
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	return base.ResolveReference(ref).String()
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return parsed.Host
}

// passesQualityGate implements the reject rules: empty body; both body
// and title too short; a blocklisted fetch-artifact phrase; too low an
// alphabetic-character ratio in the body.
func passesQualityGate(title, body string) bool {
	if body == "" {
		return false
	}

	if len([]rune(body)) < 200 && len([]rune(title)) < 15 {
		return false
	}

	combined := strings.ToLower(title + "\n" + body)
	for _, phrase := range qualityGateBlocklist {
		if strings.Contains(combined, phrase) {
			return false
		}
	}

	if alphabeticRatio(body) < 0.5 {
		return false
	}

	return true
}

func alphabeticRatio(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}

	alpha := 0

	for _, r := range runes {
		if unicode.IsLetter(r) {
			alpha++
		}
	}

	return float64(alpha) / float64(len(runes))
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
