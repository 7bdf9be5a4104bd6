package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/newscrawl/internal/domain"
)

// GetOrCreateConfig returns the singleton CrawlerConfig row, inserting the
// default configuration the first time it is read.
func (db *DB) GetOrCreateConfig(ctx context.Context) (domain.CrawlerConfig, error) {
	cfg, err := db.getConfig(ctx)
	if err == nil {
		return cfg, nil
	}

	if !isNoRows(err) {
		return domain.CrawlerConfig{}, fmt.Errorf("get crawler config: %w", err)
	}

	return db.insertDefaultConfig(ctx)
}

func (db *DB) getConfig(ctx context.Context) (domain.CrawlerConfig, error) {
	row := db.Pool.QueryRow(ctx, configSelectColumns+`
		FROM crawler_config
		ORDER BY created_at ASC
		LIMIT 1
	`)

	return scanConfig(row)
}

func (db *DB) insertDefaultConfig(ctx context.Context) (domain.CrawlerConfig, error) {
	d := domain.NewDefaultCrawlerConfig()

	row := db.Pool.QueryRow(ctx, `
		INSERT INTO crawler_config (
			llm_enabled, llm_provider, llm_model, llm_base_url, llm_api_key,
			llm_temperature, llm_max_output_tokens,
			max_context_chars, max_next_urls, max_articles, max_article_chars,
			max_pages_per_run, max_depth, request_delay_seconds, user_agent,
			allow_external_domains, claim_ttl_seconds, prompt_template
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT DO NOTHING
		`+configReturningColumns,
		d.LLMEnabled, d.LLMProvider, d.LLMModel, d.LLMBaseURL, d.LLMAPIKey,
		d.LLMTemperature, d.LLMMaxOutputTokens,
		d.MaxContextChars, d.MaxNextURLs, d.MaxArticles, d.MaxArticleChars,
		d.MaxPagesPerRun, d.MaxDepth, d.RequestDelaySeconds, d.UserAgent,
		d.AllowExternalDomain, int(d.ClaimTTL.Seconds()), d.PromptTemplate,
	)

	cfg, err := scanConfig(row)
	if err == nil {
		return cfg, nil
	}

	if !isNoRows(err) {
		return domain.CrawlerConfig{}, fmt.Errorf("insert default crawler config: %w", err)
	}

	// Another connection raced us and inserted first; read what's there.
	return db.getConfig(ctx)
}

// UpdateConfig merges patch onto the existing singleton row via
// mergeConfigPatch and returns the resulting config. The merge is partial
// for every field except the two booleans (LLMEnabled,
// AllowExternalDomain), which are always overwritten from patch.
func (db *DB) UpdateConfig(ctx context.Context, patch domain.CrawlerConfig) (domain.CrawlerConfig, error) {
	current, err := db.GetOrCreateConfig(ctx)
	if err != nil {
		return domain.CrawlerConfig{}, err
	}

	merged := mergeConfigPatch(current, patch)

	row := db.Pool.QueryRow(ctx, `
		UPDATE crawler_config SET
			llm_enabled = $2, llm_provider = $3, llm_model = $4, llm_base_url = $5,
			llm_api_key = $6, llm_temperature = $7, llm_max_output_tokens = $8,
			max_context_chars = $9, max_next_urls = $10, max_articles = $11,
			max_article_chars = $12, max_pages_per_run = $13, max_depth = $14,
			request_delay_seconds = $15, user_agent = $16, allow_external_domains = $17,
			claim_ttl_seconds = $18, prompt_template = $19, updated_at = now()
		WHERE id = $1
		`+configReturningColumns,
		toUUID(merged.ID), merged.LLMEnabled, merged.LLMProvider, merged.LLMModel, merged.LLMBaseURL,
		merged.LLMAPIKey, merged.LLMTemperature, merged.LLMMaxOutputTokens,
		merged.MaxContextChars, merged.MaxNextURLs, merged.MaxArticles,
		merged.MaxArticleChars, merged.MaxPagesPerRun, merged.MaxDepth,
		merged.RequestDelaySeconds, merged.UserAgent, merged.AllowExternalDomain,
		int(merged.ClaimTTL.Seconds()), merged.PromptTemplate,
	)

	cfg, err := scanConfig(row)
	if err != nil {
		return domain.CrawlerConfig{}, fmt.Errorf("update crawler config: %w", err)
	}

	return cfg, nil
}

// mergeConfigPatch overlays non-zero-value fields of patch onto base;
// the boolean fields are copied from patch whatever their value.
func mergeConfigPatch(base, patch domain.CrawlerConfig) domain.CrawlerConfig {
	merged := base

	if patch.LLMProvider != "" {
		merged.LLMProvider = patch.LLMProvider
	}

	if patch.LLMModel != "" {
		merged.LLMModel = patch.LLMModel
	}

	if patch.LLMBaseURL != "" {
		merged.LLMBaseURL = patch.LLMBaseURL
	}

	if patch.LLMAPIKey != "" {
		merged.LLMAPIKey = patch.LLMAPIKey
	}

	if patch.LLMTemperature != 0 {
		merged.LLMTemperature = patch.LLMTemperature
	}

	if patch.LLMMaxOutputTokens != 0 {
		merged.LLMMaxOutputTokens = patch.LLMMaxOutputTokens
	}

	if patch.MaxContextChars != 0 {
		merged.MaxContextChars = patch.MaxContextChars
	}

	if patch.MaxNextURLs != 0 {
		merged.MaxNextURLs = patch.MaxNextURLs
	}

	if patch.MaxArticles != 0 {
		merged.MaxArticles = patch.MaxArticles
	}

	if patch.MaxArticleChars != 0 {
		merged.MaxArticleChars = patch.MaxArticleChars
	}

	if patch.MaxPagesPerRun != 0 {
		merged.MaxPagesPerRun = patch.MaxPagesPerRun
	}

	if patch.MaxDepth != 0 {
		merged.MaxDepth = patch.MaxDepth
	}

	if patch.RequestDelaySeconds != 0 {
		merged.RequestDelaySeconds = patch.RequestDelaySeconds
	}

	if patch.ClaimTTL != 0 {
		merged.ClaimTTL = patch.ClaimTTL
	}

	if patch.UserAgent != "" {
		merged.UserAgent = patch.UserAgent
	}

	if patch.PromptTemplate != "" {
		merged.PromptTemplate = patch.PromptTemplate
	}

	// Booleans are always taken from the patch: callers send the full
	// current value for fields they don't intend to change.
	merged.LLMEnabled = patch.LLMEnabled
	merged.AllowExternalDomain = patch.AllowExternalDomain

	return merged
}

const configSelectColumns = `
		SELECT id, created_at, updated_at,
		       llm_enabled, llm_provider, llm_model, llm_base_url, llm_api_key,
		       llm_temperature, llm_max_output_tokens,
		       max_context_chars, max_next_urls, max_articles, max_article_chars,
		       max_pages_per_run, max_depth, request_delay_seconds, user_agent,
		       allow_external_domains, claim_ttl_seconds, prompt_template`

const configReturningColumns = `
		RETURNING id, created_at, updated_at,
		       llm_enabled, llm_provider, llm_model, llm_base_url, llm_api_key,
		       llm_temperature, llm_max_output_tokens,
		       max_context_chars, max_next_urls, max_articles, max_article_chars,
		       max_pages_per_run, max_depth, request_delay_seconds, user_agent,
		       allow_external_domains, claim_ttl_seconds, prompt_template`

type scannableRow interface {
	Scan(dest ...any) error
}

func scanConfig(row scannableRow) (domain.CrawlerConfig, error) {
	var (
		id                   pgtype.UUID
		createdAt, updatedAt pgtype.Timestamptz
		maxOutputTokens      pgtype.Int4
		maxContextChars      pgtype.Int4
		maxNextURLs          pgtype.Int4
		maxArticles          pgtype.Int4
		maxArticleChars      pgtype.Int4
		maxPagesPerRun       pgtype.Int4
		maxDepth             pgtype.Int4
		claimTTLSeconds      pgtype.Int4
		cfg                  domain.CrawlerConfig
	)

	err := row.Scan(
		&id, &createdAt, &updatedAt,
		&cfg.LLMEnabled, &cfg.LLMProvider, &cfg.LLMModel, &cfg.LLMBaseURL, &cfg.LLMAPIKey,
		&cfg.LLMTemperature, &maxOutputTokens,
		&maxContextChars, &maxNextURLs, &maxArticles, &maxArticleChars,
		&maxPagesPerRun, &maxDepth, &cfg.RequestDelaySeconds, &cfg.UserAgent,
		&cfg.AllowExternalDomain, &claimTTLSeconds, &cfg.PromptTemplate,
	)
	if err != nil {
		return domain.CrawlerConfig{}, err
	}

	cfg.ID = fromUUID(id)
	cfg.CreatedAt = fromTimestamptz(createdAt)
	cfg.UpdatedAt = fromTimestamptz(updatedAt)
	cfg.LLMMaxOutputTokens = fromInt4(maxOutputTokens)
	cfg.MaxContextChars = fromInt4(maxContextChars)
	cfg.MaxNextURLs = fromInt4(maxNextURLs)
	cfg.MaxArticles = fromInt4(maxArticles)
	cfg.MaxArticleChars = fromInt4(maxArticleChars)
	cfg.MaxPagesPerRun = fromInt4(maxPagesPerRun)
	cfg.MaxDepth = fromInt4(maxDepth)
	cfg.ClaimTTL = time.Duration(fromInt4(claimTTLSeconds)) * time.Second

	return cfg, nil
}
