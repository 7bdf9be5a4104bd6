package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/newscrawl/internal/domain"
)

// Enabled reports whether the extractor should be consulted at all:
// config.llm_enabled AND (provider is the keyless special case apifreellm
// OR the API key is non-empty).
func Enabled(cfg domain.CrawlerConfig) bool {
	if !cfg.LLMEnabled {
		return false
	}

	if normalizeProvider(cfg.LLMProvider) == ProviderAPIFreeLLM {
		return true
	}

	return cfg.LLMAPIKey != ""
}

// New builds the Provider for cfg.LLMProvider, defaulting to openai when
// the tag is empty or unrecognized, matching the original system's
// case-insensitive provider dispatch. Every Extract call is bounded by
// timeout, the CRAWLER_LLM_TIMEOUT_SECONDS suspension point.
func New(ctx context.Context, cfg domain.CrawlerConfig, logger *zerolog.Logger, timeout time.Duration) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch normalizeProvider(cfg.LLMProvider) {
	case ProviderGoogle, ProviderGemini, ProviderGoogleAI, ProviderAIStudio:
		provider, err = NewGoogleProvider(ctx, cfg, logger)
	case ProviderHuggingFace:
		provider, err = NewHuggingFaceProvider(cfg, logger), nil
	case ProviderAPIFreeLLM:
		provider, err = NewAPIFreeLLMProvider(cfg, logger), nil
	case ProviderAnthropic:
		provider, err = NewAnthropicProvider(cfg, logger), nil
	default:
		provider, err = NewOpenAIProvider(cfg, logger), nil
	}

	if err != nil {
		return nil, err
	}

	return withTimeout(provider, timeout), nil
}

func normalizeProvider(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
