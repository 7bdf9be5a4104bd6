package llm

import (
	"context"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/lueurxax/newscrawl/internal/domain"
)

const (
	openaiSystemPrompt = "You are a high-precision news extraction and URL selection system. " +
		"Only return valid JSON."

	openaiRateLimiterBurst = 3
	openaiDefaultModel     = "gpt-4o-mini"
)

// openaiProvider extracts structured crawl results via OpenAI's chat
// completion API with response_format json_object.
type openaiProvider struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     circuitBreaker
}

// NewOpenAIProvider builds an extractor bound to the singleton config's
// OpenAI credentials, model, and base URL.
func NewOpenAIProvider(cfg domain.CrawlerConfig, logger *zerolog.Logger) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientCfg.BaseURL = cfg.LLMBaseURL
	}

	model := cfg.LLMModel
	if model == "" {
		model = openaiDefaultModel
	}

	return &openaiProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxOutputTokens,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(1), openaiRateLimiterBurst),
	}
}

// Extract implements Provider. A nil Result covers every failure mode
// (rate-limited, circuit open, transport error, empty choice) per the
// extractor's "returns null on any failure" contract.
func (p *openaiProvider) Extract(ctx context.Context, prompt string) (*Result, error) {
	if err := p.breaker.check(); err != nil {
		return nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          p.model,
		Temperature:    float32(p.temperature),
		MaxTokens:      p.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		p.breaker.recordFailure()
		p.logger.Warn().Err(err).Msg("openai extraction failed")

		return nil, nil
	}

	if len(resp.Choices) == 0 {
		p.breaker.recordFailure()

		return nil, nil
	}

	p.breaker.recordSuccess()

	return parseResponse(resp.Choices[0].Message.Content), nil
}

var _ Provider = (*openaiProvider)(nil)
