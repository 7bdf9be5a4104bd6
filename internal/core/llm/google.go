package llm

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/lueurxax/newscrawl/internal/domain"
)

// ModelGeminiFlashLite is the cheapest/fastest Google model and the
// default when the config leaves llm_model empty for a Google provider tag.
const ModelGeminiFlashLite = "gemini-2.0-flash-lite"

const googleRateLimiterBurst = 3

// googleProvider extracts structured crawl results via the Gemini family
// through a single user-turn GenerateContent call.
type googleProvider struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     circuitBreaker
}

// NewGoogleProvider builds an extractor bound to the Gemini family,
// covering the google/gemini/google_ai/ai_studio provider tag aliases.
func NewGoogleProvider(ctx context.Context, cfg domain.CrawlerConfig, logger *zerolog.Logger) (*googleProvider, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.LLMAPIKey)}
	if cfg.LLMBaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.LLMBaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	model := cfg.LLMModel
	if model == "" {
		model = ModelGeminiFlashLite
	}

	return &googleProvider{
		client:      client,
		model:       model,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxOutputTokens,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(1), googleRateLimiterBurst),
	}, nil
}

// Close releases the underlying genai client.
func (p *googleProvider) Close() error {
	return p.client.Close()
}

// Extract implements Provider.
func (p *googleProvider) Extract(ctx context.Context, prompt string) (*Result, error) {
	if err := p.breaker.check(); err != nil {
		return nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, nil
	}

	genModel := p.client.GenerativeModel(p.model)
	genModel.SetTemperature(float32(p.temperature))
	genModel.SetMaxOutputTokens(int32(p.maxTokens))

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(prompt)))
	if err != nil {
		p.breaker.recordFailure()
		p.logger.Warn().Err(err).Msg("google extraction failed")

		return nil, nil
	}

	text := extractGoogleResponseText(resp)
	if text == "" {
		p.breaker.recordFailure()

		return nil, nil
	}

	p.breaker.recordSuccess()

	return parseResponse(text), nil
}

// sanitizeUTF8 removes invalid UTF-8 sequences; genai's protobuf wire
// format rejects strings that aren't valid UTF-8.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	return strings.ToValidUTF8(s, "")
}

func extractGoogleResponseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return sb.String()
}

var _ Provider = (*googleProvider)(nil)
