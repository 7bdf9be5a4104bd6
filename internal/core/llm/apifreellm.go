package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/newscrawl/internal/domain"
)

const (
	apifreellmDefaultBaseURL   = "https://apifreellm.com"
	apifreellmRateLimiterBurst = 3
)

// apifreellmProvider POSTs to apifreellm's keyless-by-default chat
// endpoint. No ecosystem client exists for it (see DESIGN.md), so this
// talks raw net/http like huggingface.go.
type apifreellmProvider struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     circuitBreaker
}

// NewAPIFreeLLMProvider builds an extractor against apifreellm. It is the
// one provider tag whose availability does not require an API key.
func NewAPIFreeLLMProvider(cfg domain.CrawlerConfig, logger *zerolog.Logger) *apifreellmProvider {
	baseURL := cfg.LLMBaseURL
	if baseURL == "" {
		baseURL = apifreellmDefaultBaseURL
	}

	return &apifreellmProvider{
		httpClient:  &http.Client{Timeout: defaultLLMTimeout},
		baseURL:     baseURL,
		apiKey:      cfg.LLMAPIKey,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(1), apifreellmRateLimiterBurst),
	}
}

type apifreellmRequest struct {
	Message string `json:"message"`
}

// Extract implements Provider.
func (p *apifreellmProvider) Extract(ctx context.Context, prompt string) (*Result, error) {
	if err := p.breaker.check(); err != nil {
		return nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, nil
	}

	body, err := json.Marshal(apifreellmRequest{Message: prompt})
	if err != nil {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, trimSlash(p.baseURL)+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, nil
	}

	req.Header.Set("Content-Type", "application/json")

	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.breaker.recordFailure()
		p.logger.Warn().Err(err).Msg("apifreellm extraction failed")

		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readLimited(resp.Body)
	if err != nil || resp.StatusCode >= http.StatusBadRequest {
		p.breaker.recordFailure()

		return nil, nil
	}

	text := extractAPIFreeLLMText(respBody)
	if text == "" {
		p.breaker.recordFailure()

		return nil, nil
	}

	p.breaker.recordSuccess()

	return parseResponse(text), nil
}

func extractAPIFreeLLMText(body []byte) string {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}

	for _, key := range []string{"response", "message", "content", "text"} {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}

	return ""
}

var _ Provider = (*apifreellmProvider)(nil)
