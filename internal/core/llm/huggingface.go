package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/newscrawl/internal/domain"
)

// defaultLLMTimeout matches the original system's CRAWLER_LLM_TIMEOUT_SECONDS
// default of 45s.
const defaultLLMTimeout = 45 * time.Second

const (
	huggingfaceDefaultBaseURL   = "https://api-inference.huggingface.co"
	huggingfaceRateLimiterBurst = 3
	huggingfacePromptPrefix     = "Return ONLY valid JSON.\n"
)

// huggingfaceProvider POSTs to the Inference API's /models/{model}
// endpoint. No ecosystem HF client was present in the retrieved pack
// (see DESIGN.md), so this talks raw net/http like the rest of the
// teacher's outbound HTTP call sites.
type huggingfaceProvider struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     circuitBreaker
}

// NewHuggingFaceProvider builds an extractor bound to the config's model
// and API key.
func NewHuggingFaceProvider(cfg domain.CrawlerConfig, logger *zerolog.Logger) *huggingfaceProvider {
	baseURL := cfg.LLMBaseURL
	if baseURL == "" {
		baseURL = huggingfaceDefaultBaseURL
	}

	return &huggingfaceProvider{
		httpClient:  &http.Client{Timeout: defaultLLMTimeout},
		baseURL:     baseURL,
		model:       cfg.LLMModel,
		apiKey:      cfg.LLMAPIKey,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxOutputTokens,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(1), huggingfaceRateLimiterBurst),
	}
}

type huggingfaceRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters huggingfaceParamsReq `json:"parameters"`
}

type huggingfaceParamsReq struct {
	Temperature    float64 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Extract implements Provider.
func (p *huggingfaceProvider) Extract(ctx context.Context, prompt string) (*Result, error) {
	if err := p.breaker.check(); err != nil {
		return nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, nil
	}

	body, err := json.Marshal(huggingfaceRequest{
		Inputs: huggingfacePromptPrefix + prompt,
		Parameters: huggingfaceParamsReq{
			Temperature:    p.temperature,
			MaxNewTokens:   p.maxTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return nil, nil
	}

	url := fmt.Sprintf("%s/models/%s", trimSlash(p.baseURL), p.model)

	text, ok := p.post(ctx, url, body, extractHuggingFaceText)
	if !ok {
		p.breaker.recordFailure()

		return nil, nil
	}

	p.breaker.recordSuccess()

	return parseResponse(text), nil
}

func (p *huggingfaceProvider) post(ctx context.Context, url string, body []byte, extract func([]byte) string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	req.Header.Set("Content-Type", "application/json")

	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn().Err(err).Msg("huggingface extraction failed")

		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readLimited(resp.Body)
	if err != nil {
		return "", false
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", false
	}

	text := extract(respBody)

	return text, text != ""
}

func extractHuggingFaceText(body []byte) string {
	var asList []map[string]any
	if err := json.Unmarshal(body, &asList); err == nil && len(asList) > 0 {
		if text, ok := asList[0]["generated_text"].(string); ok {
			return text
		}

		return ""
	}

	var asDict map[string]any
	if err := json.Unmarshal(body, &asDict); err == nil {
		if text, ok := asDict["generated_text"].(string); ok {
			return text
		}
	}

	return ""
}

var _ Provider = (*huggingfaceProvider)(nil)
