// Package llm adapts several third-party LLM APIs to a single extraction
// contract used by the crawl engine's prompt phase.
package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Sentinel errors shared by every provider adapter.
var (
	ErrCircuitBreakerOpen   = errors.New("llm: circuit breaker open")
	ErrEmptyLLMResponse     = errors.New("llm: empty response")
	ErrUnexpectedStatusCode = errors.New("llm: unexpected status code")
)

// Provider tags recognized by New.
const (
	ProviderOpenAI      = "openai"
	ProviderGoogle      = "google"
	ProviderGemini      = "gemini"
	ProviderGoogleAI    = "google_ai"
	ProviderAIStudio    = "ai_studio"
	ProviderHuggingFace = "huggingface"
	ProviderAPIFreeLLM  = "apifreellm"
	ProviderAnthropic   = "anthropic"
)

// SeedNextURL is one LLM-suggested next hop for a given seed.
type SeedNextURL struct {
	SeedURL string
	NextURL string
}

// Result is the decoded shape every provider adapter returns on success.
// Articles are left as loosely-typed maps because the article storage
// gateway (internal/engine) is the only consumer and does its own
// trimming/validation per field.
type Result struct {
	NextURLs       []string
	NextURLsBySeed []SeedNextURL
	Articles       []map[string]any
}

// Provider is the single capability the crawl engine depends on: turn a
// fully-built prompt into a Result, or nil on any transport, decoding, or
// availability failure. Callers never receive an error to branch on —
// a nil Result always means "fall back to heuristic extraction".
type Provider interface {
	Extract(ctx context.Context, prompt string) (*Result, error)
}

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
)

// circuitBreaker trips after circuitBreakerThreshold consecutive failures
// and stays open for circuitBreakerTimeout, grounded on the teacher's
// openai.go rate-limited-client convention.
type circuitBreaker struct {
	mu                  sync.Mutex
	consecutiveFailures int
	openUntil           time.Time
}

func (b *circuitBreaker) check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveFailures >= circuitBreakerThreshold && time.Now().Before(b.openUntil) {
		return ErrCircuitBreakerOpen
	}

	return nil
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
}

func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	if b.consecutiveFailures >= circuitBreakerThreshold {
		b.openUntil = time.Now().Add(circuitBreakerTimeout)
	}
}
