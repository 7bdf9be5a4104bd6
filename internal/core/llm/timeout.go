package llm

import (
	"context"
	"io"
	"time"
)

// timeoutProvider bounds every Extract call to timeout, regardless of
// which concrete adapter is wrapped.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func withTimeout(inner Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return inner
	}

	return &timeoutProvider{inner: inner, timeout: timeout}
}

func (p *timeoutProvider) Extract(ctx context.Context, prompt string) (*Result, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.inner.Extract(timeoutCtx, prompt)
}

// Close forwards to the wrapped provider when it owns a closeable client
// (the Google adapter's genai.Client).
func (p *timeoutProvider) Close() error {
	if closer, ok := p.inner.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
