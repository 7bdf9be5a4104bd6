package llm

import (
	"errors"
	"testing"
)

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	b := &circuitBreaker{}

	for i := 0; i < circuitBreakerThreshold-1; i++ {
		b.recordFailure()

		if err := b.check(); err != nil {
			t.Fatalf("check() after %d failures = %v, want nil (not yet open)", i+1, err)
		}
	}

	b.recordFailure()

	if err := b.check(); !errors.Is(err, ErrCircuitBreakerOpen) {
		t.Fatalf("check() after threshold failures = %v, want ErrCircuitBreakerOpen", err)
	}
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	b := &circuitBreaker{}

	for i := 0; i < circuitBreakerThreshold; i++ {
		b.recordFailure()
	}

	b.recordSuccess()

	if err := b.check(); err != nil {
		t.Fatalf("check() after recordSuccess = %v, want nil", err)
	}

	if b.consecutiveFailures != 0 {
		t.Errorf("consecutiveFailures = %d, want 0", b.consecutiveFailures)
	}
}
