package worker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWaitReturnsImmediatelyForNonPositiveDuration(t *testing.T) {
	start := time.Now()

	if err := Wait(context.Background(), 0); err != nil {
		t.Fatalf("Wait() error = %v, want nil", err)
	}

	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Wait(0) took %v, want near-instant", elapsed)
	}
}

func TestWaitReturnsErrorWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Second); err == nil {
		t.Error("Wait() error = nil, want non-nil for canceled context")
	}
}

func TestWaitBlocksForDuration(t *testing.T) {
	start := time.Now()

	if err := Wait(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Wait() error = %v, want nil", err)
	}

	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait() returned after %v, want at least 20ms", elapsed)
	}
}

func TestRecoverPanicSwallowsPanic(t *testing.T) {
	logger := zerolog.Nop()

	func() {
		defer RecoverPanic(&logger, "test operation")
		panic("boom")
	}()
}
