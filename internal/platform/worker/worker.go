// Package worker provides small background-process helpers shared by the
// crawl daemon: interruptible waiting and panic recovery for detached goroutines.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// RecoverPanic recovers from panics and logs them.
// Use as: defer worker.RecoverPanic(logger, "operation name")
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")
	}
}
