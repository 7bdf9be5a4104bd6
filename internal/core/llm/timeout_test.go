package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingProvider struct {
	gotDeadline bool
	result      *Result
	err         error
}

func (p *recordingProvider) Extract(ctx context.Context, prompt string) (*Result, error) {
	_, p.gotDeadline = ctx.Deadline()
	return p.result, p.err
}

type closeTrackingProvider struct {
	recordingProvider
	closed bool
}

func (p *closeTrackingProvider) Close() error {
	p.closed = true
	return nil
}

func TestWithTimeoutPassesThroughWhenNonPositive(t *testing.T) {
	inner := &recordingProvider{}

	wrapped := withTimeout(inner, 0)
	if wrapped != inner {
		t.Error("withTimeout(0) should return the inner provider unchanged")
	}
}

func TestWithTimeoutAppliesDeadline(t *testing.T) {
	inner := &recordingProvider{result: &Result{}}

	wrapped := withTimeout(inner, time.Second)

	_, err := wrapped.Extract(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Extract() error = %v, want nil", err)
	}

	if !inner.gotDeadline {
		t.Error("Extract() inner provider did not see a context deadline")
	}
}

func TestWithTimeoutForwardsError(t *testing.T) {
	wantErr := errors.New("boom")
	inner := &recordingProvider{err: wantErr}

	wrapped := withTimeout(inner, time.Second)

	_, err := wrapped.Extract(context.Background(), "prompt")
	if !errors.Is(err, wantErr) {
		t.Errorf("Extract() error = %v, want %v", err, wantErr)
	}
}

func TestWithTimeoutClosesInnerCloser(t *testing.T) {
	inner := &closeTrackingProvider{}

	wrapped := withTimeout(inner, time.Second)

	closer, ok := wrapped.(interface{ Close() error })
	if !ok {
		t.Fatal("withTimeout() result does not implement Close")
	}

	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v, want nil", err)
	}

	if !inner.closed {
		t.Error("Close() did not forward to inner provider")
	}
}

func TestWithTimeoutCloseNoopWhenInnerNotCloser(t *testing.T) {
	inner := &recordingProvider{}

	wrapped := withTimeout(inner, time.Second)

	closer, ok := wrapped.(interface{ Close() error })
	if !ok {
		t.Fatal("withTimeout() result does not implement Close")
	}

	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
