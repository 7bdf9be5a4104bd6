package storage

import (
	"testing"
	"time"
)

func TestStaleClaimWindowDisabledForNonPositiveTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		reclaim, _ := staleClaimWindow(ttl)
		if reclaim {
			t.Errorf("staleClaimWindow(%v) reclaim = true, want false", ttl)
		}
	}
}

func TestStaleClaimWindowThreshold(t *testing.T) {
	before := time.Now().UTC()

	reclaim, threshold := staleClaimWindow(5 * time.Minute)

	after := time.Now().UTC()

	if !reclaim {
		t.Fatal("staleClaimWindow(5m) reclaim = false, want true")
	}

	wantEarliest := before.Add(-5 * time.Minute)
	wantLatest := after.Add(-5 * time.Minute)

	if threshold.Before(wantEarliest) || threshold.After(wantLatest) {
		t.Errorf("threshold = %v, want between %v and %v", threshold, wantEarliest, wantLatest)
	}
}
