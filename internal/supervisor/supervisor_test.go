package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/newscrawl/internal/domain"
)

type fakeRunner struct {
	done chan struct{}
	run  domain.CrawlRun
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, runID string) (domain.CrawlRun, error) {
	defer close(f.done)
	return f.run, f.err
}

func newTestSupervisor(factory RunnerFactory) *Supervisor {
	logger := zerolog.Nop()
	return New(nil, &logger, factory)
}

func TestStartAsyncRejectsSecondRunWhileActive(t *testing.T) {
	release := make(chan struct{})

	factory := func() Runner {
		return &fakeRunner{
			done: make(chan struct{}),
			run:  domain.CrawlRun{ID: "run-1"},
		}
	}

	blockingFactory := func() Runner {
		<-release
		return factory()
	}

	s := newTestSupervisor(blockingFactory)

	if !s.StartAsync("") {
		t.Fatal("StartAsync() = false on first call, want true")
	}

	if s.StartAsync("") {
		t.Error("StartAsync() = true on second call while active, want false")
	}

	close(release)
}

func TestStartAsyncCapturesRunnerError(t *testing.T) {
	done := make(chan struct{})

	factory := func() Runner {
		return &fakeRunner{done: done, err: errors.New("boom")}
	}

	s := newTestSupervisor(factory)

	if !s.StartAsync("") {
		t.Fatal("StartAsync() = false, want true")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner never completed")
	}

	waitForInactive(t, s)

	s.mu.Lock()
	lastErr := s.lastErr
	s.mu.Unlock()

	if lastErr != "boom" {
		t.Errorf("lastErr = %q, want %q", lastErr, "boom")
	}
}

func TestStartAsyncAllowsRestartAfterCompletion(t *testing.T) {
	done := make(chan struct{})

	factory := func() Runner {
		return &fakeRunner{done: done, run: domain.CrawlRun{ID: "run-1"}}
	}

	s := newTestSupervisor(factory)

	if !s.StartAsync("") {
		t.Fatal("StartAsync() = false, want true")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner never completed")
	}

	waitForInactive(t, s)

	if !s.StartAsync("") {
		t.Error("StartAsync() = false after previous run completed, want true")
	}
}

func waitForInactive(t *testing.T, s *Supervisor) {
	t.Helper()

	deadline := time.Now().Add(time.Second)

	for time.Now().Before(deadline) {
		s.mu.Lock()
		active := s.active
		s.mu.Unlock()

		if !active {
			return
		}

		time.Sleep(time.Millisecond)
	}

	t.Fatal("supervisor never went inactive")
}
