// Package supervisor enforces the crawl engine's single-active-run
// invariant and exposes a live status snapshot for the admin surface.
package supervisor

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lueurxax/newscrawl/internal/domain"
	"github.com/lueurxax/newscrawl/internal/platform/worker"
	"github.com/lueurxax/newscrawl/internal/storage"
)

// Runner is the capability the supervisor drives: the engine's Run method.
type Runner interface {
	Run(ctx context.Context, runID string) (domain.CrawlRun, error)
}

// RunnerFactory builds a fresh Runner per background run, matching the
// "constructs a fresh engine" semantics of start_async.
type RunnerFactory func() Runner

// Supervisor is process-wide singleton state: one background worker may
// be alive at a time.
type Supervisor struct {
	mu      sync.Mutex
	active  bool
	lastErr string

	db      *storage.DB
	logger  *zerolog.Logger
	factory RunnerFactory
}

// New builds a Supervisor. factory is called once per started run to
// construct a fresh Runner.
func New(db *storage.DB, logger *zerolog.Logger, factory RunnerFactory) *Supervisor {
	return &Supervisor{db: db, logger: logger, factory: factory}
}

// StartAsync attempts to start a background run. runID may be empty, in
// which case the runner creates a new run. Returns false without doing
// anything if a worker is already alive.
func (s *Supervisor) StartAsync(runID string) bool {
	s.mu.Lock()

	if s.active {
		s.mu.Unlock()
		return false
	}

	s.active = true
	s.lastErr = ""

	s.mu.Unlock()

	go s.runDetached(runID)

	return true
}

func (s *Supervisor) runDetached(runID string) {
	defer worker.RecoverPanic(s.logger, "crawl run")

	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	runner := s.factory()

	run, err := runner.Run(context.Background(), runID)
	if err != nil {
		s.mu.Lock()
		s.lastErr = domain.ClipError(err.Error())
		s.mu.Unlock()

		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("crawl run failed")

		return
	}

	if run.LastError != "" {
		s.mu.Lock()
		s.lastErr = run.LastError
		s.mu.Unlock()
	}
}

// Status is the live_status() result.
type Status struct {
	Active      bool
	LastError   string
	LatestRun   *domain.CrawlRun
	QueueCounts map[string]int
}

// LiveStatus returns the supervisor's current running flag and last error
// alongside the most recent run's summary and queue counts by status.
func (s *Supervisor) LiveStatus(ctx context.Context) (Status, error) {
	s.mu.Lock()
	active := s.active
	lastErr := s.lastErr
	s.mu.Unlock()

	status := Status{Active: active, LastError: lastErr}

	run, err := s.db.LatestRun(ctx)

	switch {
	case err == nil:
		status.LatestRun = &run
	case errors.Is(err, domain.ErrRunNotFound):
		// no runs yet: LatestRun stays nil
	default:
		return Status{}, err
	}

	counts, err := s.db.QueueCounts(ctx)
	if err != nil {
		return Status{}, err
	}

	status.QueueCounts = counts

	return status, nil
}
