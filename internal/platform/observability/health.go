// Package observability provides health checks and metrics for the application.
//
// The Server exposes:
//   - /healthz: Liveness probe (always returns OK)
//   - /readyz: Readiness probe (checks database connectivity)
//   - /metrics: Prometheus metrics endpoint
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lueurxax/newscrawl/internal/storage"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Metrics are the crawl engine's Prometheus gauges/counters, grounded on
// the deleted digest bot's own crawler health metrics.
var (
	PagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_processed_total",
		Help: "Total pages processed across all runs.",
	})
	ArticlesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_articles_created_total",
		Help: "Total new article rows created across all runs.",
	})
	QueuedURLs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_queued_urls_total",
		Help: "Total URLs enqueued across all runs.",
	})
	RunActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crawler_run_active",
		Help: "1 if a crawl run is currently executing, else 0.",
	})
)

// Server serves liveness/readiness/metrics endpoints for the crawler
// process.
type Server struct {
	db     *storage.DB
	port   int
	logger *zerolog.Logger
	ready  atomic.Bool
}

// NewServer builds a health Server.
func NewServer(db *storage.DB, port int, logger *zerolog.Logger) *Server {
	return &Server{db: db, port: port, logger: logger}
}

// SetReady marks the service as ready (or not) for /readyz.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprint(w, "not ready")

			return
		}

		if err := s.db.Pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "DB error: %v", err)

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("Health check server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
