// Package adminapi is the thin HTTP translation layer over the engine,
// supervisor, and storage repositories: bearer-token auth, run trigger,
// config and seed CRUD, and CSV export. It owns no business logic.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/newscrawl/internal/csvexport"
	"github.com/lueurxax/newscrawl/internal/domain"
	"github.com/lueurxax/newscrawl/internal/storage"
	"github.com/lueurxax/newscrawl/internal/supervisor"
)

const readHeaderTimeout = 10 * time.Second

// Server wires the admin HTTP surface to its collaborators.
type Server struct {
	db         *storage.DB
	supervisor *supervisor.Supervisor
	logger     *zerolog.Logger
	authToken  string
}

// NewServer builds a Server. authToken is the bearer token required of
// every request; an empty token disables auth entirely (local dev only).
func NewServer(db *storage.DB, sup *supervisor.Supervisor, logger *zerolog.Logger, authToken string) *Server {
	return &Server{db: db, supervisor: sup, logger: logger, authToken: authToken}
}

// Handler builds the ServeMux for this surface, ready to mount under an
// http.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", s.withAuth(s.handleStatus))
	mux.HandleFunc("/run", s.withAuth(s.handleRun))
	mux.HandleFunc("/config", s.withAuth(s.handleConfig))
	mux.HandleFunc("/seeds", s.withAuth(s.handleSeeds))
	mux.HandleFunc("/export/articles.csv", s.withAuth(s.handleExport))

	return mux
}

const shutdownTimeout = 5 * time.Second

// Start runs the admin HTTP surface on addr until ctx is canceled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", addr).Msg("admin HTTP surface starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin http server error: %w", err)
	}

	return nil
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token != s.authToken {
			writeJSONError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status, err := s.supervisor.LiveStatus(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("live status failed")
		writeJSONError(w, http.StatusInternalServerError, err)

		return
	}

	writeJSON(w, http.StatusOK, status)
}

type runRequest struct {
	RunID string `json:"run_id"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req runRequest

	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if s.supervisor.StartAsync(req.RunID) {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
		return
	}

	s.logger.Info().Err(domain.ErrRunAlreadyActive).Msg("run trigger rejected")
	writeJSON(w, http.StatusConflict, map[string]string{"status": "already_running"})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.db.GetOrCreateConfig(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, cfg)
	case http.MethodPut:
		var patch domain.CrawlerConfig

		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSONError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}

		cfg, err := s.db.UpdateConfig(r.Context(), patch)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, cfg)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type createSeedRequest struct {
	URL      string `json:"url"`
	ConfigID string `json:"config_id"`
	IsActive *bool  `json:"is_active"`
}

func (s *Server) handleSeeds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		seeds, err := s.db.ListSeeds(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, seeds)
	case http.MethodPost:
		var req createSeedRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
			writeJSONError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		seed, err := s.db.CreateSeed(r.Context(), req.URL, req.ConfigID, isActive)
		if err != nil {
			if errors.Is(err, domain.ErrSeedURLExists) {
				writeJSONError(w, http.StatusConflict, err)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)

			return
		}

		writeJSON(w, http.StatusCreated, seed)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer

	rows, err := csvexport.WriteArticles(r.Context(), s.db, &buf)
	if err != nil {
		s.logger.Error().Err(err).Msg("csv export failed")
		writeJSONError(w, http.StatusInternalServerError, err)

		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="articles.csv"`)
	w.Header().Set("X-Exported-Rows", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
