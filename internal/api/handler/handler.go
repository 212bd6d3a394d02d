// Package handler provides HTTP handlers for the run-bundle API. Handlers
// query Postgres directly via pgxpool; the bundle is stored as JSONB, so
// most responses are raw byte passthrough.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/shrutikmk/startgg-match-insights/internal/api/respond"
	"github.com/shrutikmk/startgg-match-insights/internal/cache"
	"github.com/shrutikmk/startgg-match-insights/internal/config"
	"github.com/shrutikmk/startgg-match-insights/internal/db"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool  *db.Pool
	cache *cache.Cache
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(pool *db.Pool, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{pool: pool, cache: c, cfg: cfg}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "StartGG Match Insights API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{"status": "healthy"})
}

// HealthCheckCache reports cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.cache.Stats())
}

// GetLatestRun serves the full bundle of the newest run.
func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.latestRunID(w, r)
	if !ok {
		return
	}
	h.passthrough(w, r, "run_bundle", runID, cache.TTLLatest)
}

// GetRun serves the full bundle of one run by ID.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := strconv.ParseInt(chi.URLParam(r, "runID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_RUN_ID", "run ID must be an integer")
		return
	}
	h.passthrough(w, r, "run_bundle", runID, cache.TTLRun)
}

// GetMetadata serves the latest run's metadata record.
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	h.latestSection(w, r, "run_metadata")
}

// GetEvents serves the latest run's per-event rows.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	h.latestSection(w, r, "run_events_json")
}

// GetPlayers serves the latest run's player summary table.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	h.latestSection(w, r, "run_players_json")
}

// GetRatings serves the latest run's rating mapping.
func (h *Handler) GetRatings(w http.ResponseWriter, r *http.Request) {
	h.latestSection(w, r, "run_ratings_json")
}

// --------------------------------------------------------------------------
// Shared plumbing
// --------------------------------------------------------------------------

func (h *Handler) latestSection(w http.ResponseWriter, r *http.Request, stmt string) {
	runID, ok := h.latestRunID(w, r)
	if !ok {
		return
	}
	h.passthrough(w, r, stmt, runID, cache.TTLLatest)
}

// latestRunID resolves the newest run, writing a 404 when none exist.
func (h *Handler) latestRunID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var runID int64
	err := h.pool.QueryRow(r.Context(), "latest_run_id").Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		respond.WriteError(w, http.StatusNotFound, "NO_RUNS", "no runs stored yet")
		return 0, false
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return 0, false
	}
	return runID, true
}

// passthrough serves a prepared-statement JSON result, with the response
// cache and ETag/If-None-Match handling in front of Postgres.
func (h *Handler) passthrough(w http.ResponseWriter, r *http.Request, stmt string, runID int64, ttl time.Duration) {
	key := stmt + ":" + strconv.FormatInt(runID, 10)

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	var data []byte
	err := h.pool.QueryRow(r.Context(), stmt, runID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		respond.WriteError(w, http.StatusNotFound, "RUN_NOT_FOUND", "run does not exist")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}
