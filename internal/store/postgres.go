package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shrutikmk/startgg-match-insights/internal/db"
	"github.com/shrutikmk/startgg-match-insights/internal/pipeline"
)

// InsertRun persists a bundle to Postgres: one runs row carrying the full
// bundle as JSONB, plus flat per-event / per-player / per-rating rows for
// querying. Row-level insert failures are collected, not fatal; the runs
// row itself is required.
func InsertRun(ctx context.Context, pool *db.Pool, bundle *pipeline.Bundle, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var result Result

	raw, err := json.Marshal(bundle)
	if err != nil {
		return result, fmt.Errorf("marshal bundle: %w", err)
	}

	meta := bundle.Metadata
	err = pool.QueryRow(ctx, "insert_run",
		string(meta.Mode), meta.EventCount, meta.SetCount,
		meta.TsAfter, meta.TsBefore,
		meta.DroppedEvents, meta.FailedSets, raw,
	).Scan(&result.RunID)
	if err != nil {
		return result, fmt.Errorf("insert run: %w", err)
	}

	for _, ev := range bundle.Events {
		_, err := pool.Exec(ctx, "insert_run_event",
			result.RunID, ev.URL, ev.CompositeSlug, ev.TournamentName,
			ev.EventDate, ev.NumEntrants, len(ev.SetIDs), len(ev.Players))
		if err != nil {
			result.AddErrorf("insert event %s: %v", ev.URL, err)
			continue
		}
		result.EventsInserted++
	}

	for _, p := range bundle.Players {
		_, err := pool.Exec(ctx, "insert_run_player",
			result.RunID, p.Player, p.Wins, p.Losses, p.TotalSets, p.Attendance, p.Rating)
		if err != nil {
			result.AddErrorf("insert player %s: %v", p.Player, err)
			continue
		}
		result.PlayersInserted++
	}

	// Stable insert order for the rating rows.
	names := make([]string, 0, len(bundle.Ratings))
	for name := range bundle.Ratings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, err := pool.Exec(ctx, "insert_run_rating", result.RunID, name, bundle.Ratings[name])
		if err != nil {
			result.AddErrorf("insert rating %s: %v", name, err)
			continue
		}
		result.RatingsInserted++
	}

	logger.Info("bundle stored", "summary", result.Summary())
	return result, nil
}

// PruneRuns deletes all but the newest keep runs; child rows cascade.
// Returns the number of runs removed.
func PruneRuns(ctx context.Context, pool *db.Pool, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1")
	}
	tag, err := pool.Exec(ctx, "prune_runs", keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
