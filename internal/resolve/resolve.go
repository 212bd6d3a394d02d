// Package resolve turns normalized event rows into resolved sets: it looks
// up numeric event IDs, pages through set IDs, and fetches per-set
// participant detail through a shared process-lifetime cache.
//
// Failure scope matters here. One event failing to resolve, or one set
// failing to fetch, never aborts the run — the event or set is counted,
// logged, and skipped.
package resolve

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shrutikmk/startgg-match-insights/internal/normalize"
	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
)

// State classifies a fetched set.
type State int

const (
	// StateInvalid — fewer than two slots, or a slot with no resolved
	// entrant. A normal occurrence for unplayed or DQ'd sets; excluded
	// from all downstream aggregation.
	StateInvalid State = iota
	// StateIncomplete — two entrants but at least one score unknown.
	// Counts for nothing in win/loss/rating; the players still exist.
	StateIncomplete
	// StateValid — two entrants, two integer scores.
	StateValid
)

// SetResult is the classified outcome of one set.
type SetResult struct {
	SetID   int64  `json:"set_id"`
	State   State  `json:"state"`
	Player1 string `json:"player1,omitempty"`
	Player2 string `json:"player2,omitempty"`
	Score1  *int   `json:"score1,omitempty"`
	Score2  *int   `json:"score2,omitempty"`
}

// Decided reports whether the set produces a win/loss: two valid entrants
// with two known, unequal scores. Equal scores are treated as undecided
// rather than inheriting a loss for either side.
func (r SetResult) Decided() bool {
	return r.State == StateValid && r.Score1 != nil && r.Score2 != nil && *r.Score1 != *r.Score2
}

// Classify builds a SetResult from the raw participant slots of a set.
func Classify(setID int64, slots []startgg.SetSlot) SetResult {
	if len(slots) < 2 {
		return SetResult{SetID: setID, State: StateInvalid}
	}
	p1, p2 := slots[0].PlayerName(), slots[1].PlayerName()
	if p1 == "" || p2 == "" {
		return SetResult{SetID: setID, State: StateInvalid}
	}
	res := SetResult{
		SetID:   setID,
		Player1: p1,
		Player2: p2,
		Score1:  slots[0].Score(),
		Score2:  slots[1].Score(),
	}
	if res.Score1 == nil || res.Score2 == nil {
		res.State = StateIncomplete
	} else {
		res.State = StateValid
	}
	return res
}

// EventResult is an event row enriched with its resolved sets.
type EventResult struct {
	normalize.EventRow

	EventID int64       `json:"event_id"`
	SetIDs  []int64     `json:"set_ids"`
	Sets    []SetResult `json:"sets"`    // invalid sets are excluded
	Players []string    `json:"players"` // union of names, first-appearance order
}

// Stats counts what the resolver skipped and why, so "skipped due to
// failure" stays distinguishable from "skipped due to filter" upstream.
type Stats struct {
	EventsResolved int
	DroppedEvents  int // event ID resolution failed
	TotalSetIDs    int
	FailedSets     int // detail fetch failed
	InvalidSets    int // classified invalid
	CacheHits      int
}

// Resolver resolves events sequentially through one client and one cache.
type Resolver struct {
	client *startgg.Client
	cache  *Cache
	logger *slog.Logger
}

// New creates a resolver. A nil cache gets a fresh one.
func New(client *startgg.Client, cache *Cache, logger *slog.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, cache: cache, logger: logger}
}

// ResolveEvents processes each event row in order: numeric ID, set IDs,
// then per-set detail. The returned slice preserves row order minus
// dropped events.
func (r *Resolver) ResolveEvents(ctx context.Context, rows []normalize.EventRow) ([]EventResult, Stats, error) {
	var stats Stats
	results := make([]EventResult, 0, len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return results, stats, err
		}

		eventID, err := r.client.GetEventID(ctx, row.CompositeSlug)
		if err != nil {
			var nf *startgg.NotFoundError
			if errors.As(err, &nf) {
				r.logger.Warn("event dropped: slug did not resolve", "slug", row.CompositeSlug)
			} else {
				r.logger.Warn("event dropped: id resolution failed", "slug", row.CompositeSlug, "error", err)
			}
			stats.DroppedEvents++
			continue
		}

		setIDs, err := r.client.GetAllSetIDs(ctx, eventID)
		if err != nil {
			// The event survives with zero sets, mirroring the failure
			// scope of a single set fetch.
			r.logger.Warn("set id fetch failed", "event_id", eventID, "slug", row.CompositeSlug, "error", err)
			setIDs = nil
		}
		stats.TotalSetIDs += len(setIDs)
		r.logger.Info("resolving event",
			"index", i+1, "of", len(rows), "event_id", eventID, "slug", row.CompositeSlug, "sets", len(setIDs))

		result := EventResult{EventRow: row, EventID: eventID, SetIDs: setIDs}
		hitsBefore := r.cache.Hits()
		for j, setID := range setIDs {
			if j == 0 || (j+1)%25 == 0 || j == len(setIDs)-1 {
				r.logger.Debug("set progress", "event_id", eventID, "n", j+1, "total", len(setIDs))
			}
			res, ok := r.resolveSet(ctx, setID)
			if !ok {
				stats.FailedSets++
				continue
			}
			if res.State == StateInvalid {
				stats.InvalidSets++
				continue
			}
			result.Sets = append(result.Sets, res)
		}
		stats.CacheHits += r.cache.Hits() - hitsBefore

		result.Players = playersOf(result.Sets)
		results = append(results, result)
		stats.EventsResolved++
	}

	return results, stats, nil
}

// resolveSet returns the cached classification for a set, fetching and
// caching it on a miss. A fetch failure is logged and reported as no
// result; nothing is cached so a later event may retry the ID.
func (r *Resolver) resolveSet(ctx context.Context, setID int64) (SetResult, bool) {
	if res, ok := r.cache.Get(setID); ok {
		return res, true
	}
	slots, err := r.client.GetSetSlots(ctx, setID)
	if err != nil {
		r.logger.Warn("set fetch failed", "set_id", setID, "error", err)
		return SetResult{}, false
	}
	res := Classify(setID, slots)
	r.cache.Put(setID, res)
	return res, true
}

// playersOf is the union of both participant names across an event's
// non-invalid sets, in first-appearance order. Feeds attendance counting.
func playersOf(sets []SetResult) []string {
	seen := make(map[string]struct{}, len(sets)*2)
	var players []string
	for _, s := range sets {
		for _, name := range [2]string{s.Player1, s.Player2} {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			players = append(players, name)
		}
	}
	return players
}
