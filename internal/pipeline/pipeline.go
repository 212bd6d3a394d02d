// Package pipeline wires discovery, normalization, set resolution, and the
// rating engine into one run producing a result bundle.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shrutikmk/startgg-match-insights/internal/normalize"
	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
	"github.com/shrutikmk/startgg-match-insights/internal/rating"
	"github.com/shrutikmk/startgg-match-insights/internal/resolve"
)

// Mode names how the event list was built.
type Mode string

const (
	ModeDiscovery Mode = "discovery"
	ModeDirect    Mode = "direct"
)

// Options configures one pipeline run. Either Regions (discovery mode) or
// EventSlugs (direct mode) must be set; EventSlugs wins when both are.
type Options struct {
	Regions []startgg.Region
	After   *int64 // inclusive unix bound, nil = unbounded
	Before  *int64

	EventSlugs []string // composite "tournament/x/event/y" slugs

	GameTitle   string
	MinEntrants int
}

// Mode reports the operating mode the options select.
func (o Options) Mode() Mode {
	if len(o.EventSlugs) > 0 {
		return ModeDirect
	}
	return ModeDiscovery
}

// Metadata describes a completed run: mode, counts, the requested window,
// and how much was skipped due to failure (as opposed to filtered out).
type Metadata struct {
	Mode          Mode   `json:"mode"`
	EventCount    int    `json:"event_count"`
	SetCount      int    `json:"set_count"` // total set IDs across events
	TsAfter       *int64 `json:"ts_after"`
	TsBefore      *int64 `json:"ts_before"`
	TsAfterISO    string `json:"ts_after_iso"`
	TsBeforeISO   string `json:"ts_before_iso"`
	DroppedEvents int    `json:"dropped_events"`
	FailedSets    int    `json:"failed_sets"`
	InvalidSets   int    `json:"invalid_sets"`
	CacheHits     int    `json:"cache_hits"`
	GeneratedAt   string `json:"generated_at"`
}

// Bundle is the structured result of one run.
type Bundle struct {
	Events   []resolve.EventResult  `json:"events"`
	Players  []rating.PlayerSummary `json:"players"`
	Ratings  rating.Table           `json:"ratings"`
	Metadata Metadata               `json:"metadata"`
}

// Run executes the full pipeline through one client instance. Discovery
// failures abort the run; per-event and per-set failures degrade it, with
// the drop counts surfaced in the bundle metadata. An empty discovery
// produces an empty bundle, not an error.
func Run(ctx context.Context, client *startgg.Client, opts Options, logger *slog.Logger) (*Bundle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mode := opts.Mode()
	rows, err := eventRows(ctx, client, opts, logger)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(client, resolve.NewCache(), logger)
	events, stats, err := resolver.ResolveEvents(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("resolve events: %w", err)
	}

	engine := rating.NewEngine()
	playersPerEvent := make([][]string, 0, len(events))
	for _, ev := range events {
		engine.Seed(ev.Players)
		playersPerEvent = append(playersPerEvent, ev.Players)
		for _, s := range ev.Sets {
			if s.Decided() {
				engine.Record(s.Player1, s.Player2, *s.Score1, *s.Score2)
			}
		}
	}

	attendance := rating.Attendance(playersPerEvent)
	players := engine.Summaries(attendance)
	logger.Info("rating complete",
		"players_rated", len(engine.Table()), "summary_rows", len(players),
		"events", len(events), "dropped_events", stats.DroppedEvents,
		"failed_sets", stats.FailedSets, "cache_hits", stats.CacheHits)

	return &Bundle{
		Events:  events,
		Players: players,
		Ratings: engine.Table(),
		Metadata: Metadata{
			Mode:          mode,
			EventCount:    len(events),
			SetCount:      stats.TotalSetIDs,
			TsAfter:       opts.After,
			TsBefore:      opts.Before,
			TsAfterISO:    tsISO(opts.After),
			TsBeforeISO:   tsISO(opts.Before),
			DroppedEvents: stats.DroppedEvents,
			FailedSets:    stats.FailedSets,
			InvalidSets:   stats.InvalidSets,
			CacheHits:     stats.CacheHits,
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// eventRows builds the event list for the selected mode.
func eventRows(ctx context.Context, client *startgg.Client, opts Options, logger *slog.Logger) ([]normalize.EventRow, error) {
	if mode := opts.Mode(); mode == ModeDirect {
		logger.Info("direct mode", "event_slugs", len(opts.EventSlugs))
		rows := make([]normalize.EventRow, 0, len(opts.EventSlugs))
		for _, slug := range opts.EventSlugs {
			rows = append(rows, normalize.EventRow{
				CompositeSlug: slug,
				URL:           "start.gg/" + slug,
			})
		}
		return normalize.Dedupe(rows), nil
	}

	logger.Info("discovery window",
		"after", deref(opts.After), "after_iso", tsISO(opts.After),
		"before", deref(opts.Before), "before_iso", tsISO(opts.Before))

	nodes, err := client.DiscoverTournaments(ctx, opts.Regions, deref(opts.After), deref(opts.Before))
	if err != nil {
		return nil, fmt.Errorf("discover tournaments: %w", err)
	}

	records := normalize.Detect(nodes)
	return normalize.Rows(records, normalize.Options{
		GameTitle:   opts.GameTitle,
		MinEntrants: opts.MinEntrants,
	}, logger), nil
}

// tsISO renders an optional unix bound for metadata; empty when unbounded.
func tsISO(ts *int64) string {
	if ts == nil {
		return ""
	}
	return time.Unix(*ts, 0).UTC().Format(time.RFC3339)
}

func deref(ts *int64) int64 {
	if ts == nil {
		return 0
	}
	return *ts
}
