// Package normalize flattens raw tournament discovery records into one row
// per event, applies the domain filter, and derives the stable identifiers
// the resolver needs.
//
// The upstream payload shape is not contractually fixed: tournaments usually
// arrive with a nested events list, but pre-flattened "events.*" rows and
// outright untyped records have been observed. Each shape gets its own
// normalization function; Rows detects and dispatches.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
)

// Options configures the event filter.
type Options struct {
	GameTitle   string // exact videogame name match
	MinEntrants int    // events below this entrant count are dropped
}

// EventRow is one normalized row per (tournament, event) pair.
type EventRow struct {
	TournamentName string `json:"tournament_name"`
	TournamentSlug string `json:"tournament_slug"`
	City           string `json:"city"`
	StartAt        *int64 `json:"start_at"`

	EventSlug   string `json:"event_slug"` // full "tournament/x/event/y" slug
	NumEntrants int    `json:"num_entrants"`
	Videogame   string `json:"videogame"`

	// Derived fields.
	URL           string `json:"url"`            // "start.gg/" + EventSlug; the dedup key
	EventSuffix   string `json:"event_suffix"`   // last path segment of EventSlug
	CompositeSlug string `json:"composite_slug"` // resolves to the numeric event ID
	StartAtISO    string `json:"start_at_iso"`   // empty when derivation fails
	EventDate     string `json:"event_date"`     // "YYYY-MM-DD", empty when derivation fails
}

// Rows normalizes a raw discovery record set into filtered, deduplicated
// event rows. Shape detection picks the variant; the filter and dedup rules
// are shape-independent.
func Rows(records RecordSet, opts Options, logger *slog.Logger) []EventRow {
	if logger == nil {
		logger = slog.Default()
	}

	var rows []EventRow
	switch records.Shape {
	case ShapeNested:
		logger.Info("normalize: nested events shape", "tournaments", len(records.Nested))
		rows = fromNested(records.Nested)
	case ShapeFlat:
		logger.Info("normalize: pre-flattened events.* shape", "rows", len(records.Flat))
		rows = fromFlat(records.Flat)
	default:
		logger.Warn("normalize: unrecognized shape, re-expanding raw records", "records", len(records.Raw))
		rows = fromRaw(records.Raw)
	}

	kept := make([]EventRow, 0, len(rows))
	for _, row := range rows {
		if !keep(row, opts) {
			logger.Debug("normalize: filtered out", "event", row.EventSlug, "videogame", row.Videogame, "entrants", row.NumEntrants)
			continue
		}
		kept = append(kept, derive(row))
	}

	deduped := Dedupe(kept)
	logger.Info("normalize: event rows ready",
		"flattened", len(rows), "kept", len(kept), "deduped", len(deduped),
		"min_entrants", opts.MinEntrants)
	return deduped
}

// fromNested expands tournaments carrying native nested event lists.
func fromNested(tournaments []startgg.Tournament) []EventRow {
	var rows []EventRow
	for _, t := range tournaments {
		for _, ev := range t.Events {
			rows = append(rows, EventRow{
				TournamentName: t.Name,
				TournamentSlug: t.Slug,
				City:           t.City,
				StartAt:        t.StartAt,
				EventSlug:      ev.Slug,
				NumEntrants:    coerceInt(ev.NumEntrants),
				Videogame:      ev.Videogame.Name,
			})
		}
	}
	return rows
}

// fromFlat maps rows that already arrived one-per-event.
func fromFlat(flat []FlatRow) []EventRow {
	rows := make([]EventRow, 0, len(flat))
	for _, f := range flat {
		rows = append(rows, EventRow{
			TournamentName: f.Name,
			TournamentSlug: f.TournamentSlug,
			City:           f.City,
			StartAt:        f.StartAt,
			EventSlug:      f.EventSlug,
			NumEntrants:    coerceInt(f.NumEntrants),
			Videogame:      f.VideogameName,
		})
	}
	return rows
}

// fromRaw is the worst-case fallback: re-expand untyped records by hand.
func fromRaw(records []map[string]any) []EventRow {
	var rows []EventRow
	for _, rec := range records {
		base := EventRow{
			TournamentName: coerceString(rec["name"]),
			TournamentSlug: coerceString(rec["slug"]),
			City:           coerceString(rec["city"]),
			StartAt:        coerceUnix(rec["startAt"]),
		}
		events, ok := rec["events"].([]any)
		if !ok {
			continue
		}
		for _, raw := range events {
			ev, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			row := base
			row.EventSlug = coerceString(ev["slug"])
			row.NumEntrants = coerceIntAny(ev["numEntrants"])
			if vg, ok := ev["videogame"].(map[string]any); ok {
				row.Videogame = coerceString(vg["name"])
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// keep applies the domain filter: exact title match and minimum entrants.
// Unparseable entrant counts coerced to 0 fall below any sane minimum.
func keep(row EventRow, opts Options) bool {
	return row.Videogame == opts.GameTitle && row.NumEntrants >= opts.MinEntrants
}

// derive fills the stable identifiers and readable dates for a kept row.
// Date derivation failures leave the fields empty; they never drop the row.
func derive(row EventRow) EventRow {
	row.URL = "start.gg/" + row.EventSlug
	row.EventSuffix = eventSuffix(row.EventSlug)
	row.CompositeSlug = fmt.Sprintf("%s/event/%s", row.TournamentSlug, row.EventSuffix)
	if row.StartAt != nil {
		t := time.Unix(*row.StartAt, 0)
		row.StartAtISO = t.UTC().Format(time.RFC3339)
		row.EventDate = t.Format("2006-01-02")
	}
	return row
}

// eventSuffix returns the last path segment of an event slug.
func eventSuffix(slug string) string {
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		return slug[i+1:]
	}
	return slug
}

// Dedupe removes rows sharing a derived URL, keeping the first occurrence.
// Idempotent: already-deduplicated input passes through unchanged.
func Dedupe(rows []EventRow) []EventRow {
	seen := make(map[string]struct{}, len(rows))
	out := make([]EventRow, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.URL]; dup {
			continue
		}
		seen[row.URL] = struct{}{}
		out = append(out, row)
	}
	return out
}
