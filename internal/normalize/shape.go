package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
)

// Shape tags the detected layout of a raw discovery record set.
type Shape int

const (
	// ShapeNested — tournaments with a native nested "events" list.
	ShapeNested Shape = iota
	// ShapeFlat — one row per event with pre-flattened "events.*" keys.
	ShapeFlat
	// ShapeRaw — neither recognized; records are re-expanded by hand.
	ShapeRaw
)

// FlatRow is the pre-flattened variant: tournament fields plus dotted
// event keys on a single record.
type FlatRow struct {
	TournamentSlug string          `json:"slug"`
	Name           string          `json:"name"`
	City           string          `json:"city"`
	StartAt        *int64          `json:"startAt"`
	EventSlug      string          `json:"events.slug"`
	NumEntrants    json.RawMessage `json:"events.numEntrants"`
	VideogameName  string          `json:"events.videogame.name"`
}

// RecordSet is a raw discovery payload with its detected shape. Exactly one
// of the three slices is populated, matching Shape.
type RecordSet struct {
	Shape  Shape
	Nested []startgg.Tournament
	Flat   []FlatRow
	Raw    []map[string]any
}

// Detect inspects raw tournament nodes and decodes them into the matching
// shape variant. Detection looks at the first record's keys: a native
// "events" list means nested, a dotted "events.slug" key means flat,
// anything else falls back to raw re-expansion.
func Detect(nodes []json.RawMessage) RecordSet {
	if len(nodes) == 0 {
		return RecordSet{Shape: ShapeNested}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(nodes[0], &probe); err != nil {
		return decodeRaw(nodes)
	}

	if raw, ok := probe["events"]; ok && looksLikeList(raw) {
		if rs, ok := decodeNested(nodes); ok {
			return rs
		}
		return decodeRaw(nodes)
	}
	if _, ok := probe["events.slug"]; ok {
		if rs, ok := decodeFlat(nodes); ok {
			return rs
		}
	}
	return decodeRaw(nodes)
}

func looksLikeList(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '['
		}
	}
	return false
}

func decodeNested(nodes []json.RawMessage) (RecordSet, bool) {
	nested := make([]startgg.Tournament, 0, len(nodes))
	for _, node := range nodes {
		var t startgg.Tournament
		if err := json.Unmarshal(node, &t); err != nil {
			return RecordSet{}, false
		}
		nested = append(nested, t)
	}
	return RecordSet{Shape: ShapeNested, Nested: nested}, true
}

func decodeFlat(nodes []json.RawMessage) (RecordSet, bool) {
	flat := make([]FlatRow, 0, len(nodes))
	for _, node := range nodes {
		var f FlatRow
		if err := json.Unmarshal(node, &f); err != nil {
			return RecordSet{}, false
		}
		flat = append(flat, f)
	}
	return RecordSet{Shape: ShapeFlat, Flat: flat}, true
}

func decodeRaw(nodes []json.RawMessage) RecordSet {
	raw := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		var m map[string]any
		if err := json.Unmarshal(node, &m); err != nil {
			continue
		}
		raw = append(raw, m)
	}
	return RecordSet{Shape: ShapeRaw, Raw: raw}
}

// --------------------------------------------------------------------------
// Coercion helpers
// --------------------------------------------------------------------------

// coerceInt turns a raw JSON entrant count into an int. The API has returned
// numbers, quoted numbers, and null here; anything unparseable becomes 0 so
// the minimum-entrants filter excludes it.
func coerceInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return int(v)
		}
	}
	return 0
}

// coerceIntAny is coerceInt for already-decoded values.
func coerceIntAny(val any) int {
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func coerceString(val any) string {
	s, _ := val.(string)
	return s
}

func coerceUnix(val any) *int64 {
	switch v := val.(type) {
	case float64:
		ts := int64(v)
		return &ts
	case int64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			ts := int64(f)
			return &ts
		}
	}
	return nil
}
