package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
)

// Default NorCal discovery regions: SF Bay and Sacramento.
var defaultRegions = []startgg.Region{
	{Coordinates: "37.77151615492457, -122.41563048985462", Radius: "70mi"},
	{Coordinates: "38.57608096237729, -121.49183616631059", Radius: "40mi"},
}

const dateFormat = "2006-01-02"

var eventURLRe = regexp.MustCompile(`(?i)start\.gg/tournament/([^/]+)/event/([^/?#]+)`)

// parseCoords turns repeated "LAT,LON:RADIUS" flags into regions.
func parseCoords(vals []string) ([]startgg.Region, error) {
	regions := make([]startgg.Region, 0, len(vals))
	for _, v := range vals {
		latlon, radius, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --coords %q: expected 'LAT,LON:RADIUS'", v)
		}
		lat, lon, ok := strings.Cut(latlon, ",")
		if !ok {
			return nil, fmt.Errorf("invalid --coords %q: expected 'LAT,LON:RADIUS'", v)
		}
		regions = append(regions, startgg.Region{
			Coordinates: fmt.Sprintf("%s, %s", strings.TrimSpace(lat), strings.TrimSpace(lon)),
			Radius:      strings.TrimSpace(radius),
		})
	}
	return regions, nil
}

// parseDate parses an inclusive "YYYY-MM-DD" bound to unix seconds at local
// midnight. Empty input means unbounded.
func parseDate(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateFormat, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	ts := t.Unix()
	return &ts, nil
}

// validateWindow rejects an inverted date range.
func validateWindow(after, before *int64) error {
	if after != nil && before != nil && *after > *before {
		return fmt.Errorf("start date is after end date")
	}
	return nil
}

// slugFromURL extracts a composite "tournament/x/event/y" slug from a
// start.gg event URL.
func slugFromURL(url string) (string, error) {
	m := eventURLRe.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("cannot extract an event slug from %q", url)
	}
	return fmt.Sprintf("tournament/%s/event/%s", m[1], m[2]), nil
}
