package startgg

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	discoveryPerPage  = 50
	discoveryMaxPages = 10 // safety cap per region against pathological result sets
)

// Region is a discovery search parameter: a coordinate pair and a radius
// around it, both in the string form the API expects.
type Region struct {
	Coordinates string // "lat, lon"
	Radius      string // e.g. "70mi"
}

// Tournament is one raw discovery result. Immutable once fetched.
type Tournament struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	City    string         `json:"city"`
	Slug    string         `json:"slug"`
	StartAt *int64         `json:"startAt"`
	Events  []EventSummary `json:"events"`
}

// EventSummary is a nested event record under a tournament.
// NumEntrants stays raw: the API has returned numbers, strings, and null
// here, and the normalizer owns the coercion rules.
type EventSummary struct {
	Slug        string          `json:"slug"`
	NumEntrants json.RawMessage `json:"numEntrants"`
	Videogame   struct {
		Name string `json:"name"`
	} `json:"videogame"`
}

// DiscoverTournaments pages through tournament search results for each
// region in order and concatenates everything into one raw record set.
// A tournament inside several regions' radii legitimately repeats here;
// deduplication is the normalizer's job, keyed per event.
//
// Nodes are returned as raw JSON: the tournament shape is not contractually
// fixed and the normalizer owns shape detection.
//
// A page failure (after the client's retries) is fatal: discovery is a
// required step and the run cannot degrade past it.
func (c *Client) DiscoverTournaments(ctx context.Context, regions []Region, after, before int64) ([]json.RawMessage, error) {
	var nodes []json.RawMessage

	for i, region := range regions {
		c.logger.Info("discovering tournaments", "region", i+1, "coordinates", region.Coordinates, "radius", region.Radius)

		for page := 1; page <= discoveryMaxPages; page++ {
			var resp struct {
				Tournaments struct {
					Nodes []json.RawMessage `json:"nodes"`
				} `json:"tournaments"`
			}
			err := c.Do(ctx, discoverTournamentsQuery, map[string]any{
				"page":        page,
				"perPage":     discoveryPerPage,
				"coordinates": region.Coordinates,
				"radius":      region.Radius,
				"after":       after,
				"before":      before,
			}, &resp)
			if err != nil {
				return nil, fmt.Errorf("discover region %d page %d: %w", i+1, page, err)
			}

			c.logger.Info("discovery page", "region", i+1, "page", page, "tournaments", len(resp.Tournaments.Nodes))
			if len(resp.Tournaments.Nodes) == 0 {
				break
			}
			nodes = append(nodes, resp.Tournaments.Nodes...)
		}
	}

	c.logger.Info("discovery complete", "tournaments", len(nodes))
	return nodes, nil
}
