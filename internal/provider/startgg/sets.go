package startgg

import (
	"context"
	"encoding/json"
	"fmt"
)

const setsPerPage = 40

// SetSlot is one participant slot of a set, as the API returns it. Either
// pointer chain may be nil for unplayed or DQ'd sets.
type SetSlot struct {
	Entrant *struct {
		Participants []struct {
			Player struct {
				GamerTag string `json:"gamerTag"`
				Prefix   string `json:"prefix"`
			} `json:"player"`
		} `json:"participants"`
	} `json:"entrant"`
	Standing *struct {
		Stats *struct {
			Score *struct {
				Value json.RawMessage `json:"value"`
			} `json:"score"`
		} `json:"stats"`
	} `json:"standing"`
}

// PlayerName builds the display name for the slot's entrant:
// "prefix | tag" when a sponsor prefix is present, else just the tag.
// Returns "" when the slot has no resolved entrant.
func (s *SetSlot) PlayerName() string {
	if s.Entrant == nil || len(s.Entrant.Participants) == 0 {
		return ""
	}
	p := s.Entrant.Participants[0].Player
	if p.Prefix == "" {
		return p.GamerTag
	}
	return p.Prefix + " | " + p.GamerTag
}

// Score returns the slot's integer score, or nil when the score is missing
// or not an integer. Negative scores (DQs report -1) still count as scores.
func (s *SetSlot) Score() *int {
	if s.Standing == nil || s.Standing.Stats == nil || s.Standing.Stats.Score == nil {
		return nil
	}
	raw := s.Standing.Stats.Score.Value
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}

// GetEventID resolves a composite slug ("tournament/x/event/y") to the
// numeric event ID. Returns *NotFoundError when the slug resolves to
// nothing — callers drop that single event and keep going.
func (c *Client) GetEventID(ctx context.Context, slug string) (int64, error) {
	var resp struct {
		Event *struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"event"`
	}
	if err := c.Do(ctx, eventIDQuery, map[string]any{"slug": slug}, &resp); err != nil {
		return 0, fmt.Errorf("resolve event id for %q: %w", slug, err)
	}
	if resp.Event == nil || resp.Event.ID == 0 {
		return 0, &NotFoundError{Kind: "event", Slug: slug}
	}
	return resp.Event.ID, nil
}

// GetAllSetIDs pages through every set ID of an event. The first page
// reports the total page count; all pages are consumed in order.
func (c *Client) GetAllSetIDs(ctx context.Context, eventID int64) ([]int64, error) {
	var setIDs []int64

	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		var resp struct {
			Event *struct {
				Sets struct {
					PageInfo struct {
						TotalPages int `json:"totalPages"`
					} `json:"pageInfo"`
					Nodes []struct {
						ID int64 `json:"id"`
					} `json:"nodes"`
				} `json:"sets"`
			} `json:"event"`
		}
		err := c.Do(ctx, setsPageQuery, map[string]any{
			"eventId": eventID,
			"page":    page,
			"perPage": setsPerPage,
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("fetch set ids for event %d page %d: %w", eventID, page, err)
		}
		if resp.Event == nil {
			break
		}
		if page == 1 && resp.Event.Sets.PageInfo.TotalPages > 0 {
			totalPages = resp.Event.Sets.PageInfo.TotalPages
		}
		for _, n := range resp.Event.Sets.Nodes {
			if n.ID != 0 {
				setIDs = append(setIDs, n.ID)
			}
		}
	}
	return setIDs, nil
}

// GetSetSlots fetches the raw participant slots of one set.
func (c *Client) GetSetSlots(ctx context.Context, setID int64) ([]SetSlot, error) {
	var resp struct {
		Set *struct {
			Slots []SetSlot `json:"slots"`
		} `json:"set"`
	}
	if err := c.Do(ctx, setDetailQuery, map[string]any{"setId": setID}, &resp); err != nil {
		return nil, fmt.Errorf("fetch set %d: %w", setID, err)
	}
	if resp.Set == nil {
		return nil, nil
	}
	return resp.Set.Slots, nil
}
