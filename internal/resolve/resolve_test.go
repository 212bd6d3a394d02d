package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrutikmk/startgg-match-insights/internal/normalize"
	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
)

// fakeAPI is a scripted start.gg backend. It routes on the GraphQL operation
// name and counts per-operation calls.
type fakeAPI struct {
	eventIDs map[string]int64   // composite slug -> id, missing means null event
	setIDs   map[int64][]int64  // event id -> set ids
	slots    map[int64]string   // set id -> slots JSON, missing means HTTP 500
	detail   map[int64]int      // set id -> detail fetch count
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		eventIDs: make(map[string]int64),
		setIDs:   make(map[int64][]int64),
		slots:    make(map[int64]string),
		detail:   make(map[int64]int),
	}
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case strings.Contains(req.Query, "GetEventId"):
			slug := req.Variables["slug"].(string)
			id, ok := f.eventIDs[slug]
			if !ok {
				fmt.Fprint(w, `{"data": {"event": null}}`)
				return
			}
			fmt.Fprintf(w, `{"data": {"event": {"id": %d, "name": "Singles"}}}`, id)

		case strings.Contains(req.Query, "EventSets"):
			eventID := int64(req.Variables["eventId"].(float64))
			ids, _ := json.Marshal(setNodes(f.setIDs[eventID]))
			fmt.Fprintf(w, `{"data": {"event": {"sets": {"pageInfo": {"totalPages": 1}, "nodes": %s}}}}`, ids)

		case strings.Contains(req.Query, "SetDetail"):
			setID := int64(req.Variables["setId"].(float64))
			f.detail[setID]++
			slots, ok := f.slots[setID]
			if !ok {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `{"data": {"set": {"slots": %s}}}`, slots)

		default:
			t.Errorf("unexpected query: %s", req.Query)
		}
	}
}

func setNodes(ids []int64) []map[string]int64 {
	nodes := make([]map[string]int64, len(ids))
	for i, id := range ids {
		nodes[i] = map[string]int64{"id": id}
	}
	return nodes
}

func slotsJSON(p1 string, s1 any, p2 string, s2 any) string {
	slot := func(name string, score any) string {
		sc, _ := json.Marshal(score)
		return fmt.Sprintf(`{
			"entrant": {"participants": [{"player": {"gamerTag": %q, "prefix": ""}}]},
			"standing": {"stats": {"score": {"value": %s}}}
		}`, name, sc)
	}
	return "[" + slot(p1, s1) + "," + slot(p2, s2) + "]"
}

func newResolver(t *testing.T, api *fakeAPI) *Resolver {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	client := startgg.NewClient(srv.URL, "test-key", time.Millisecond, nil)
	return New(client, nil, nil)
}

func eventRow(slug string) normalize.EventRow {
	return normalize.EventRow{
		TournamentSlug: "tournament/" + slug,
		EventSlug:      "tournament/" + slug + "/event/singles",
		CompositeSlug:  "tournament/" + slug + "/event/singles",
		URL:            "start.gg/tournament/" + slug + "/event/singles",
	}
}

// --------------------------------------------------------------------------
// Classification
// --------------------------------------------------------------------------

func TestClassifyInvalid(t *testing.T) {
	assert.Equal(t, StateInvalid, Classify(1, nil).State)

	var oneSlot []startgg.SetSlot
	require.NoError(t, json.Unmarshal([]byte(`[{"entrant": null, "standing": null}]`), &oneSlot))
	assert.Equal(t, StateInvalid, Classify(1, oneSlot).State)

	var emptyEntrant []startgg.SetSlot
	require.NoError(t, json.Unmarshal([]byte(slotsJSON("a", 2, "", 0)), &emptyEntrant))
	emptyEntrant[1].Entrant = nil
	assert.Equal(t, StateInvalid, Classify(1, emptyEntrant).State)
}

func TestClassifyIncomplete(t *testing.T) {
	var slots []startgg.SetSlot
	require.NoError(t, json.Unmarshal([]byte(slotsJSON("a", 2, "b", nil)), &slots))

	res := Classify(7, slots)
	assert.Equal(t, StateIncomplete, res.State)
	assert.Equal(t, "a", res.Player1)
	assert.Equal(t, "b", res.Player2)
	assert.Nil(t, res.Score2)
	assert.False(t, res.Decided())
}

func TestClassifyValidAndDecided(t *testing.T) {
	var slots []startgg.SetSlot
	require.NoError(t, json.Unmarshal([]byte(slotsJSON("a", 3, "b", 1)), &slots))

	res := Classify(7, slots)
	assert.Equal(t, StateValid, res.State)
	assert.True(t, res.Decided())

	var tied []startgg.SetSlot
	require.NoError(t, json.Unmarshal([]byte(slotsJSON("a", 1, "b", 1)), &tied))
	res = Classify(8, tied)
	assert.Equal(t, StateValid, res.State)
	assert.False(t, res.Decided(), "equal scores are undecided")
}

// --------------------------------------------------------------------------
// Event resolution
// --------------------------------------------------------------------------

func TestResolveEventsHappyPath(t *testing.T) {
	api := newFakeAPI()
	api.eventIDs["tournament/weekly/event/singles"] = 100
	api.setIDs[100] = []int64{1, 2, 3}
	api.slots[1] = slotsJSON("alice", 3, "bob", 1)
	api.slots[2] = slotsJSON("bob", 2, "carol", 3)
	api.slots[3] = `[{"entrant": null, "standing": null}, {"entrant": null, "standing": null}]`

	r := newResolver(t, api)
	results, stats, err := r.ResolveEvents(context.Background(), []normalize.EventRow{eventRow("weekly")})
	require.NoError(t, err)
	require.Len(t, results, 1)

	ev := results[0]
	assert.Equal(t, int64(100), ev.EventID)
	assert.Equal(t, []int64{1, 2, 3}, ev.SetIDs)
	require.Len(t, ev.Sets, 2, "invalid sets are excluded")
	assert.Equal(t, []string{"alice", "bob", "carol"}, ev.Players)

	assert.Equal(t, 1, stats.EventsResolved)
	assert.Equal(t, 3, stats.TotalSetIDs)
	assert.Equal(t, 1, stats.InvalidSets)
	assert.Equal(t, 0, stats.DroppedEvents)
}

func TestResolveEventsDropsUnresolvableSlug(t *testing.T) {
	api := newFakeAPI()
	api.eventIDs["tournament/real/event/singles"] = 200
	api.setIDs[200] = []int64{10}
	api.slots[10] = slotsJSON("a", 2, "b", 0)

	r := newResolver(t, api)
	rows := []normalize.EventRow{eventRow("ghost"), eventRow("real")}
	results, stats, err := r.ResolveEvents(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, results, 1, "one bad slug never aborts the run")
	assert.Equal(t, int64(200), results[0].EventID)
	assert.Equal(t, 1, stats.DroppedEvents)
	assert.Equal(t, 1, stats.EventsResolved)
}

func TestResolveEventsCachesSetDetailAcrossEvents(t *testing.T) {
	api := newFakeAPI()
	api.eventIDs["tournament/a/event/singles"] = 300
	api.eventIDs["tournament/b/event/singles"] = 301
	// Both events report the same set ID; detail must be fetched once.
	api.setIDs[300] = []int64{50}
	api.setIDs[301] = []int64{50}
	api.slots[50] = slotsJSON("x", 3, "y", 2)

	r := newResolver(t, api)
	results, stats, err := r.ResolveEvents(context.Background(),
		[]normalize.EventRow{eventRow("a"), eventRow("b")})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, api.detail[50], "at most one remote fetch per set id")
	assert.Equal(t, 1, stats.CacheHits)
	assert.Equal(t, results[0].Sets, results[1].Sets)
}

func TestResolveEventsFailedSetNotCached(t *testing.T) {
	api := newFakeAPI()
	api.eventIDs["tournament/a/event/singles"] = 400
	api.setIDs[400] = []int64{60, 61}
	api.slots[61] = slotsJSON("a", 2, "b", 1)
	// set 60 has no scripted slots, so every fetch fails with HTTP 500.

	r := newResolver(t, api)
	results, stats, err := r.ResolveEvents(context.Background(), []normalize.EventRow{eventRow("a")})
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Len(t, results[0].Sets, 1)
	assert.Equal(t, int64(61), results[0].Sets[0].SetID)
	assert.Equal(t, 1, stats.FailedSets)
	assert.Equal(t, 3, api.detail[60], "failed fetch retried, never cached")
}

func TestResolveEventsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(startgg.NewClient("http://127.0.0.1:0", "k", time.Millisecond, nil), nil, nil)
	_, _, err := r.ResolveEvents(ctx, []normalize.EventRow{eventRow("a")})
	assert.ErrorIs(t, err, context.Canceled)
}
