package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryFor(t *testing.T, rows []PlayerSummary, player string) PlayerSummary {
	t.Helper()
	for _, row := range rows {
		if row.Player == player {
			return row
		}
	}
	t.Fatalf("no summary row for %q", player)
	return PlayerSummary{}
}

func TestRecordEqualScoresIgnored(t *testing.T) {
	e := NewEngine()
	e.Record("a", "b", 1, 1)

	assert.Empty(t, e.Table(), "undecided sets must not touch ratings")
	assert.Empty(t, e.Summaries(nil), "undecided sets produce no summary rows")
}

func TestRecordAggregates(t *testing.T) {
	e := NewEngine()
	e.Record("a", "b", 3, 0)
	e.Record("a", "b", 3, 2)
	e.Record("c", "a", 2, 0) // winner listed second in the slot order

	rows := e.Summaries(map[string]int{"a": 2, "b": 1, "c": 1})

	a := summaryFor(t, rows, "a")
	assert.Equal(t, 2, a.Wins)
	assert.Equal(t, 1, a.Losses)
	assert.Equal(t, 3, a.TotalSets)
	assert.Equal(t, []string{"b", "b"}, a.WonAgainst)
	assert.Equal(t, []string{"c"}, a.LostAgainst)
	require.Len(t, a.PositiveH2H, 1)
	assert.Equal(t, HeadToHead{Opponent: "b", Wins: 2, Losses: 0}, a.PositiveH2H[0])
	require.Len(t, a.NegativeH2H, 1)
	assert.Equal(t, "0-1", a.NegativeH2H[0].Record())

	c := summaryFor(t, rows, "c")
	assert.Equal(t, 1, c.Wins)
	assert.Equal(t, []string{"a"}, c.WonAgainst)
}

func TestSummariesEvenH2HBucket(t *testing.T) {
	e := NewEngine()
	e.Record("a", "b", 2, 0)
	e.Record("b", "a", 2, 1)

	rows := e.Summaries(nil)
	a := summaryFor(t, rows, "a")
	require.Len(t, a.EvenH2H, 1, "1-1 against the same opponent lands in the even bucket")
	assert.Equal(t, "1-1", a.EvenH2H[0].Record())
	assert.Empty(t, a.PositiveH2H)
	assert.Empty(t, a.NegativeH2H)
}

func TestSummariesSortedByRatingThenVolume(t *testing.T) {
	e := NewEngine()
	e.Record("top", "bottom", 3, 0)
	e.Record("top", "bottom", 3, 0)
	e.Record("mid1", "mid2", 2, 1)
	e.Record("mid2", "mid1", 2, 1)

	rows := e.Summaries(nil)
	require.Len(t, rows, 4)
	assert.Equal(t, "top", rows[0].Player)
	assert.Equal(t, "bottom", rows[3].Player)
	// mid2 won the rematch from the lower rating and gained more than the
	// opener cost, so the split series leaves mid2 slightly ahead.
	assert.Equal(t, "mid2", rows[1].Player)
	assert.Equal(t, "mid1", rows[2].Player)
}

func TestSummariesLossToAttendance(t *testing.T) {
	e := NewEngine()
	e.Record("w", "l", 3, 1)

	rows := e.Summaries(map[string]int{"l": 4})
	l := summaryFor(t, rows, "l")
	require.NotNil(t, l.LossToAttendance)
	assert.InDelta(t, 0.25, *l.LossToAttendance, 1e-9)

	w := summaryFor(t, rows, "w")
	assert.Nil(t, w.LossToAttendance, "zero attendance leaves the ratio null")
}

func TestSeedWithoutSetsStaysOutOfSummaries(t *testing.T) {
	e := NewEngine()
	e.Seed([]string{"entrant-no-sets"})
	e.Record("a", "b", 2, 0)

	assert.Equal(t, InitialRating, e.Table()["entrant-no-sets"], "seeded players keep a table entry")
	rows := e.Summaries(nil)
	require.Len(t, rows, 2, "only players with a decided set get a summary row")
}

func TestAttendanceCountsDistinctEvents(t *testing.T) {
	counts := Attendance([][]string{
		{"a", "b"},
		{"a", "c"},
		{"a"},
	})
	assert.Equal(t, map[string]int{"a": 3, "b": 1, "c": 1}, counts)
}
