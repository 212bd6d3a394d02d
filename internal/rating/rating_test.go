package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateFirstMatchup(t *testing.T) {
	table := make(Table)
	table.Update("winner", "loser", true)

	// Equal ratings make the expected score exactly 0.5, so the winner
	// gains K/2 and the loser gives it up.
	assert.InDelta(t, 1515.0, table["winner"], 1e-9)
	assert.InDelta(t, 1485.0, table["loser"], 1e-9)
}

func TestUpdateIsZeroSum(t *testing.T) {
	table := Table{"a": 1620.0, "b": 1480.0}
	table.Update("a", "b", false)

	assert.InDelta(t, 3100.0, table["a"]+table["b"], 1e-9)
	assert.Less(t, table["a"], 1620.0)
	assert.Greater(t, table["b"], 1480.0)
}

func TestUpdateUpsetMovesMore(t *testing.T) {
	even := make(Table)
	even.Update("a", "b", true)
	evenGain := even["a"] - InitialRating

	upset := Table{"a": 1400.0, "b": 1600.0}
	upset.Update("a", "b", true)
	upsetGain := upset["a"] - 1400.0

	assert.Greater(t, upsetGain, evenGain, "beating a stronger player pays more")
}

func TestGetDefaultsToInitial(t *testing.T) {
	table := Table{"seen": 1550.0}
	assert.Equal(t, 1550.0, table.Get("seen"))
	assert.Equal(t, InitialRating, table.Get("never-seen"))
}

func TestSeedNeverOverwrites(t *testing.T) {
	table := Table{"veteran": 1700.0}
	table.Seed([]string{"veteran", "rookie"})

	assert.Equal(t, 1700.0, table["veteran"])
	assert.Equal(t, InitialRating, table["rookie"])
}

func TestReplayDeterminism(t *testing.T) {
	type set struct {
		p1, p2 string
		s1, s2 int
	}
	sets := []set{
		{"a", "b", 3, 1},
		{"c", "a", 2, 3},
		{"b", "c", 0, 2},
		{"a", "c", 1, 3},
		{"b", "a", 3, 2},
	}

	run := func() Table {
		e := NewEngine()
		for _, s := range sets {
			e.Record(s.p1, s.p2, s.s1, s.s2)
		}
		return e.Table()
	}

	first, second := run(), run()
	require.Equal(t, first, second, "same input order must reproduce the table exactly")
}
