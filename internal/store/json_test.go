package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrutikmk/startgg-match-insights/internal/pipeline"
	"github.com/shrutikmk/startgg-match-insights/internal/rating"
	"github.com/shrutikmk/startgg-match-insights/internal/resolve"
)

func sampleBundle() *pipeline.Bundle {
	ratio := 0.5
	return &pipeline.Bundle{
		Events: []resolve.EventResult{
			{EventID: 100, SetIDs: []int64{1, 2}, Players: []string{"alice", "bob"}},
		},
		Players: []rating.PlayerSummary{
			{Player: "alice", Wins: 2, TotalSets: 2, Rating: 1529.3},
			{Player: "bob", Losses: 1, TotalSets: 2, LossToAttendance: &ratio, Rating: 1485.0},
		},
		Ratings: rating.Table{"alice": 1529.3, "bob": 1485.0},
		Metadata: pipeline.Metadata{
			Mode:       pipeline.ModeDiscovery,
			EventCount: 1,
			SetCount:   2,
		},
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "outputs") // exercises MkdirAll

	path, err := WriteJSON(sampleBundle(), outDir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, DefaultBundleName), path)

	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, sampleBundle(), got)
}

func TestWriteJSONCustomName(t *testing.T) {
	outDir := t.TempDir()

	path, err := WriteJSON(sampleBundle(), outDir, "norcal-2024.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "norcal-2024.json"), path)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestReadJSONMissingFile(t *testing.T) {
	_, err := ReadJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
