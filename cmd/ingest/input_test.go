package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrutikmk/startgg-match-insights/internal/provider/startgg"
)

func TestParseCoords(t *testing.T) {
	regions, err := parseCoords([]string{
		"37.77,-122.41:70mi",
		" 38.57 , -121.49 : 40mi ",
	})
	require.NoError(t, err)
	assert.Equal(t, []startgg.Region{
		{Coordinates: "37.77, -122.41", Radius: "70mi"},
		{Coordinates: "38.57, -121.49", Radius: "40mi"},
	}, regions)
}

func TestParseCoordsRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"37.77,-122.41", "37.77:70mi", ""} {
		_, err := parseCoords([]string{bad})
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseDate(t *testing.T) {
	ts, err := parseDate("2024-01-15")
	require.NoError(t, err)
	require.NotNil(t, ts)

	unbounded, err := parseDate("")
	require.NoError(t, err)
	assert.Nil(t, unbounded)

	_, err = parseDate("01/15/2024")
	assert.Error(t, err)
}

func TestValidateWindow(t *testing.T) {
	early, late := int64(100), int64(200)

	assert.NoError(t, validateWindow(&early, &late))
	assert.NoError(t, validateWindow(nil, &late))
	assert.NoError(t, validateWindow(&early, nil))
	assert.NoError(t, validateWindow(nil, nil))
	assert.Error(t, validateWindow(&late, &early))
}

func TestSlugFromURL(t *testing.T) {
	for _, url := range []string{
		"https://www.start.gg/tournament/genesis-x/event/ultimate-singles",
		"start.gg/tournament/genesis-x/event/ultimate-singles/overview",
		"https://START.GG/tournament/genesis-x/event/ultimate-singles?tab=sets",
	} {
		slug, err := slugFromURL(url)
		require.NoError(t, err, url)
		assert.Equal(t, "tournament/genesis-x/event/ultimate-singles", slug)
	}

	_, err := slugFromURL("https://start.gg/tournament/genesis-x")
	assert.Error(t, err)
}
