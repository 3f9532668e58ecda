package types_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scdl/soundcloud/types"
)

func TestSearchAllDecode(t *testing.T) {
	t.Parallel()

	body := `{
		"collection": [
			{"kind": "track", "id": 1, "title": "Song", "user": {"username": "artist"}},
			{"kind": "user", "id": 2, "username": "someone"},
			{"kind": "playlist", "id": 3, "title": "Mix", "tracks": [{"id": 11}]}
		],
		"next_href": "https://api-v2.soundcloud.com/search?offset=3",
		"total_results": 42
	}`

	var res types.SearchAll
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	require.Len(t, res.Collection, 3)

	assert.Equal(t, types.KindTrack, res.Collection[0].Kind)
	require.NotNil(t, res.Collection[0].Track)
	assert.Equal(t, "Song", res.Collection[0].Track.Title)
	assert.Equal(t, "artist", res.Collection[0].Track.Artist())

	require.NotNil(t, res.Collection[1].User)
	assert.Equal(t, "someone", res.Collection[1].User.Username)

	require.NotNil(t, res.Collection[2].Playlist)
	assert.Len(t, res.Collection[2].Playlist.Tracks, 1)
	assert.True(t, res.Collection[2].Playlist.Tracks[0].IsStub())

	assert.True(t, res.HasNext())
	require.NotNil(t, res.TotalResults)
	assert.Equal(t, int64(42), *res.TotalResults)
}

func TestSearchAllDecodeUnknownKind(t *testing.T) {
	t.Parallel()

	var res types.SearchAll
	err := json.Unmarshal([]byte(`{"collection":[{"kind":"podcast"}]}`), &res)
	require.ErrorContains(t, err, types.ErrUnknownKind.Error())
}
