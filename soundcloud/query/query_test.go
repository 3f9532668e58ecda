package query_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scdl/soundcloud/query"
)

func TestTracksQueryValues(t *testing.T) {
	t.Parallel()

	q := &query.TracksQuery{
		Q:         lo.ToPtr("lofi"),
		IDs:       []int64{1, 2},
		URNs:      nil,
		Genres:    []string{"ambient", "jazz"},
		Tags:      nil,
		BPM:       &query.Range{From: lo.ToPtr[uint](80), To: nil},
		Duration:  nil,
		CreatedAt: &query.DateRange{From: nil, To: lo.ToPtr("2024-01-01 00:00:00")},
		Access:    []string{"playable"},
		Paging:    &query.Paging{Limit: lo.ToPtr[uint](5), Offset: nil, LinkedPartitioning: lo.ToPtr(true)},
	}

	v := q.Values()
	assert.Equal(t, "lofi", v.Get("q"))
	assert.Equal(t, "1,2", v.Get("ids"))
	assert.Equal(t, "ambient,jazz", v.Get("genres"))
	assert.Equal(t, "80", v.Get("bpm[from]"))
	assert.False(t, v.Has("bpm[to]"))
	assert.Equal(t, "2024-01-01 00:00:00", v.Get("created_at[to]"))
	assert.Equal(t, "playable", v.Get("access"))
	assert.Equal(t, "5", v.Get("limit"))
	assert.Equal(t, "true", v.Get("linked_partitioning"))
	assert.False(t, v.Has("offset"))
	assert.False(t, v.Has("urns"))
}

func TestNilQueriesEncodeToNothing(t *testing.T) {
	t.Parallel()

	var (
		p  *query.Paging
		tq *query.TracksQuery
		uq *query.UsersQuery
		pq *query.PlaylistsQuery
		sq *query.SearchQuery
	)
	assert.Empty(t, p.Values())
	assert.Empty(t, tq.Values())
	assert.Empty(t, uq.Values())
	assert.Empty(t, pq.Values())
	assert.Empty(t, sq.Values())
	assert.Empty(t, query.TrackAuthorization("").Values())
	assert.Equal(t, "abc", query.TrackAuthorization("abc").Values().Get("track_authorization"))
}

func TestPlaylistsQueryValues(t *testing.T) {
	t.Parallel()

	q := &query.PlaylistsQuery{Q: lo.ToPtr("x"), Access: nil, ShowTracks: lo.ToPtr(false), Paging: nil}
	v := q.Values()
	assert.Equal(t, "false", v.Get("show_tracks"))
	assert.Equal(t, "x", v.Get("q"))
}
