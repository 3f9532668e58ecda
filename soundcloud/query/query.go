// Package query holds the typed query parameters of the api-v2 endpoints.
// Nil fields are omitted from the encoded query.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

type Paging struct {
	Limit              *uint
	Offset             *uint
	LinkedPartitioning *bool
}

func (p *Paging) Values() url.Values {
	if nil == p {
		return nil
	}

	v := make(url.Values, 3)
	p.encode(v)

	return v
}

func (p *Paging) encode(v url.Values) {
	if nil == p {
		return
	}

	setUint(v, "limit", p.Limit)
	setUint(v, "offset", p.Offset)
	setBool(v, "linked_partitioning", p.LinkedPartitioning)
}

// Range encodes as key[from] and key[to].
type Range struct {
	From *uint
	To   *uint
}

func (r *Range) encode(v url.Values, key string) {
	if nil == r {
		return
	}

	setUint(v, key+"[from]", r.From)
	setUint(v, key+"[to]", r.To)
}

type DateRange struct {
	From *string
	To   *string
}

func (r *DateRange) encode(v url.Values, key string) {
	if nil == r {
		return
	}

	setString(v, key+"[from]", r.From)
	setString(v, key+"[to]", r.To)
}

type TracksQuery struct {
	Q         *string
	IDs       []int64
	URNs      []string
	Genres    []string
	Tags      []string
	BPM       *Range
	Duration  *Range
	CreatedAt *DateRange
	Access    []string
	Paging    *Paging
}

func (q *TracksQuery) Values() url.Values {
	if nil == q {
		return nil
	}

	v := make(url.Values)
	setString(v, "q", q.Q)
	setInts(v, "ids", q.IDs)
	setStrings(v, "urns", q.URNs)
	setStrings(v, "genres", q.Genres)
	setStrings(v, "tags", q.Tags)
	q.BPM.encode(v, "bpm")
	q.Duration.encode(v, "duration")
	q.CreatedAt.encode(v, "created_at")
	setStrings(v, "access", q.Access)
	q.Paging.encode(v)

	return v
}

type UsersQuery struct {
	Q      *string
	IDs    []int64
	URNs   []string
	Paging *Paging
}

func (q *UsersQuery) Values() url.Values {
	if nil == q {
		return nil
	}

	v := make(url.Values)
	setString(v, "q", q.Q)
	setInts(v, "ids", q.IDs)
	setStrings(v, "urns", q.URNs)
	q.Paging.encode(v)

	return v
}

type PlaylistsQuery struct {
	Q          *string
	Access     []string
	ShowTracks *bool
	Paging     *Paging
}

func (q *PlaylistsQuery) Values() url.Values {
	if nil == q {
		return nil
	}

	v := make(url.Values)
	setString(v, "q", q.Q)
	setStrings(v, "access", q.Access)
	setBool(v, "show_tracks", q.ShowTracks)
	q.Paging.encode(v)

	return v
}

// SearchQuery serves search/albums, search/queries and search.
type SearchQuery struct {
	Q      *string
	Paging *Paging
}

func (q *SearchQuery) Values() url.Values {
	if nil == q {
		return nil
	}

	v := make(url.Values)
	setString(v, "q", q.Q)
	q.Paging.encode(v)

	return v
}

// TrackAuthorization is appended when resolving a transcoding.
type TrackAuthorization string

func (t TrackAuthorization) Values() url.Values {
	if t == "" {
		return nil
	}

	return url.Values{"track_authorization": []string{string(t)}}
}

func setString(v url.Values, key string, s *string) {
	if nil != s {
		v.Set(key, *s)
	}
}

func setUint(v url.Values, key string, n *uint) {
	if nil != n {
		v.Set(key, strconv.FormatUint(uint64(*n), 10))
	}
}

func setBool(v url.Values, key string, b *bool) {
	if nil != b {
		v.Set(key, strconv.FormatBool(*b))
	}
}

func setStrings(v url.Values, key string, s []string) {
	if len(s) > 0 {
		v.Set(key, strings.Join(s, ","))
	}
}

func setInts(v url.Values, key string, ids []int64) {
	if len(ids) == 0 {
		return
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	v.Set(key, strings.Join(parts, ","))
}
