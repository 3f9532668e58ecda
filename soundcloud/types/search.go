package types

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var ErrUnknownKind = errors.New("unknown result kind")

type SearchSuggestion struct {
	Output string `json:"output"`
	Query  string `json:"query"`
}

type SearchSuggestions = Paging[SearchSuggestion]

const (
	KindTrack    = "track"
	KindUser     = "user"
	KindPlaylist = "playlist"
)

// SearchItem is one entry of a mixed search collection. Exactly one of
// Track, User and Playlist is set, according to Kind.
type SearchItem struct {
	Kind     string
	Track    *Track
	User     *User
	Playlist *Playlist
}

func (s *SearchItem) UnmarshalJSON(b []byte) error {
	kind := gjson.GetBytes(b, "kind")
	if kind.Type != gjson.String {
		return fmt.Errorf("%w: missing kind", ErrUnknownKind)
	}

	switch k := kind.String(); k {
	case KindTrack:
		var t Track
		if err := json.Unmarshal(b, &t); nil != err {
			return fmt.Errorf("decode track item: %w", err)
		}
		*s = SearchItem{Kind: k, Track: &t, User: nil, Playlist: nil}
	case KindUser:
		var u User
		if err := json.Unmarshal(b, &u); nil != err {
			return fmt.Errorf("decode user item: %w", err)
		}
		*s = SearchItem{Kind: k, Track: nil, User: &u, Playlist: nil}
	case KindPlaylist:
		var p Playlist
		if err := json.Unmarshal(b, &p); nil != err {
			return fmt.Errorf("decode playlist item: %w", err)
		}
		*s = SearchItem{Kind: k, Track: nil, User: nil, Playlist: &p}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}

	return nil
}

type SearchAll = Paging[SearchItem]
