package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/xeptore/scdl/soundcloud/types"
)

var (
	DefaultTrackTTL    = 1 * time.Hour
	DefaultPlaylistTTL = 10 * time.Minute
)

type Cache struct {
	Tracks    *Store[*types.Track]
	Playlists *Store[*types.Playlist]
}

func New() *Cache {
	return &Cache{
		Tracks:    newStore[*types.Track](10_000, "track"),
		Playlists: newStore[*types.Playlist](1000, "playlist"),
	}
}

// Store serializes fetches so that concurrent misses on the same key do
// not hit the API twice.
type Store[T any] struct {
	c    *ccache.Cache[T]
	mux  sync.Mutex
	name string
}

func newStore[T any](size int64, name string) *Store[T] {
	return &Store[T]{
		c: ccache.New(
			ccache.Configure[T]().
				MaxSize(size).
				GetsPerPromote(3).
				ItemsToPrune(1),
		),
		mux:  sync.Mutex{},
		name: name,
	}
}

func (s *Store[T]) Fetch(k string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	item, err := s.c.Fetch(k, ttl, fetch)
	if nil != err {
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", s.name, err)
	}

	return item.Value(), nil
}

func (s *Store[T]) Set(k string, v T, ttl time.Duration) {
	s.c.Set(k, v, ttl)
}

func (s *Store[T]) Delete(k string) bool {
	return s.c.Delete(k)
}
