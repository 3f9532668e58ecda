package auth

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/xeptore/scdl/redact"
)

type Discoverer interface {
	Discover(ctx context.Context, logger zerolog.Logger) (string, error)
}

type Credentials struct {
	ClientID     string
	DiscoveredAt time.Time
}

// Store holds the current client id. Reads are lock-free; refreshes run
// discovery outside of any lock and publish the result with a single swap.
type Store struct {
	discoverer  Discoverer
	group       singleflight.Group
	credentials atomic.Pointer[Credentials]
}

// New builds a store holding a usable client id. A non-empty seed is used
// as-is, otherwise discovery runs once and its failure is returned.
func New(ctx context.Context, logger zerolog.Logger, d Discoverer, seed string) (*Store, error) {
	s := &Store{
		discoverer:  d,
		group:       singleflight.Group{},
		credentials: atomic.Pointer[Credentials]{},
	}

	if seed != "" {
		logger.Debug().Str("client_id", redact.String(seed)).Msg("Using preconfigured client id")
		s.credentials.Store(&Credentials{ClientID: seed, DiscoveredAt: time.Now()})

		return s, nil
	}

	if err := s.Refresh(ctx, logger); nil != err {
		return nil, fmt.Errorf("initial client id discovery: %w", err)
	}

	return s, nil
}

func (s *Store) Credentials() *Credentials {
	return s.credentials.Load()
}

// Refresh replaces the held client id with a freshly discovered one.
// Concurrent callers share one discovery run. On failure the held value is
// left untouched.
func (s *Store) Refresh(ctx context.Context, logger zerolog.Logger) error {
	ch := s.group.DoChan("refresh", func() (any, error) {
		clientID, err := s.discoverer.Discover(context.WithoutCancel(ctx), logger)
		if nil != err {
			return nil, err
		}

		creds := &Credentials{ClientID: clientID, DiscoveredAt: time.Now()}
		s.credentials.Store(creds)

		return creds, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if nil != res.Err {
			return fmt.Errorf("refresh client id: %w", res.Err)
		}

		return nil
	}
}
