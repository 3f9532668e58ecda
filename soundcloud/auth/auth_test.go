package auth_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scdl/soundcloud/auth"
)

type discovererFunc func(ctx context.Context) (string, error)

func (f discovererFunc) Discover(ctx context.Context, _ zerolog.Logger) (string, error) {
	return f(ctx)
}

func sequence(ids ...string) (auth.Discoverer, *atomic.Int32) {
	var calls atomic.Int32

	return discovererFunc(func(context.Context) (string, error) {
		n := calls.Add(1)
		if int(n) > len(ids) {
			return "", auth.ErrClientIDNotFound
		}

		return ids[n-1], nil
	}), &calls
}

func TestNewDiscovers(t *testing.T) {
	t.Parallel()

	d, calls := sequence("first")
	s, err := auth.New(t.Context(), zerolog.Nop(), d, "")
	require.NoError(t, err)
	assert.Equal(t, "first", s.Credentials().ClientID)
	assert.EqualValues(t, 1, calls.Load())
}

func TestNewWithSeedSkipsDiscovery(t *testing.T) {
	t.Parallel()

	d, calls := sequence("discovered")
	s, err := auth.New(t.Context(), zerolog.Nop(), d, "seeded")
	require.NoError(t, err)
	assert.Equal(t, "seeded", s.Credentials().ClientID)
	assert.Zero(t, calls.Load())

	require.NoError(t, s.Refresh(t.Context(), zerolog.Nop()))
	assert.Equal(t, "discovered", s.Credentials().ClientID)
}

func TestNewFailsWhenDiscoveryFails(t *testing.T) {
	t.Parallel()

	d, _ := sequence()
	s, err := auth.New(t.Context(), zerolog.Nop(), d, "")
	require.ErrorIs(t, err, auth.ErrClientIDNotFound)
	assert.Nil(t, s)
}

func TestRefreshReplacesClientID(t *testing.T) {
	t.Parallel()

	d, _ := sequence("old", "new")
	s, err := auth.New(t.Context(), zerolog.Nop(), d, "")
	require.NoError(t, err)

	before := s.Credentials()
	require.NoError(t, s.Refresh(t.Context(), zerolog.Nop()))
	assert.Equal(t, "new", s.Credentials().ClientID)
	assert.Equal(t, "old", before.ClientID)
	assert.False(t, s.Credentials().DiscoveredAt.Before(before.DiscoveredAt))
}

func TestRefreshFailureKeepsClientID(t *testing.T) {
	t.Parallel()

	d, _ := sequence("only")
	s, err := auth.New(t.Context(), zerolog.Nop(), d, "")
	require.NoError(t, err)

	err = s.Refresh(t.Context(), zerolog.Nop())
	require.ErrorIs(t, err, auth.ErrClientIDNotFound)
	assert.Equal(t, "only", s.Credentials().ClientID)
}

func TestConcurrentRefreshesShareOneDiscovery(t *testing.T) {
	t.Parallel()

	var (
		calls   atomic.Int32
		entered = make(chan struct{})
		release = make(chan struct{})
	)
	d := discovererFunc(func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}

		return "shared", nil
	})

	s, err := auth.New(t.Context(), zerolog.Nop(), d, "seed")
	require.NoError(t, err)

	const callers = 5
	errs := make([]error, callers)

	var wg sync.WaitGroup
	wg.Go(func() { errs[0] = s.Refresh(t.Context(), zerolog.Nop()) })
	<-entered
	for i := 1; i < callers; i++ {
		wg.Go(func() { errs[i] = s.Refresh(t.Context(), zerolog.Nop()) })
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "shared", s.Credentials().ClientID)
}

func TestRefreshWaiterHonoursOwnContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	d := discovererFunc(func(context.Context) (string, error) {
		<-release
		return "late", nil
	})

	s, err := auth.New(t.Context(), zerolog.Nop(), d, "seed")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	err = s.Refresh(ctx, zerolog.Nop())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "seed", s.Credentials().ClientID)
}
