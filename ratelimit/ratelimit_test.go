package ratelimit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/xeptore/scdl/ratelimit"
)

func TestTrackDownloadSleep(t *testing.T) {
	t.Parallel()
	for range 100 {
		ms := ratelimit.TrackDownloadSleep().Milliseconds()
		if ms < 1000 || ms > 3000 {
			t.Errorf("expected 1000 <= ms <= 3000, got %d", ms)
		}
	}
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rate.Inf, ratelimit.NewLimiter(0, 0).Limit())
	assert.Equal(t, 1, ratelimit.NewLimiter(0, 0).Burst())

	l := ratelimit.NewLimiter(2.5, 4)
	assert.InDelta(t, 2.5, float64(l.Limit()), 0.0001)
	assert.Equal(t, 4, l.Burst())
}
