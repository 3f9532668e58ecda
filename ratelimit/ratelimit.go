package ratelimit

import (
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// TrackDownloadSleep returns a randomized pause between 1 and 3 seconds used
// between consecutive track downloads of a playlist.
func TrackDownloadSleep() time.Duration {
	const (
		from = 1
		to   = 3
	)
	millis := (rand.IntN(to-from)+from)*1000 + rand.N(1000) //nolint:gosec

	return time.Duration(millis) * time.Millisecond
}

// NewLimiter returns an unlimited limiter when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, max(burst, 1))
	}

	return rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}
