package progress

import (
	"math"
	"sync/atomic"

	"github.com/xeptore/scdl/must"
)

type Monitor interface {
	Percent() int
}

// Counter tracks completed units out of a fixed total. It is safe for
// concurrent use.
type Counter struct {
	total int64
	done  atomic.Int64
}

func NewCounter(total int) *Counter {
	must.Be(total >= 0, "counter total must not be negative")

	return &Counter{total: int64(total)} //nolint:exhaustruct
}

// Add records n completed units and returns the new percentage.
func (c *Counter) Add(n int) int {
	return c.percent(c.done.Add(int64(n)))
}

func (c *Counter) Percent() int {
	return c.percent(c.done.Load())
}

func (c *Counter) percent(done int64) int {
	if c.total <= 0 {
		return 100
	}

	return int(math.Floor(float64(min(done, c.total)) / float64(c.total) * 100))
}
