package progress_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scdl/progress"
)

func TestCounter(t *testing.T) {
	t.Parallel()

	c := progress.NewCounter(3)
	assert.Equal(t, 0, c.Percent())
	assert.Equal(t, 33, c.Add(1))
	assert.Equal(t, 66, c.Add(1))
	assert.Equal(t, 100, c.Add(5))
}

func TestCounterConcurrent(t *testing.T) {
	t.Parallel()

	c := progress.NewCounter(100)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, c.Percent())
}

func TestCounterEmpty(t *testing.T) {
	t.Parallel()

	var m progress.Monitor = progress.NewCounter(0)
	assert.Equal(t, 100, m.Percent())
}

func TestCounterRejectsNegativeTotal(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { progress.NewCounter(-1) })
}
