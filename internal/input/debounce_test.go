package input

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const step = DefaultDebounce

func press(d *Debouncer, at time.Duration) time.Duration {
	d.OnEdge(at)
	d.OnEdge(at + step)
	return at + 2*step
}

func TestCountsLeadingEdges(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 100} {
		d := NewDebouncer(step)
		at := time.Second
		for i := 0; i < n; i++ {
			at = press(d, at)
		}
		assert.Equal(t, uint32(n), d.ReadAndReset(), "presses=%d", n)
		assert.Zero(t, d.ReadAndReset())
	}
}

func TestIgnoresBounce(t *testing.T) {
	d := NewDebouncer(step)

	d.OnEdge(time.Second)
	d.OnEdge(time.Second + time.Millisecond)
	d.OnEdge(time.Second + 2*time.Millisecond)
	assert.True(t, d.Pressed())

	d.OnEdge(time.Second + step)
	assert.False(t, d.Pressed())
	assert.Equal(t, uint32(1), d.ReadAndReset())
}

func TestEdgeExactlyAtIntervalIsAccepted(t *testing.T) {
	d := NewDebouncer(step)
	d.OnEdge(0)
	d.OnEdge(step)
	d.OnEdge(2 * step)
	assert.Equal(t, uint32(2), d.ReadAndReset())
}

func TestDefaultInterval(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, DefaultDebounce, d.minInterval)
}

func TestConcurrentReadsSeeEveryPress(t *testing.T) {
	const presses = 500
	d := NewDebouncer(step)

	var total atomic.Uint32
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					total.Add(d.ReadAndReset())
				}
			}
		}()
	}

	at := time.Second
	for i := 0; i < presses; i++ {
		at = press(d, at)
	}
	close(done)
	wg.Wait()
	total.Add(d.ReadAndReset())

	assert.Equal(t, uint32(presses), total.Load())
}
