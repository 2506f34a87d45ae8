// Package input turns raw button edges into a coalesced press count.
package input

import (
	"sync"
	"time"
)

// DefaultDebounce is the minimum spacing between two accepted edges.
const DefaultDebounce = 50 * time.Millisecond

// Debouncer counts leading edges of a bouncing button.
//
// OnEdge is called from the edge source's event goroutine and never blocks
// beyond the short critical section it shares with ReadAndReset. Every other
// accepted edge is a release and is consumed without counting.
type Debouncer struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Duration
	seen        bool
	pressed     bool
	count       uint32
}

func NewDebouncer(minInterval time.Duration) *Debouncer {
	if minInterval <= 0 {
		minInterval = DefaultDebounce
	}
	return &Debouncer{minInterval: minInterval}
}

// OnEdge records a level transition at the given monotonic timestamp.
func (d *Debouncer) OnEdge(at time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen && at-d.last < d.minInterval {
		return
	}
	d.seen = true
	d.last = at

	d.pressed = !d.pressed
	if d.pressed {
		d.count++
	}
}

// ReadAndReset returns the presses counted since the previous call.
func (d *Debouncer) ReadAndReset() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.count
	d.count = 0
	return n
}

// Pressed reports whether the button is currently held.
func (d *Debouncer) Pressed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pressed
}
