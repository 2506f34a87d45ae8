// Package render owns the physical panel and redraws it whenever the render
// trigger fires or the fallback interval elapses.
package render

import (
	"context"
	"time"
)

// Trigger is a single-slot wake signal. Signals sent before the render task
// consumes one coalesce; the task always re-reads state, so a coalesced
// signal loses nothing.
type Trigger struct {
	ch chan struct{}
}

func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Signal never blocks.
func (t *Trigger) Signal() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until a signal arrives, the timeout elapses or ctx is done.
// It reports whether a signal was consumed; err is set only when ctx ends.
func (t *Trigger) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-t.ch:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Pending reports whether a signal is waiting, without consuming it.
func (t *Trigger) Pending() bool {
	return len(t.ch) > 0
}
