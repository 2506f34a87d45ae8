package render

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	derrors "github.com/photonicat/feed_display/internal/errors"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/metrics"
	"github.com/photonicat/feed_display/internal/state"
)

// DefaultFallback redraws the screen even without a trigger so the clock in
// the status bar stays roughly current.
const DefaultFallback = 30 * time.Minute

// Panel is the display driver. Only the render task calls it.
type Panel interface {
	Wake() error
	Clear() error
	// Canvas is the frame buffer pages draw into.
	Canvas() *image.RGBA
	Push(ctx context.Context) error
	Sleep() error
}

// Drawer renders the page selected by the view.
type Drawer interface {
	Draw(dst *image.RGBA, v state.View) error
}

type Task struct {
	panel    Panel
	drawer   Drawer
	state    *state.Shared
	trigger  *Trigger
	fallback time.Duration
	metrics  metrics.Recorder

	frame atomic.Pointer[image.RGBA]
}

func NewTask(panel Panel, drawer Drawer, shared *state.Shared, trigger *Trigger, fallback time.Duration, rec metrics.Recorder) *Task {
	if fallback <= 0 {
		fallback = DefaultFallback
	}
	return &Task{
		panel:    panel,
		drawer:   drawer,
		state:    shared,
		trigger:  trigger,
		fallback: fallback,
		metrics:  metrics.OrNoop(rec),
	}
}

// Run draws once, then again on every trigger or fallback timeout until ctx
// is cancelled. Draw failures are logged and the loop continues.
func (t *Task) Run(ctx context.Context) error {
	slog.Info("Render task started", logfields.Duration(t.fallback))
	for {
		if err := t.RenderOnce(ctx); err != nil {
			slog.Error("Render failed", logfields.Error(err))
		}
		triggered, err := t.trigger.Wait(ctx, t.fallback)
		if err != nil {
			slog.Info("Render task stopped")
			return nil
		}
		if !triggered {
			slog.Debug("Render fallback timeout")
		}
	}
}

// RenderOnce runs the wake, clear, draw, push, sleep sequence. The state lock
// is held only while the view is copied.
func (t *Task) RenderOnce(ctx context.Context) (err error) {
	start := time.Now()
	v := t.state.View()
	defer func() {
		t.metrics.ObserveRender(v.Page.String(), time.Since(start), err)
	}()

	if err := t.panel.Wake(); err != nil {
		return derrors.DisplayFailed("wake", err)
	}
	defer func() {
		if serr := t.panel.Sleep(); serr != nil && err == nil {
			err = derrors.DisplayFailed("sleep", serr)
		}
	}()

	if err := t.panel.Clear(); err != nil {
		return derrors.DisplayFailed("clear", err)
	}

	canvas := t.panel.Canvas()
	if err := t.drawer.Draw(canvas, v); err != nil {
		return derrors.DisplayFailed("draw", err).WithContext("page", v.Page.String())
	}
	if err := t.panel.Push(ctx); err != nil {
		return derrors.DisplayFailed("push", err)
	}

	t.frame.Store(cloneRGBA(canvas))
	slog.Debug("Frame pushed", logfields.Page(v.Page.String()), logfields.Duration(time.Since(start)))
	return nil
}

// Frame returns a copy of the last pushed frame, or nil before the first one.
func (t *Task) Frame() *image.RGBA {
	return t.frame.Load()
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
