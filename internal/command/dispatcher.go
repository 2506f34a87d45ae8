package command

import (
	"context"
	"log/slog"
	"time"

	derrors "github.com/photonicat/feed_display/internal/errors"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/metrics"
	"github.com/photonicat/feed_display/internal/page"
	"github.com/photonicat/feed_display/internal/settings"
	"github.com/photonicat/feed_display/internal/state"
	"github.com/photonicat/feed_display/internal/store"
)

// DefaultPoll is how often the press counter is drained.
const DefaultPoll = 200 * time.Millisecond

// PressCounter is drained by the dispatch loop; every unit is one page switch.
type PressCounter interface {
	ReadAndReset() uint32
}

// Signaler wakes the render task.
type Signaler interface {
	Signal()
}

// Dispatcher is the only writer of the current page and the only user of the
// settings store after boot.
type Dispatcher struct {
	bus     *Bus
	presses PressCounter
	state   *state.Shared
	store   store.Store
	trigger Signaler
	poll    time.Duration
	metrics metrics.Recorder
}

func NewDispatcher(bus *Bus, presses PressCounter, shared *state.Shared, st store.Store, trigger Signaler, poll time.Duration, rec metrics.Recorder) *Dispatcher {
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Dispatcher{
		bus:     bus,
		presses: presses,
		state:   shared,
		store:   st,
		trigger: trigger,
		poll:    poll,
		metrics: metrics.OrNoop(rec),
	}
}

// Run applies commands from the bus and drains the press counter on a
// ticker until ctx is cancelled. The ticker fires independently of command
// traffic, so presses are never starved by a busy bus.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	slog.Info("Dispatch loop started", logfields.Duration(d.poll))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Dispatch loop stopped")
			return nil
		case cmd := <-d.bus.ch:
			d.applyLogged(ctx, cmd)
		case <-ticker.C:
			d.drainPresses(ctx)
		}
	}
}

func (d *Dispatcher) drainPresses(ctx context.Context) {
	if d.presses == nil {
		return
	}
	n := d.presses.ReadAndReset()
	if n == 0 {
		return
	}
	d.metrics.AddButtonPresses(int(n))
	slog.Debug("Button pressed", logfields.Count(int(n)))
	for i := uint32(0); i < n; i++ {
		d.applyLogged(ctx, SwitchPage{})
	}
}

func (d *Dispatcher) applyLogged(ctx context.Context, cmd Command) {
	if err := d.Apply(ctx, cmd); err != nil {
		slog.Error("Command failed", logfields.Command(cmd.Kind()), logfields.Error(err))
	}
}

// Apply executes one command. State is mutated under the lock; persistence
// and the render signal happen after it is released.
func (d *Dispatcher) Apply(ctx context.Context, cmd Command) error {
	d.metrics.IncCommand(cmd.Kind())

	switch c := cmd.(type) {
	case SwitchPage:
		return d.switchPage(ctx)
	case SavePersonalConfig:
		err := d.persist(ctx, settings.KeyPersonal, c.Data)
		d.state.Update(func(st *state.ApplicationState) { st.Location = c.Data.Location })
		d.trigger.Signal()
		return err
	case SaveWifiConfig:
		return d.persist(ctx, settings.KeyWifi, c.Data)
	case SaveRssConfig:
		return d.persist(ctx, settings.KeyRss, c.Data)
	case SaveStockConfig:
		return d.persist(ctx, settings.KeyStock, c.Data)
	default:
		return derrors.InvariantViolation("unknown command").WithContext("kind", cmd.Kind())
	}
}

func (d *Dispatcher) switchPage(ctx context.Context) error {
	var from, to page.Kind
	d.state.Update(func(st *state.ApplicationState) {
		from = st.Page
		to = page.Next(from)
		st.Page = to
	})

	var err error
	if to != from {
		slog.Info("Page switched", logfields.From(from.String()), logfields.To(to.String()))
		d.metrics.IncPageSwitch(to.String())
		err = d.persist(ctx, settings.KeyLastPage, to)
	}
	d.trigger.Signal()
	return err
}

func (d *Dispatcher) persist(ctx context.Context, key string, v any) error {
	if err := d.store.Put(ctx, key, v); err != nil {
		d.metrics.IncPersistFailure(key)
		return derrors.PersistFailed(key, err)
	}
	slog.Debug("Persisted", logfields.Key(key))
	return nil
}
