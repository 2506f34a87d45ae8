// Package refresh periodically pulls the feed, weather and stock sources and
// installs whatever succeeded into the shared state.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/photonicat/feed_display/internal/content"
	derrors "github.com/photonicat/feed_display/internal/errors"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/metrics"
	"github.com/photonicat/feed_display/internal/state"
)

// DefaultInterval between two refresh cycles.
const DefaultInterval = 15 * time.Minute

type FeedSource interface {
	Name() string
	Refresh(ctx context.Context) error
	Feed() *content.Feed
}

// WeatherSource refreshes for the live location held in shared state.
type WeatherSource interface {
	Name() string
	Refresh(ctx context.Context, location string) error
	Weather() *content.Weather
}

type StockSource interface {
	Name() string
	Refresh(ctx context.Context) error
	Stock() *content.Stock
}

// BatterySampler reads the battery voltage in millivolts.
type BatterySampler interface {
	SampleMillivolts() (uint16, error)
}

// Sources bundles the collaborators of one refresh cycle. Battery may be nil
// on hosts without a battery.
type Sources struct {
	Feed    FeedSource
	Weather WeatherSource
	Stock   StockSource
	Battery BatterySampler
}

// Signaler wakes the render task.
type Signaler interface {
	Signal()
}

// Result reports what a single cycle changed.
type Result struct {
	Feed, Weather, Stock, Battery bool
	Errors                        []error
}

type Task struct {
	sources  Sources
	state    *state.Shared
	trigger  Signaler
	interval time.Duration
	metrics  metrics.Recorder
}

func NewTask(sources Sources, shared *state.Shared, trigger Signaler, interval time.Duration, rec metrics.Recorder) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Task{
		sources:  sources,
		state:    shared,
		trigger:  trigger,
		interval: interval,
		metrics:  metrics.OrNoop(rec),
	}
}

// RunOnce refreshes feed, weather and stock in that order. Network and parse
// work happens without the state lock; successful snapshots and the battery
// reading are then installed in one update and the render trigger fires
// exactly once, whatever failed.
func (t *Task) RunOnce(ctx context.Context) Result {
	var res Result
	location := t.state.View().Location

	var (
		feed    *content.Feed
		weather *content.Weather
		stock   *content.Stock
		battery uint16
	)

	if err := t.refresh(ctx, t.sources.Feed.Name(), t.sources.Feed.Refresh); err != nil {
		res.Errors = append(res.Errors, err)
	} else {
		feed, res.Feed = t.sources.Feed.Feed(), true
	}

	weatherRefresh := func(ctx context.Context) error { return t.sources.Weather.Refresh(ctx, location) }
	if err := t.refresh(ctx, t.sources.Weather.Name(), weatherRefresh); err != nil {
		res.Errors = append(res.Errors, err)
	} else {
		weather, res.Weather = t.sources.Weather.Weather(), true
	}

	if err := t.refresh(ctx, t.sources.Stock.Name(), t.sources.Stock.Refresh); err != nil {
		res.Errors = append(res.Errors, err)
	} else {
		stock, res.Stock = t.sources.Stock.Stock(), true
	}

	if t.sources.Battery != nil {
		mv, err := t.sources.Battery.SampleMillivolts()
		if err != nil {
			slog.Debug("Battery sample unavailable", logfields.Error(err))
		} else {
			battery, res.Battery = mv, true
			t.metrics.SetBatteryMillivolts(mv)
		}
	}

	t.state.Update(func(st *state.ApplicationState) {
		if res.Feed {
			st.Feed = feed
		}
		if res.Weather {
			st.Weather = weather
		}
		if res.Stock {
			st.Stock = stock
		}
		if res.Battery {
			st.BatteryRaw = battery
		}
	})
	t.trigger.Signal()

	slog.Info("Refresh cycle finished",
		slog.Bool("feed", res.Feed),
		slog.Bool("weather", res.Weather),
		slog.Bool("stock", res.Stock),
		logfields.Count(len(res.Errors)))
	return res
}

func (t *Task) refresh(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	if err := fn(ctx); err != nil {
		t.metrics.IncRefresh(name, metrics.ResultFailure)
		derr := derrors.SourceRefreshFailed(name, err)
		slog.Warn("Refresh failed, keeping previous snapshot",
			logfields.Source(name), logfields.Duration(time.Since(start)), logfields.Error(err))
		return derr
	}
	t.metrics.IncRefresh(name, metrics.ResultSuccess)
	slog.Debug("Refreshed", logfields.Source(name), logfields.Duration(time.Since(start)))
	return nil
}

// Run schedules RunOnce every interval, starting immediately, until ctx is
// cancelled. A cycle that overruns the interval delays the next one instead
// of overlapping it.
func (t *Task) Run(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(t.interval),
		gocron.NewTask(func() { t.RunOnce(ctx) }),
		gocron.WithName("content-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	slog.Info("Starting refresh scheduler", logfields.Duration(t.interval))
	s.Start()
	<-ctx.Done()

	slog.Info("Stopping refresh scheduler")
	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("stop refresh scheduler: %w", err)
	}
	return nil
}
