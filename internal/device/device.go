// Package device owns every long-lived component of one session: the shared
// state, the command bus, the render trigger, the three tasks and the power
// manager. Run supervises them until the session ends.
package device

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/photonicat/feed_display/internal/command"
	"github.com/photonicat/feed_display/internal/config"
	"github.com/photonicat/feed_display/internal/content"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/metrics"
	"github.com/photonicat/feed_display/internal/pages"
	"github.com/photonicat/feed_display/internal/power"
	"github.com/photonicat/feed_display/internal/refresh"
	"github.com/photonicat/feed_display/internal/render"
	"github.com/photonicat/feed_display/internal/settings"
	"github.com/photonicat/feed_display/internal/state"
	"github.com/photonicat/feed_display/internal/store"
)

// Options are the platform collaborators handed to Boot.
type Options struct {
	Config    *config.Config
	SetupMode bool
	Store     store.Store
	Panel     render.Panel
	Presses   command.PressCounter
	Battery   refresh.BatterySampler
	Link      power.Link
	Sleeper   power.Sleeper
	Prober    power.Prober
	Client    *http.Client
	Metrics   metrics.Recorder
}

type Device struct {
	cfg     *config.Config
	opts    Options
	shared  *state.Shared
	bus     *command.Bus
	trigger *render.Trigger

	renderer   *render.Task
	dispatcher *command.Dispatcher
	refresher  *refresh.Task
	manager    atomic.Pointer[power.Manager]
}

// Boot restores persisted state and wires the tasks. Nothing runs until Run.
func Boot(ctx context.Context, opts Options) (*Device, error) {
	if opts.Config == nil || opts.Store == nil || opts.Panel == nil || opts.Link == nil || opts.Sleeper == nil {
		return nil, errors.New("device: config, store, panel, link and sleeper are required")
	}
	cfg := opts.Config
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: cfg.Timing.HTTPTimeout}
	}
	opts.Metrics = metrics.OrNoop(opts.Metrics)

	initial := state.Load(ctx, opts.Store, opts.SetupMode || cfg.SetupMode)
	if initial.Location == "" {
		initial.Location = cfg.Content.DefaultLocation
	}

	feedURL := cfg.Content.FeedURL
	var rss settings.Rss
	if err := opts.Store.Get(ctx, settings.KeyRss, &rss); err == nil && rss.URL != "" {
		feedURL = rss.URL
	}
	symbol := cfg.Content.DefaultStock
	var stock settings.Stock
	if err := opts.Store.Get(ctx, settings.KeyStock, &stock); err == nil && stock.Symbol != "" {
		symbol = stock.Symbol
	}

	d := &Device{
		cfg:     cfg,
		opts:    opts,
		shared:  state.NewShared(initial),
		bus:     command.NewBus(command.DefaultBusSize),
		trigger: render.NewTrigger(),
	}

	registry := pages.NewRegistry(
		pages.SetupInfo{SSID: cfg.Network.APSSID, Password: cfg.Network.APPassword, Address: cfg.Network.APAddress},
		pages.BatteryScale{EmptyMV: cfg.Battery.EmptyMV, FullMV: cfg.Battery.FullMV},
	)
	d.renderer = render.NewTask(opts.Panel, registry, d.shared, d.trigger, cfg.Timing.RenderFallback, opts.Metrics)
	d.dispatcher = command.NewDispatcher(d.bus, opts.Presses, d.shared, opts.Store, d.trigger, cfg.Timing.DispatchPoll, opts.Metrics)
	d.refresher = refresh.NewTask(refresh.Sources{
		Feed:    content.NewFeedController(opts.Client, feedURL),
		Weather: content.NewWeatherController(opts.Client, cfg.Content.WeatherBaseURL, cfg.Content.WeatherAPIKey, cfg.Content.WeatherLang),
		Stock:   content.NewStockController(opts.Client, cfg.Content.StockBaseURL, cfg.Content.StockAPIKey, symbol),
		Battery: opts.Battery,
	}, d.shared, d.trigger, cfg.Timing.RefreshEvery, opts.Metrics)

	slog.Info("Device booted",
		logfields.Page(initial.Page.String()),
		logfields.URL(feedURL),
		slog.String("symbol", symbol))
	return d, nil
}

// Run starts the render, dispatch and refresh tasks and the power manager.
// Refreshing waits until the manager is connected or in setup mode. Run
// returns when ctx ends or the power cycle finishes with deep sleep.
func (d *Device) Run(ctx context.Context, server power.Server) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mgr := power.NewManager(power.Config{
		ActiveWindow:  d.cfg.Timing.ActiveWindow,
		ServerWindow:  d.cfg.Timing.ServerWindow,
		SleepDuration: d.cfg.Timing.DeepSleep,
	}, power.Deps{
		Link:    d.opts.Link,
		Sleeper: d.opts.Sleeper,
		Server:  server,
		Prober:  d.opts.Prober,
		State:   d.shared,
		Trigger: d.trigger,
		Metrics: d.opts.Metrics,
	})
	d.manager.Store(mgr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.renderer.Run(gctx) })
	g.Go(func() error { return d.dispatcher.Run(gctx) })
	g.Go(func() error {
		select {
		case <-mgr.Ready():
		case <-gctx.Done():
			return nil
		}
		return d.refresher.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return mgr.Run(gctx)
	})

	err := g.Wait()
	slog.Info("Session ended", logfields.State(mgr.State().String()))
	return err
}

// Sender is the command producer handle for the configuration server.
func (d *Device) Sender() command.Sender { return d.bus.Sender() }

// View copies the current state.
func (d *Device) View() state.View { return d.shared.View() }

// Frame is the last frame pushed to the panel.
func (d *Device) Frame() *image.RGBA { return d.renderer.Frame() }

// PowerState is Idle until Run has started the manager.
func (d *Device) PowerState() power.State {
	if m := d.manager.Load(); m != nil {
		return m.State()
	}
	return power.Idle
}
