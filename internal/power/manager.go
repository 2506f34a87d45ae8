package power

import (
	"context"
	"log/slog"
	"sync"
	"time"

	derrors "github.com/photonicat/feed_display/internal/errors"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/metrics"
	"github.com/photonicat/feed_display/internal/page"
	"github.com/photonicat/feed_display/internal/settings"
	"github.com/photonicat/feed_display/internal/state"
)

// Link is the Wi-Fi collaborator.
type Link interface {
	Connect(ctx context.Context, creds settings.Wifi) error
	Disconnect(ctx context.Context) error
	StartAccessPoint(ctx context.Context) error
}

// Sleeper suspends the machine. Returning from DeepSleep means the device
// woke up and the session is over.
type Sleeper interface {
	DeepSleep(ctx context.Context, d time.Duration) error
}

// Server is the configuration HTTP server.
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// Prober checks reachability of the outside world after association.
type Prober interface {
	Probe(ctx context.Context) error
}

type Signaler interface {
	Signal()
}

type Config struct {
	ActiveWindow  time.Duration
	ServerWindow  time.Duration
	SleepDuration time.Duration
}

// Defaults
const (
	DefaultActiveWindow  = 3 * time.Minute
	DefaultServerWindow  = 2 * time.Minute
	DefaultSleepDuration = 30 * time.Minute
)

type Deps struct {
	Link    Link
	Sleeper Sleeper
	Server  Server
	Prober  Prober // optional
	State   *state.Shared
	Trigger Signaler
	Metrics metrics.Recorder
}

type Manager struct {
	cfg  Config
	deps Deps

	mu      sync.Mutex
	current State

	ready     chan struct{}
	readyOnce sync.Once

	// OnTransition, when set before Run, is called after every state change.
	OnTransition func(from, to State)
}

func NewManager(cfg Config, deps Deps) *Manager {
	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = DefaultActiveWindow
	}
	if cfg.ServerWindow <= 0 {
		cfg.ServerWindow = DefaultServerWindow
	}
	if cfg.SleepDuration <= 0 {
		cfg.SleepDuration = DefaultSleepDuration
	}
	deps.Metrics = metrics.OrNoop(deps.Metrics)
	return &Manager{cfg: cfg, deps: deps, ready: make(chan struct{})}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Ready is closed once the device is either connected or in setup mode, the
// point from which content refreshes make sense.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) transition(to State) error {
	m.mu.Lock()
	from := m.current
	if !canTransition(from, to) {
		m.mu.Unlock()
		return derrors.InvariantViolation("illegal power transition").
			WithContext("from", from.String()).
			WithContext("to", to.String())
	}
	m.current = to
	m.mu.Unlock()

	slog.Info("Power state changed", logfields.From(from.String()), logfields.To(to.String()))
	m.deps.Metrics.SetPowerState(to.String())
	if to == SetupMode || to == Connected {
		m.readyOnce.Do(func() { close(m.ready) })
	}
	if m.OnTransition != nil {
		m.OnTransition(from, to)
	}
	return nil
}

// Run drives one session. In setup mode it returns when ctx ends. In normal
// mode it returns after the deep sleep request completes, which on hardware
// means the device woke up and the process should restart.
func (m *Manager) Run(ctx context.Context) error {
	v := m.deps.State.View()
	if v.SetupMode {
		return m.setupMode(ctx)
	}
	if v.Wifi == nil {
		slog.Warn("No wifi credentials stored, entering setup mode")
		m.fallbackToSetup()
		return m.setupMode(ctx)
	}

	if err := m.transition(Connecting); err != nil {
		return err
	}
	if err := m.deps.Link.Connect(ctx, *v.Wifi); err != nil {
		cerr := derrors.ConnectFailed(v.Wifi.SSID, err)
		slog.Error("Wifi connection failed, falling back to access point",
			logfields.SSID(v.Wifi.SSID), logfields.Error(cerr))
		m.fallbackToSetup()
		return m.setupMode(ctx)
	}
	if m.deps.Prober != nil {
		if err := m.deps.Prober.Probe(ctx); err != nil {
			slog.Warn("Connectivity probe failed", logfields.Error(err))
		}
	}
	if err := m.transition(Connected); err != nil {
		return err
	}
	return m.activeWindow(ctx)
}

// fallbackToSetup switches the live state to setup mode so the config page is
// shown instead of stale content.
func (m *Manager) fallbackToSetup() {
	m.deps.State.Update(func(st *state.ApplicationState) {
		st.SetupMode = true
		st.Page = page.Config
	})
	m.deps.Trigger.Signal()
}

func (m *Manager) setupMode(ctx context.Context) error {
	if err := m.transition(SetupMode); err != nil {
		return err
	}
	if err := m.deps.Link.StartAccessPoint(ctx); err != nil {
		return derrors.PlatformInit("access point", err)
	}
	if err := m.deps.Server.Start(); err != nil {
		return derrors.PlatformInit("config server", err)
	}

	<-ctx.Done()
	m.stopServer()
	return nil
}

func (m *Manager) activeWindow(ctx context.Context) error {
	serverUp := true
	if err := m.deps.Server.Start(); err != nil {
		slog.Error("Config server failed to start", logfields.Error(err))
		serverUp = false
	}

	active := time.NewTimer(m.cfg.ActiveWindow)
	defer active.Stop()
	server := time.NewTimer(m.cfg.ServerWindow)
	defer server.Stop()

	slog.Info("Active window started",
		slog.Duration("active_window", m.cfg.ActiveWindow),
		slog.Duration("server_window", m.cfg.ServerWindow))

wait:
	for {
		select {
		case <-server.C:
			if serverUp {
				slog.Info("Config server window elapsed")
				m.stopServer()
				serverUp = false
			}
		case <-active.C:
			break wait
		case <-ctx.Done():
			if serverUp {
				m.stopServer()
			}
			return nil
		}
	}

	if serverUp {
		m.stopServer()
	}
	if err := m.transition(Disconnecting); err != nil {
		return err
	}
	if err := m.deps.Link.Disconnect(ctx); err != nil {
		slog.Warn("Wifi disconnect failed", logfields.Error(err))
	}

	if err := m.transition(DeepSleep); err != nil {
		return err
	}
	slog.Info("Entering deep sleep", logfields.Duration(m.cfg.SleepDuration))
	if err := m.deps.Sleeper.DeepSleep(ctx, m.cfg.SleepDuration); err != nil {
		return derrors.Wrap(err, derrors.CategoryPlatform, derrors.SeverityError, "deep sleep failed")
	}
	return nil
}

func (m *Manager) stopServer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.deps.Server.Shutdown(ctx); err != nil {
		slog.Warn("Config server shutdown failed", logfields.Error(err))
	}
}
