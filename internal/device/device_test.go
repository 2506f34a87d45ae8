package device

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonicat/feed_display/internal/command"
	"github.com/photonicat/feed_display/internal/config"
	"github.com/photonicat/feed_display/internal/page"
	"github.com/photonicat/feed_display/internal/power"
	"github.com/photonicat/feed_display/internal/settings"
	"github.com/photonicat/feed_display/internal/store"
)

type panel struct {
	canvas *image.RGBA
	pushes atomic.Int32
}

func (p *panel) Wake() error                { return nil }
func (p *panel) Clear() error               { return nil }
func (p *panel) Canvas() *image.RGBA        { return p.canvas }
func (p *panel) Push(context.Context) error { p.pushes.Add(1); return nil }
func (p *panel) Sleep() error               { return nil }

type link struct {
	mu         sync.Mutex
	connects   int
	accessPts  int
	connectErr error
}

func (l *link) Connect(context.Context, settings.Wifi) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connects++
	return l.connectErr
}
func (l *link) Disconnect(context.Context) error { return nil }
func (l *link) StartAccessPoint(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accessPts++
	return nil
}

type sleeper struct{ slept atomic.Bool }

func (s *sleeper) DeepSleep(context.Context, time.Duration) error { s.slept.Store(true); return nil }

type server struct{ started, stopped atomic.Int32 }

func (s *server) Start() error                   { s.started.Add(1); return nil }
func (s *server) Shutdown(context.Context) error { s.stopped.Add(1); return nil }

type battery struct{}

func (battery) SampleMillivolts() (uint16, error) { return 3900, nil }

const rdf = `<rdf:RDF><channel><title>Ticker</title></channel><item><title>Headline</title></item></rdf:RDF>`

func testConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Content.FeedURL = feedURL
	cfg.Timing.DispatchPoll = 5 * time.Millisecond
	cfg.Timing.ActiveWindow = 600 * time.Millisecond
	cfg.Timing.ServerWindow = 100 * time.Millisecond
	return cfg
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetupModeSession(t *testing.T) {
	st := newStore(t)
	p := &panel{canvas: image.NewRGBA(image.Rect(0, 0, 250, 122))}
	l := &link{}
	srv := &server{}

	dev, err := Boot(context.Background(), Options{
		Config:    testConfig(t, "http://127.0.0.1:1/unused"),
		SetupMode: true,
		Store:     st,
		Panel:     p,
		Link:      l,
		Sleeper:   &sleeper{},
	})
	require.NoError(t, err)
	assert.Equal(t, page.Config, dev.View().Page)
	assert.Equal(t, power.Idle, dev.PowerState())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dev.Run(ctx, srv) }()

	require.Eventually(t, func() bool { return dev.PowerState() == power.SetupMode }, time.Second, 5*time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, dev.Sender().Send(ctx, command.SwitchPage{}))
	}
	require.NoError(t, dev.Sender().Send(ctx, command.SaveWifiConfig{Data: settings.Wifi{SSID: "home", Pass: "password1"}}))

	require.Eventually(t, func() bool {
		var w settings.Wifi
		return st.Get(ctx, settings.KeyWifi, &w) == nil && w.SSID == "home"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, page.Config, dev.View().Page)
	require.Eventually(t, func() bool { return dev.Frame() != nil }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, l.accessPts)
	assert.Equal(t, 0, l.connects)
	assert.Equal(t, int32(1), srv.started.Load())
}

func TestNormalSessionEndsInDeepSleep(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rdf))
	}))
	defer feed.Close()

	ctx := context.Background()
	st := newStore(t)
	require.NoError(t, st.Put(ctx, settings.KeyWifi, settings.Wifi{SSID: "home", Pass: "password1"}))
	require.NoError(t, st.Put(ctx, settings.KeyLastPage, page.Stock))
	require.NoError(t, st.Put(ctx, settings.KeyPersonal, settings.Personal{Location: "Mainz"}))

	presses := &counter{}
	sl := &sleeper{}
	srv := &server{}
	dev, err := Boot(ctx, Options{
		Config:  testConfig(t, feed.URL),
		Store:   st,
		Panel:   &panel{canvas: image.NewRGBA(image.Rect(0, 0, 250, 122))},
		Presses: presses,
		Battery: battery{},
		Link:    &link{},
		Sleeper: sl,
		Client:  feed.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, page.Stock, dev.View().Page)
	assert.Equal(t, "Mainz", dev.View().Location)

	done := make(chan error, 1)
	go func() { done <- dev.Run(ctx, srv) }()

	require.Eventually(t, func() bool { return dev.View().Feed != nil }, time.Second, 5*time.Millisecond)
	presses.n.Add(2)
	require.Eventually(t, func() bool { return dev.View().Page == page.Advance(page.Stock, 2) }, time.Second, 5*time.Millisecond)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not end")
	}

	assert.True(t, sl.slept.Load())
	assert.Equal(t, power.DeepSleep, dev.PowerState())
	assert.Equal(t, uint16(3900), dev.View().BatteryRaw)
	assert.Equal(t, "Ticker", dev.View().Feed.Title)
	assert.Equal(t, int32(1), srv.stopped.Load())

	var persisted page.Kind
	require.NoError(t, st.Get(ctx, settings.KeyLastPage, &persisted))
	assert.Equal(t, page.Advance(page.Stock, 2), persisted)
}

func TestConnectFailureShowsConfigPage(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	require.NoError(t, st.Put(ctx, settings.KeyWifi, settings.Wifi{SSID: "gone"}))

	l := &link{connectErr: assert.AnError}
	dev, err := Boot(ctx, Options{
		Config:  testConfig(t, "http://127.0.0.1:1/unused"),
		Store:   st,
		Panel:   &panel{canvas: image.NewRGBA(image.Rect(0, 0, 250, 122))},
		Link:    l,
		Sleeper: &sleeper{},
	})
	require.NoError(t, err)
	assert.Equal(t, page.Default, dev.View().Page)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- dev.Run(runCtx, &server{}) }()

	require.Eventually(t, func() bool {
		v := dev.View()
		return v.SetupMode && v.Page == page.Config
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, power.SetupMode, dev.PowerState())

	cancel()
	require.NoError(t, <-done)
}

func TestBootRequiresCollaborators(t *testing.T) {
	_, err := Boot(context.Background(), Options{})
	assert.Error(t, err)
}

type counter struct{ n atomic.Uint32 }

func (c *counter) ReadAndReset() uint32 { return c.n.Swap(0) }
