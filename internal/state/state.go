// Package state holds the single mutable application record shared by the
// dispatch loop, the refresh task and the render task.
//
// Every access goes through Shared, which serializes readers and writers on
// one mutex. Callers never perform I/O while holding it: values are built
// first and installed with a short Update, and readers take a View copy.
package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/photonicat/feed_display/internal/content"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/page"
	"github.com/photonicat/feed_display/internal/settings"
	"github.com/photonicat/feed_display/internal/store"
)

// ApplicationState is the whole mutable device record. Content snapshots are
// immutable once published and are shared by pointer.
type ApplicationState struct {
	Page       page.Kind
	SetupMode  bool
	Wifi       *settings.Wifi
	Location   string
	Feed       *content.Feed
	Weather    *content.Weather
	Stock      *content.Stock
	BatteryRaw uint16 // millivolts, 0 when unknown
}

// View is a read-only copy of the state taken under the lock.
type View = ApplicationState

type Shared struct {
	mu sync.Mutex
	st ApplicationState
}

func NewShared(initial ApplicationState) *Shared {
	return &Shared{st: initial}
}

// View copies the current state.
func (s *Shared) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.st
	if s.st.Wifi != nil {
		w := *s.st.Wifi
		v.Wifi = &w
	}
	return v
}

// Update runs fn with the lock held. fn must not block.
func (s *Shared) Update(fn func(st *ApplicationState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

// Page returns just the current page.
func (s *Shared) Page() page.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Page
}

// Load builds the boot state from the store. Absent keys are normal on first
// boot; unreadable values are logged and treated as absent.
func Load(ctx context.Context, st store.Store, setupMode bool) ApplicationState {
	var persisted page.Kind
	found := get(ctx, st, settings.KeyLastPage, &persisted)

	state := ApplicationState{
		Page:      page.Restore(persisted, found, setupMode),
		SetupMode: setupMode,
	}

	var wifi settings.Wifi
	if get(ctx, st, settings.KeyWifi, &wifi) {
		state.Wifi = &wifi
	}

	var personal settings.Personal
	if get(ctx, st, settings.KeyPersonal, &personal) {
		state.Location = personal.Location
	}

	slog.Info("Restored state",
		logfields.Page(state.Page.String()),
		slog.Bool("setup_mode", setupMode),
		slog.Bool("wifi_configured", state.Wifi != nil))
	return state
}

func get(ctx context.Context, st store.Store, key string, v any) bool {
	err := st.Get(ctx, key, v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrNotFound):
		slog.Debug("No persisted value", logfields.Key(key))
	default:
		slog.Warn("Ignoring unreadable persisted value", logfields.Key(key), logfields.Error(err))
	}
	return false
}
