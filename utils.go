package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/photonicat/feed_display/internal/config"
	"github.com/photonicat/feed_display/internal/input"
	"github.com/photonicat/feed_display/internal/logfields"
)

var errNoInputDevice = errors.New("input device not found")

// validateJSON rejects oversized, malformed or script-carrying bodies before
// they are decoded into a settings record.
func validateJSON(body []byte) error {
	if len(body) == 0 {
		return errors.New("empty body")
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("body larger than %d bytes", maxBodyBytes)
	}
	if !json.Valid(body) {
		return errors.New("invalid JSON")
	}
	lower := bytes.ToLower(body)
	for _, bad := range [][]byte{[]byte("<script"), []byte("javascript:"), []byte("eval(")} {
		if bytes.Contains(lower, bad) {
			return errors.New("body contains script")
		}
	}
	return nil
}

// setupPinActive samples the setup jumper once at boot. Any error reads as
// "not in setup mode".
func setupPinActive(cfg *config.Config) bool {
	if cfg.Button.SetupPin < 0 {
		return false
	}
	active, err := input.ReadLevel(input.GPIOConfig{
		Chip:      cfg.Button.Chip,
		Pin:       cfg.Button.SetupPin,
		ActiveLow: cfg.Button.SetupActive,
	})
	if err != nil {
		slog.Warn("Setup pin unreadable", logfields.Error(err))
		return false
	}
	if active {
		slog.Info("Setup pin active")
	}
	return active
}

// openButton starts the configured edge source. A nil closer with a nil error
// means the button is disabled.
func openButton(ctx context.Context, cfg *config.Config, d *input.Debouncer) (io.Closer, error) {
	switch cfg.Button.Source {
	case "gpio":
		return input.OpenGPIO(input.GPIOConfig{
			Chip:      cfg.Button.Chip,
			Pin:       cfg.Button.Pin,
			ActiveLow: cfg.Button.ActiveLow,
		}, d)
	case "evdev":
		b, err := openEvdevButton(cfg.Button.EvdevName, d)
		if err != nil {
			return nil, err
		}
		go b.run(ctx)
		return b, nil
	default:
		return nil, nil
	}
}

// evdevButton feeds the power key of an input device into the debouncer.
type evdevButton struct {
	dev *evdev.InputDevice
	d   *input.Debouncer
}

func openEvdevButton(name string, d *input.Debouncer) (*evdevButton, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var devPath string
	for _, ip := range paths {
		if ip.Name == name {
			devPath = ip.Path
			break
		}
	}
	if devPath == "" {
		return nil, fmt.Errorf("%w: %q", errNoInputDevice, name)
	}

	dev, err := evdev.Open(devPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devPath, err)
	}
	if err := dev.Grab(); err != nil {
		slog.Warn("Failed to grab input device", slog.String("path", devPath), logfields.Error(err))
	}
	slog.Info("Using input device", slog.String("path", devPath), slog.String("name", name))
	return &evdevButton{dev: dev, d: d}, nil
}

func (b *evdevButton) run(ctx context.Context) {
	for ctx.Err() == nil {
		ev, err := b.dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("Input read error", logfields.Error(err))
			time.Sleep(100 * time.Millisecond)
			continue
		}
		handleKeyEvent(b.d, ev)
	}
}

// handleKeyEvent forwards press and release of the power key with the
// kernel's event time. Autorepeat (value 2) is not an edge.
func handleKeyEvent(d *input.Debouncer, ev *evdev.InputEvent) {
	if ev.Type != evdev.EV_KEY || ev.Code != evdev.KEY_POWER {
		return
	}
	if ev.Value != 0 && ev.Value != 1 {
		return
	}
	d.OnEdge(time.Duration(ev.Time.Nano()))
}

func (b *evdevButton) Close() error {
	_ = b.dev.Ungrab()
	return b.dev.Close()
}
