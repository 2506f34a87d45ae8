// Package pages draws each display page into a monochrome frame. The render
// task looks pages up by kind through Registry.
package pages

import (
	"fmt"
	"image"
	"time"

	"github.com/photonicat/feed_display/internal/page"
	"github.com/photonicat/feed_display/internal/state"
)

// SetupInfo is shown on the config page.
type SetupInfo struct {
	SSID     string
	Password string
	Address  string
}

// BatteryScale maps the battery voltage linearly onto 0..100%.
type BatteryScale struct {
	EmptyMV uint16
	FullMV  uint16
}

// Percent returns the clamped charge, or -1 when mv is 0 (not sampled).
func (b BatteryScale) Percent(mv uint16) int {
	if mv == 0 || b.FullMV <= b.EmptyMV {
		return -1
	}
	if mv <= b.EmptyMV {
		return 0
	}
	if mv >= b.FullMV {
		return 100
	}
	return int(mv-b.EmptyMV) * 100 / int(b.FullMV-b.EmptyMV)
}

type drawFunc func(r *Registry, dst *image.RGBA, body image.Rectangle, v state.View) error

type Registry struct {
	pages   map[page.Kind]drawFunc
	setup   SetupInfo
	battery BatteryScale
	now     func() time.Time
}

func NewRegistry(setup SetupInfo, battery BatteryScale) *Registry {
	return &Registry{
		pages: map[page.Kind]drawFunc{
			page.Config:        drawConfigPage,
			page.Example:       drawExamplePage,
			page.Feed:          drawFeedPage,
			page.WeatherHourly: drawWeatherHourlyPage,
			page.WeatherDaily:  drawWeatherDailyPage,
			page.Stock:         drawStockPage,
		},
		setup:   setup,
		battery: battery,
		now:     time.Now,
	}
}

// Draw renders the status bar and the page selected by v.Page.
func (r *Registry) Draw(dst *image.RGBA, v state.View) error {
	fn, ok := r.pages[v.Page]
	if !ok {
		return fmt.Errorf("no renderer for page %s", v.Page)
	}

	fill(dst, paper)
	b := dst.Bounds()
	bar := drawStatusBar(r, dst, v)
	body := image.Rect(b.Min.X+2, bar+2, b.Max.X-2, b.Max.Y-1)
	return fn(r, dst, body, v)
}
