package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"

	"github.com/photonicat/feed_display/internal/config"
	"github.com/photonicat/feed_display/internal/logfields"
)

// The pages are laid out in landscape; the 2.13" panel is mounted rotated.
const (
	PANEL_WIDTH  = 250
	PANEL_HEIGHT = 122
)

// panelCloser is a render.Panel that owns hardware or files.
type panelCloser interface {
	Wake() error
	Clear() error
	Canvas() *image.RGBA
	Push(ctx context.Context) error
	Sleep() error
	Close() error
}

func openPanel(cfg *config.Config) (panelCloser, error) {
	switch cfg.Display.Panel {
	case "png":
		return newPNGPanel(cfg.Display.PNGPath), nil
	case "epaper":
		return newEpaperPanel(cfg.Display.SPIPort)
	default:
		return nil, fmt.Errorf("unknown panel %q", cfg.Display.Panel)
	}
}

type epaperPanel struct {
	mu       sync.Mutex
	port     spi.PortCloser
	hat      *waveshare2in13v4.Dev
	canvas   *image.RGBA
	sleeping bool
}

func newEpaperPanel(spiPort string) (*epaperPanel, error) {
	// setup board
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", spiPort, err)
	}
	opts := waveshare2in13v4.EPD2in13v4
	hat, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("epaper hat: %w", err)
	}
	if err := hat.Init(); err != nil {
		port.Close()
		return nil, fmt.Errorf("epaper init: %w", err)
	}
	// one full clear at power-on removes the ghost of the previous session
	if err := hat.Clear(color.White); err != nil {
		slog.Warn("Initial panel clear failed", logfields.Error(err))
	}
	return &epaperPanel{
		port:   port,
		hat:    hat,
		canvas: image.NewRGBA(image.Rect(0, 0, PANEL_WIDTH, PANEL_HEIGHT)),
	}, nil
}

func (p *epaperPanel) Wake() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.sleeping {
		return nil
	}
	if err := p.hat.Init(); err != nil {
		return err
	}
	p.sleeping = false
	return nil
}

func (p *epaperPanel) Clear() error {
	fillWhite(p.canvas)
	return nil
}

func (p *epaperPanel) Canvas() *image.RGBA { return p.canvas }

func (p *epaperPanel) Push(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bounds := p.hat.Bounds()
	img := image1bit.NewVerticalLSB(bounds)
	draw.Draw(img, img.Bounds(), landscapeToPortrait(p.canvas), image.Point{}, draw.Src)
	return p.hat.Draw(bounds, img, image.Point{})
}

func (p *epaperPanel) Sleep() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sleeping {
		return nil
	}
	if err := p.hat.Sleep(); err != nil {
		return err
	}
	p.sleeping = true
	return nil
}

func (p *epaperPanel) Close() error {
	if err := p.hat.Halt(); err != nil {
		slog.Warn("Panel halt failed", logfields.Error(err))
	}
	return p.port.Close()
}

// pngPanel writes every pushed frame to a file, for hosts without the panel.
type pngPanel struct {
	path   string
	canvas *image.RGBA
	pushes int
}

func newPNGPanel(path string) *pngPanel {
	return &pngPanel{path: path, canvas: image.NewRGBA(image.Rect(0, 0, PANEL_WIDTH, PANEL_HEIGHT))}
}

func (p *pngPanel) Wake() error { return nil }

func (p *pngPanel) Clear() error {
	fillWhite(p.canvas)
	return nil
}

func (p *pngPanel) Canvas() *image.RGBA { return p.canvas }

func (p *pngPanel) Push(context.Context) error {
	p.pushes++
	return saveFrameToPng(p.canvas, p.path)
}

func (p *pngPanel) Sleep() error { return nil }

func (p *pngPanel) Close() error { return nil }
