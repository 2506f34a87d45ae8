package pages

import (
	"fmt"
	"image"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/photonicat/feed_display/internal/state"
)

const (
	batteryWidth  = 22
	batteryHeight = 10
)

// drawStatusBar draws date, time, location and battery along the top edge and
// returns the y coordinate below it.
func drawStatusBar(r *Registry, dst *image.RGBA, v state.View) int {
	face := mustFace("small")
	b := dst.Bounds()
	now := r.now()

	timeStr := "--:--"
	if now.Year() >= 2024 {
		timeStr = now.Format("Mon 02.01. 15:04")
	}
	_, bottom := drawText(dst, timeStr, b.Min.X+2, b.Min.Y+1, face, ink, false)

	x := b.Max.X - 2 - batteryWidth
	pct := r.battery.Percent(v.BatteryRaw)
	drawBattery(dst, x, b.Min.Y+2, pct)

	label := "--%"
	if pct >= 0 {
		label = fmt.Sprintf("%d%%", pct)
	}
	x = drawTextRight(dst, label, x-3, b.Min.Y+1, face, ink)

	if v.Location != "" {
		loc := ellipsize(v.Location, 80, face)
		drawTextRight(dst, loc, x-6, b.Min.Y+1, face, ink)
	}

	drawRect(dst, b.Min.X, bottom+1, b.Dx(), 1, ink)
	return bottom + 2
}

// drawBattery draws an outlined cell filled to pct; pct < 0 leaves it empty.
func drawBattery(dst *image.RGBA, x0, y0, pct int) {
	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetStrokeColor(ink)
	gc.SetLineWidth(1)
	drawRoundedRect(gc, float64(x0)+0.5, float64(y0)+0.5, batteryWidth-3, batteryHeight-1, 2)
	gc.Stroke()

	drawRect(dst, x0+batteryWidth-2, y0+3, 2, batteryHeight-6, ink)

	if pct > 0 {
		w := (batteryWidth - 7) * pct / 100
		if w < 1 {
			w = 1
		}
		drawRect(dst, x0+2, y0+2, w, batteryHeight-4, ink)
	}
}
