package pages

import (
	"image"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"

	"github.com/photonicat/feed_display/internal/state"
)

// drawExamplePage shows a few primitives and a large clock.
func drawExamplePage(r *Registry, dst *image.RGBA, body image.Rectangle, _ state.View) error {
	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetStrokeColor(ink)
	gc.SetFillColor(ink)
	gc.SetLineWidth(2)

	x0, y0 := float64(body.Min.X), float64(body.Min.Y)
	w, h := float64(body.Dx()), float64(body.Dy())

	draw2dkit.Rectangle(gc, x0+1, y0+1, x0+w-1, y0+h-1)
	gc.Stroke()

	size := h / 3
	gc.MoveTo(x0+10, y0+10+size)
	gc.LineTo(x0+10+size/2, y0+10)
	gc.LineTo(x0+10+size, y0+10+size)
	gc.Close()
	gc.Stroke()

	draw2dkit.Rectangle(gc, x0+20+size, y0+10, x0+20+2*size, y0+10+size)
	gc.Fill()

	draw2dkit.Circle(gc, x0+30+2.5*size, y0+10+size/2, size/2)
	gc.Stroke()

	huge := mustFace("huge")
	clock := "--:--"
	if now := r.now(); now.Year() >= 2024 {
		clock = now.Format("15:04")
	}
	drawText(dst, clock, body.Min.X+body.Dx()/2, body.Min.Y+int(size)+18, huge, ink, true)
	return nil
}
