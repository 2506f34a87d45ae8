package pages

import (
	"fmt"
	"image"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/photonicat/feed_display/internal/content"
	"github.com/photonicat/feed_display/internal/state"
)

func drawStockPage(_ *Registry, dst *image.RGBA, body image.Rectangle, v state.View) error {
	if v.Stock == nil || len(v.Stock.Points) == 0 {
		drawNoData(dst, body, "Waiting for quotes...")
		return nil
	}
	s := v.Stock
	bold := mustFace("bold")
	small := mustFace("small")

	x, y := drawText(dst, s.Symbol, body.Min.X, body.Min.Y, bold, ink, false)
	drawText(dst, fmt.Sprintf("%.2f", s.Last()), x+8, body.Min.Y, bold, ink, false)
	drawTextRight(dst, fmt.Sprintf("%+.2f", s.Change()), body.Max.X, body.Min.Y+2, small, ink)

	chart := image.Rect(body.Min.X+36, y+4, body.Max.X, body.Max.Y-2)
	lo, hi := priceRange(s.Points)
	drawTextRight(dst, fmt.Sprintf("%.1f", hi), chart.Min.X-3, chart.Min.Y-2, small, ink)
	drawTextRight(dst, fmt.Sprintf("%.1f", lo), chart.Min.X-3, chart.Max.Y-lineHeight(small)+2, small, ink)

	drawChart(dst, chart, s.Points, lo, hi)
	return nil
}

func priceRange(points []content.PlotPoint) (lo, hi float64) {
	lo, hi = points[0].Y, points[0].Y
	for _, p := range points[1:] {
		if p.Y < lo {
			lo = p.Y
		}
		if p.Y > hi {
			hi = p.Y
		}
	}
	return lo, hi
}

// drawChart plots the closes as a polyline over their day offsets.
func drawChart(dst *image.RGBA, area image.Rectangle, points []content.PlotPoint, lo, hi float64) {
	gc := draw2dimg.NewGraphicContext(dst)

	gc.SetStrokeColor(grey)
	gc.SetLineWidth(1)
	gc.MoveTo(float64(area.Min.X), float64(area.Min.Y))
	gc.LineTo(float64(area.Min.X), float64(area.Max.Y))
	gc.LineTo(float64(area.Max.X), float64(area.Max.Y))
	gc.Stroke()

	minX, maxX := points[0].X, points[len(points)-1].X
	spanX := float64(maxX - minX)
	if spanX == 0 {
		spanX = 1
	}
	spanY := hi - lo
	if spanY == 0 {
		spanY = 1
	}

	px := func(p content.PlotPoint) float64 {
		return float64(area.Min.X) + 1 + float64(p.X-minX)/spanX*float64(area.Dx()-2)
	}
	py := func(p content.PlotPoint) float64 {
		return float64(area.Max.Y) - 1 - (p.Y-lo)/spanY*float64(area.Dy()-2)
	}

	gc.SetStrokeColor(ink)
	gc.SetLineWidth(1.5)
	gc.MoveTo(px(points[0]), py(points[0]))
	for _, p := range points[1:] {
		gc.LineTo(px(p), py(p))
	}
	gc.Stroke()
}
