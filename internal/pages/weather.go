package pages

import (
	"fmt"
	"image"
	"math"

	"github.com/photonicat/feed_display/internal/content"
	"github.com/photonicat/feed_display/internal/state"
)

func temp(t float64) string {
	return fmt.Sprintf("%d°", int(math.Round(t)))
}

// drawCurrent draws the current conditions in the left part of body and
// returns the x where the forecast columns start.
func drawCurrent(dst *image.RGBA, body image.Rectangle, w *content.Weather) (int, error) {
	const iconSize = 44
	if err := drawWeatherIcon(dst, w.Current.Icon, body.Min.X, body.Min.Y, iconSize); err != nil {
		return 0, err
	}
	huge := mustFace("huge")
	small := mustFace("small")

	x, _ := drawText(dst, temp(w.Current.Temp), body.Min.X+iconSize+2, body.Min.Y+4, huge, ink, false)
	y := body.Min.Y + iconSize + 2
	_, y = drawText(dst, ellipsize(w.Current.Description, x-body.Min.X, small), body.Min.X, y, small, ink, false)
	drawText(dst, fmt.Sprintf("%s / %s  %d%%", temp(w.Current.TempMin), temp(w.Current.TempMax), w.Current.Humidity),
		body.Min.X, y+1, small, ink, false)
	return x + 6, nil
}

// drawColumns lays out up to four forecast columns between x0 and the right
// edge of body.
func drawColumns(dst *image.RGBA, body image.Rectangle, x0 int, entries []content.Forecast, label func(content.Forecast) string, value func(content.Forecast) string) error {
	if len(entries) == 0 {
		drawNoData(dst, image.Rect(x0, body.Min.Y, body.Max.X, body.Max.Y), "No forecast")
		return nil
	}
	const iconSize = 28
	small := mustFace("small")
	colWidth := (body.Max.X - x0) / len(entries)

	for i, e := range entries {
		cx := x0 + i*colWidth + colWidth/2
		_, y := drawText(dst, label(e), cx, body.Min.Y, small, ink, true)
		if err := drawWeatherIcon(dst, e.Icon, cx-iconSize/2, y+2, iconSize); err != nil {
			return err
		}
		drawText(dst, value(e), cx, y+iconSize+4, small, ink, true)
	}
	return nil
}

func drawWeatherHourlyPage(_ *Registry, dst *image.RGBA, body image.Rectangle, v state.View) error {
	if v.Weather == nil {
		drawNoData(dst, body, "Waiting for weather...")
		return nil
	}
	x, err := drawCurrent(dst, body, v.Weather)
	if err != nil {
		return err
	}
	return drawColumns(dst, body, x, v.Weather.Hourly,
		func(f content.Forecast) string { return f.At.Format("15:04") },
		func(f content.Forecast) string { return temp(f.Temp) })
}

func drawWeatherDailyPage(_ *Registry, dst *image.RGBA, body image.Rectangle, v state.View) error {
	if v.Weather == nil {
		drawNoData(dst, body, "Waiting for weather...")
		return nil
	}
	bold := mustFace("bold")
	_, y := drawText(dst, ellipsize(v.Weather.Location, body.Dx(), bold), body.Min.X, body.Min.Y, bold, ink, false)
	rest := image.Rect(body.Min.X, y+4, body.Max.X, body.Max.Y)
	return drawColumns(dst, rest, rest.Min.X, v.Weather.Daily,
		func(f content.Forecast) string { return f.At.Format("Mon 02.") },
		func(f content.Forecast) string { return temp(f.Min) + " / " + temp(f.Max) })
}
