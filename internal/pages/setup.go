package pages

import (
	"image"

	"github.com/photonicat/feed_display/internal/state"
)

func drawConfigPage(r *Registry, dst *image.RGBA, body image.Rectangle, _ state.View) error {
	bold := mustFace("bold")
	reg := mustFace("reg")

	_, y := drawText(dst, "Setup mode", body.Min.X, body.Min.Y, bold, ink, false)
	y += 4
	rows := [][2]string{
		{"WiFi", r.setup.SSID},
		{"Password", r.setup.Password},
		{"Open", "http://" + r.setup.Address},
	}
	for _, row := range rows {
		drawText(dst, row[0], body.Min.X, y, reg, ink, false)
		_, y = drawText(dst, row[1], body.Min.X+64, y, reg, ink, false)
		y += 3
	}
	return nil
}
