package pages

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const iconView = 48

const (
	strokeStyle = "fill:white;stroke:black;stroke-width:3"
	solidStyle  = "fill:black;stroke:none"
	lineStyle   = "stroke:black;stroke-width:3;stroke-linecap:round"
)

var (
	iconMu    sync.Mutex
	iconCache = map[string]*image.RGBA{}
)

// weatherIconSVG builds the SVG document for an OpenWeather icon code such as
// "10d". Unknown codes get the cloud.
func weatherIconSVG(code string) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(iconView, iconView, 0, 0, iconView, iconView)

	kind, night := "03", false
	if len(code) >= 2 {
		kind = code[:2]
	}
	if len(code) >= 3 && code[2] == 'n' {
		night = true
	}

	switch kind {
	case "01":
		if night {
			moon(canvas, 24, 24, 14)
		} else {
			sun(canvas, 24, 24, 10)
		}
	case "02":
		if night {
			moon(canvas, 16, 16, 10)
		} else {
			sun(canvas, 16, 16, 8)
		}
		cloud(canvas, 28, 30)
	case "03", "04":
		cloud(canvas, 24, 24)
	case "09", "10":
		cloud(canvas, 24, 20)
		for _, x := range []int{14, 24, 34} {
			canvas.Line(x, 34, x-4, 44, lineStyle)
		}
	case "11":
		cloud(canvas, 24, 20)
		canvas.Polygon([]int{26, 18, 24, 20, 30, 26}, []int{28, 38, 38, 47, 35, 35}, solidStyle)
	case "13":
		cloud(canvas, 24, 20)
		for _, x := range []int{14, 24, 34} {
			canvas.Circle(x, 40, 3, solidStyle)
		}
	case "50":
		for _, y := range []int{14, 24, 34} {
			canvas.Line(6, y, 42, y, lineStyle)
		}
	default:
		cloud(canvas, 24, 24)
	}

	canvas.End()
	return buf.Bytes()
}

func sun(canvas *svg.SVG, cx, cy, r int) {
	rays := [][4]int{{0, -1, 0, -1}, {0, 1, 0, 1}, {-1, 0, -1, 0}, {1, 0, 1, 0}}
	for _, d := range rays {
		canvas.Line(cx+d[0]*(r+3), cy+d[1]*(r+3), cx+d[2]*(r+8), cy+d[3]*(r+8), lineStyle)
	}
	canvas.Circle(cx, cy, r, solidStyle)
}

func moon(canvas *svg.SVG, cx, cy, r int) {
	canvas.Circle(cx, cy, r, solidStyle)
	canvas.Circle(cx+r/2, cy-r/3, r*3/4, "fill:white;stroke:none")
}

func cloud(canvas *svg.SVG, cx, cy int) {
	canvas.Circle(cx-8, cy+2, 8, strokeStyle)
	canvas.Circle(cx+2, cy-4, 11, strokeStyle)
	canvas.Roundrect(cx-16, cy+2, 32, 10, 5, 5, strokeStyle)
	canvas.Rect(cx-14, cy+1, 28, 8, "fill:white;stroke:none")
}

// weatherIcon rasterizes the icon for code at size x size pixels.
func weatherIcon(code string, size int) (*image.RGBA, error) {
	key := fmt.Sprintf("%s_%d", code, size)

	iconMu.Lock()
	defer iconMu.Unlock()
	if img, ok := iconCache[key]; ok {
		return img, nil
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(weatherIconSVG(code)))
	if err != nil {
		return nil, fmt.Errorf("parse icon %s: %w", code, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)

	iconCache[key] = img
	return img, nil
}

// drawWeatherIcon draws the icon for code with its top-left corner at x0,y0.
func drawWeatherIcon(frame *image.RGBA, code string, x0, y0, size int) error {
	img, err := weatherIcon(code, size)
	if err != nil {
		return err
	}
	copyImageToImageAt(frame, img, x0, y0)
	return nil
}
