package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"
)

func fillWhite(frame *image.RGBA) {
	draw.Draw(frame, frame.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
}

// landscapeToPortrait rotates src 90 degrees clockwise.
func landscapeToPortrait(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			dst.SetRGBA(x, y, src.RGBAAt(b.Min.X+y, b.Min.Y+h-1-x))
		}
	}
	return dst
}

// saveFrameToPng writes through a temp file so a reader never sees half a png.
func saveFrameToPng(frame *image.RGBA, filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".frame-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := png.Encode(tmp, frame); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

func encodePNG(frame image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// faviconSVG is a tiny newspaper glyph for the config pages.
func faviconSVG() []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(32, 32, 0, 0, 32, 32)
	canvas.Roundrect(2, 4, 28, 24, 3, 3, "fill:white;stroke:black;stroke-width:2")
	canvas.Rect(6, 8, 10, 8, "fill:black")
	for _, y := range []int{10, 14, 20, 24} {
		x0 := 18
		if y > 16 {
			x0 = 6
		}
		canvas.Line(x0, y, 26, y, "stroke:black;stroke-width:2")
	}
	canvas.End()
	return buf.Bytes()
}
