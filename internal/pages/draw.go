package pages

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/llgcode/draw2d/draw2dimg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	ink   = color.RGBA{0, 0, 0, 255}
	paper = color.RGBA{255, 255, 255, 255}
	grey  = color.RGBA{128, 128, 128, 255}
)

// drawText draws text with its top edge at posY. With center set, posX is the
// horizontal middle of the string. It returns the bottom-right corner.
func drawText(img *image.RGBA, text string, posX, posY int, face font.Face, clr color.Color, center bool) (finishX, finishY int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: face,
	}
	metrics := face.Metrics()
	width := d.MeasureString(text).Round()

	x := posX
	if center {
		x = posX - width/2
	}
	d.Dot = fixed.P(x, posY+metrics.Ascent.Round())
	d.DrawString(text)

	return x + width, posY + metrics.Ascent.Round() + metrics.Descent.Round()
}

// drawTextRight right-aligns text at posX.
func drawTextRight(img *image.RGBA, text string, posX, posY int, face font.Face, clr color.Color) int {
	width := font.MeasureString(face, text).Round()
	drawText(img, text, posX-width, posY, face, clr, false)
	return posX - width
}

func drawRect(img *image.RGBA, x0, y0, width, height int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x0+width, y0+height), image.NewUniform(c), image.Point{}, draw.Src)
}

func fill(img *image.RGBA, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// copyImageToImageAt blends img over frame with its origin at x0,y0.
// Fully transparent source pixels are skipped.
func copyImageToImageAt(frame, img *image.RGBA, x0, y0 int) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			sample := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			if sample.A == 0 {
				continue
			}
			if sample.A == 255 {
				frame.SetRGBA(x0+x, y0+y, sample)
				continue
			}
			dst := frame.RGBAAt(x0+x, y0+y)
			a := uint16(sample.A)
			invA := uint16(255 - sample.A)
			frame.SetRGBA(x0+x, y0+y, color.RGBA{
				R: uint8((uint16(sample.R)*a + uint16(dst.R)*invA) / 255),
				G: uint8((uint16(sample.G)*a + uint16(dst.G)*invA) / 255),
				B: uint8((uint16(sample.B)*a + uint16(dst.B)*invA) / 255),
				A: uint8(uint16(sample.A) + (uint16(dst.A)*invA)/255),
			})
		}
	}
}

// drawRoundedRect adds a rounded rectangle path to gc; angles are radians.
func drawRoundedRect(gc *draw2dimg.GraphicContext, x, y, w, h, r float64) {
	gc.MoveTo(x+r, y)
	gc.LineTo(x+w-r, y)
	gc.ArcTo(x+w-r, y+r, r, r, -math.Pi/2, math.Pi/2)
	gc.LineTo(x+w, y+h-r)
	gc.ArcTo(x+w-r, y+h-r, r, r, 0, math.Pi/2)
	gc.LineTo(x+r, y+h)
	gc.ArcTo(x+r, y+h-r, r, r, math.Pi/2, math.Pi/2)
	gc.LineTo(x, y+r)
	gc.ArcTo(x+r, y+r, r, r, math.Pi, math.Pi/2)
	gc.Close()
}

// wrapText splits text into lines no wider than maxWidth. Words only break
// at spaces; a single word wider than a line is cut with a hyphen.
func wrapText(text string, maxWidth int, face font.Face) []string {
	drawer := &font.Drawer{Face: face}
	fits := func(s string) bool { return drawer.MeasureString(s).Round() <= maxWidth }

	var lines []string
	current := ""
	for _, word := range strings.FieldsFunc(text, unicode.IsSpace) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if fits(candidate) {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		for utf8.RuneCountInString(word) > 1 && !fits(word) {
			runes := []rune(word)
			cut := len(runes) - 1
			for cut > 1 && !fits(string(runes[:cut])+"-") {
				cut--
			}
			lines = append(lines, string(runes[:cut])+"-")
			word = string(runes[cut:])
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// ellipsize shortens text to fit maxWidth, ending it with "...".
func ellipsize(text string, maxWidth int, face font.Face) string {
	if font.MeasureString(face, text).Round() <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := strings.TrimSpace(string(runes)) + "..."
		if font.MeasureString(face, s).Round() <= maxWidth {
			return s
		}
	}
	return ""
}
