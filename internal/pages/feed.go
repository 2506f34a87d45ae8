package pages

import (
	"image"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/photonicat/feed_display/internal/state"
)

const headlineSize = 11.0

func drawFeedPage(_ *Registry, dst *image.RGBA, body image.Rectangle, v state.View) error {
	if v.Feed == nil {
		drawNoData(dst, body, "Waiting for news...")
		return nil
	}

	title := mustFace("bold")
	_, y := drawText(dst, ellipsize(v.Feed.Title, body.Dx(), title), body.Min.X, body.Min.Y, title, ink, false)
	y += 2

	fnt, err := headlineFont()
	if err != nil {
		return err
	}
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(fnt)
	c.SetFontSize(headlineSize)
	c.SetClip(body)
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(ink))
	c.SetHinting(font.HintingFull)

	face := truetype.NewFace(fnt, &truetype.Options{Size: headlineSize, DPI: 72, Hinting: font.HintingFull})
	ascent := face.Metrics().Ascent.Round()
	step := lineHeight(face)
	indent := 8

	for _, headline := range v.Feed.Headlines {
		lines := wrapText(headline, body.Dx()-indent, face)
		if len(lines) == 0 {
			continue
		}
		if y+step > body.Max.Y {
			break
		}
		drawRect(dst, body.Min.X+1, y+ascent/2, 3, 3, ink)
		for _, line := range lines {
			if y+step > body.Max.Y {
				break
			}
			if _, err := c.DrawString(line, freetype.Pt(body.Min.X+indent, y+ascent)); err != nil {
				return err
			}
			y += step
		}
		y += 2
	}
	return nil
}

func drawNoData(dst *image.RGBA, body image.Rectangle, msg string) {
	face := mustFace("reg")
	cx := body.Min.X + body.Dx()/2
	cy := body.Min.Y + body.Dy()/2 - lineHeight(face)/2
	drawText(dst, msg, cx, cy, face, grey, true)
}
