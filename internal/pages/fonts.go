package pages

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontConfig holds parameters for a face.
type FontConfig struct {
	TTF  []byte
	Size float64
}

var fonts = map[string]FontConfig{
	"small": {TTF: goregular.TTF, Size: 10},
	"reg":   {TTF: goregular.TTF, Size: 12},
	"bold":  {TTF: gobold.TTF, Size: 13},
	"big":   {TTF: gobold.TTF, Size: 20},
	"huge":  {TTF: gobold.TTF, Size: 30},
}

var (
	faceMu    sync.Mutex
	faceCache = map[string]font.Face{}

	wrapFontOnce sync.Once
	wrapFont     *truetype.Font
	wrapFontErr  error
)

// getFontFace returns the named face and its line height.
func getFontFace(name string) (font.Face, int, error) {
	faceMu.Lock()
	defer faceMu.Unlock()

	if face, ok := faceCache[name]; ok {
		return face, lineHeight(face), nil
	}
	cfg, ok := fonts[name]
	if !ok {
		return nil, 0, fmt.Errorf("font %s not found in mapping", name)
	}
	f, err := opentype.Parse(cfg.TTF)
	if err != nil {
		return nil, 0, fmt.Errorf("error parsing font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    cfg.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, 0, err
	}
	faceCache[name] = face
	return face, lineHeight(face), nil
}

func mustFace(name string) font.Face {
	face, _, err := getFontFace(name)
	if err != nil {
		panic(err)
	}
	return face
}

func lineHeight(face font.Face) int {
	m := face.Metrics()
	return m.Ascent.Round() + m.Descent.Round()
}

// headlineFont is the truetype font used for wrapped headline text.
func headlineFont() (*truetype.Font, error) {
	wrapFontOnce.Do(func() {
		wrapFont, wrapFontErr = truetype.Parse(goregular.TTF)
	})
	return wrapFont, wrapFontErr
}
