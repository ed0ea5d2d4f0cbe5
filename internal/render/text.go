package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/racan/racan/backend-go/internal/scene"
)

// Server-side text uses the Go font family: the browser's font files are
// not available offline, so weight and style map onto the four Go faces.

type fontVariant int

const (
	variantRegular fontVariant = iota
	variantBold
	variantItalic
	variantBoldItalic
)

var (
	fontOnce   [4]sync.Once
	fontCache  [4]*sfnt.Font
	fontErrors [4]error
)

func loadFont(v fontVariant) (*sfnt.Font, error) {
	fontOnce[v].Do(func() {
		data := map[fontVariant][]byte{
			variantRegular:    goregular.TTF,
			variantBold:       gobold.TTF,
			variantItalic:     goitalic.TTF,
			variantBoldItalic: gobolditalic.TTF,
		}[v]
		fontCache[v], fontErrors[v] = opentype.Parse(data)
	})
	return fontCache[v], fontErrors[v]
}

func isBold(weight string) bool {
	if weight == "bold" || weight == "bolder" {
		return true
	}
	if n, err := strconv.Atoi(weight); err == nil {
		return n >= 600
	}
	return false
}

func isItalic(style string) bool {
	return style == "italic" || style == "oblique"
}

func pickVariant(weight, style string) fontVariant {
	switch {
	case isBold(weight) && isItalic(style):
		return variantBoldItalic
	case isBold(weight):
		return variantBold
	case isItalic(style):
		return variantItalic
	default:
		return variantRegular
	}
}

func newFace(t *scene.Text, size float64) (font.Face, error) {
	f, err := loadFont(pickVariant(t.FontWeight, t.FontStyle))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawTextTile paints text anchored at the element center with a middle
// baseline, extending per textAlign, with a manual underline when the
// decoration asks for one.
func drawTextTile(tile *image.RGBA, el *scene.Element, scale float64) error {
	t := el.Text
	if t == nil || t.Content == "" || t.FontSize <= 0 {
		return nil
	}
	c, ok := parseColor(t.Color)
	if !ok {
		c = color.NRGBA{0, 0, 0, 255}
	}

	face, err := newFace(t, t.FontSize*scale)
	if err != nil {
		return err
	}
	defer face.Close()

	d := font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(c),
		Face: face,
	}
	width := float64(d.MeasureString(t.Content)) / 64

	b := tile.Bounds()
	cx := float64(b.Dx()) / 2
	var startX float64
	switch t.TextAlign {
	case "left":
		startX = cx
	case "right":
		startX = cx - width
	default:
		startX = cx - width/2
	}

	m := face.Metrics()
	// Middle baseline: center the ascent/descent box on the tile's middle.
	baseline := float64(b.Dy())/2 + (float64(m.Ascent)-float64(m.Descent))/128

	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(startX * 64),
		Y: fixed.Int26_6(baseline * 64),
	}
	d.DrawString(t.Content)

	if t.Underlined() {
		size := t.FontSize * scale
		y := baseline + size*0.1
		thickness := math.Max(1, size*0.05)
		line := image.Rect(
			int(math.Round(startX)), int(math.Round(y)),
			int(math.Round(startX+width)), int(math.Round(y+thickness)),
		)
		draw.Draw(tile, line.Intersect(b), image.NewUniform(c), image.Point{}, draw.Over)
	}
	return nil
}
