package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racan/racan/backend-go/internal/assetfetch"
	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/scene"
)

func shapeEl(x, y, w, h float64, fill string) scene.Element {
	return scene.Element{
		Kind: scene.KindShape, X: x, Y: y, Width: w, Height: h,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Shape: &scene.Shape{
			Kind: geometry.ShapeRectangle, Fill: fill,
			FillOpacity: 100, StrokeOpacity: 100,
		},
	}
}

func decodePNG(t *testing.T, raw []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func assertPixel(t *testing.T, img image.Image, x, y int, want color.NRGBA, tol int) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	for name, pair := range map[string][2]uint8{
		"r": {want.R, got.R}, "g": {want.G, got.G},
		"b": {want.B, got.B}, "a": {want.A, got.A},
	} {
		diff := int(pair[0]) - int(pair[1])
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, tol, "channel %s at (%d,%d): want %v got %v", name, x, y, want, got)
	}
}

func TestRenderSingleRectangleOnWhite(t *testing.T) {
	s := scene.New(400, 300)
	s.AddElement(shapeEl(100, 100, 150, 100, "#3b82f6"))

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)

	img := decodePNG(t, raw)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
	assertPixel(t, img, 150, 120, color.NRGBA{0x3b, 0x82, 0xf6, 255}, 2)
	assertPixel(t, img, 10, 10, color.NRGBA{255, 255, 255, 255}, 0)
}

func TestRenderZOrderAfterSendToBack(t *testing.T) {
	s := scene.New(200, 200)
	s.AddElement(shapeEl(20, 20, 100, 100, "#ff0000")) // A
	b := s.AddElement(shapeEl(60, 60, 100, 100, "#00ff00"))
	require.True(t, s.Reorder(b, scene.ToBack))

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)

	// (80,80) is covered by both; A must win now that B is behind it.
	assertPixel(t, decodePNG(t, raw), 80, 80, color.NRGBA{255, 0, 0, 255}, 2)
}

func TestRenderScaleDoublesDimensions(t *testing.T) {
	s := scene.New(100, 80)
	s.AddElement(shapeEl(0, 0, 50, 40, "#000000"))

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 2, Format: FormatPNG})
	require.NoError(t, err)
	img := decodePNG(t, raw)
	assert.Equal(t, image.Rect(0, 0, 200, 160), img.Bounds())
	assertPixel(t, img, 50, 40, color.NRGBA{0, 0, 0, 255}, 2)
}

func TestTransparentPNGSkipsBackground(t *testing.T) {
	s := scene.New(100, 100)
	s.Frame.Background = "#ff00ff"
	s.AddElement(shapeEl(40, 40, 20, 20, "#000000"))

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG, Transparent: true})
	require.NoError(t, err)

	img := decodePNG(t, raw)
	assertPixel(t, img, 10, 10, color.NRGBA{0, 0, 0, 0}, 0)
	assertPixel(t, img, 50, 50, color.NRGBA{0, 0, 0, 255}, 2)
}

func TestJPEGAlwaysHasBackground(t *testing.T) {
	s := scene.New(80, 60)
	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatJPEG, Transparent: true})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 60), img.Bounds())
	assertPixel(t, img, 5, 5, color.NRGBA{255, 255, 255, 255}, 3)
}

func TestElementOpacityBlends(t *testing.T) {
	s := scene.New(100, 100)
	el := shapeEl(0, 0, 100, 100, "#000000")
	el.Opacity = 0.5
	s.AddElement(el)

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)
	// 50% black over white ≈ 127 gray.
	assertPixel(t, decodePNG(t, raw), 50, 50, color.NRGBA{127, 127, 127, 255}, 3)
}

func TestFillOpacityPercent(t *testing.T) {
	s := scene.New(100, 100)
	el := shapeEl(0, 0, 100, 100, "#000000")
	el.Shape.FillOpacity = 50
	s.AddElement(el)

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)
	assertPixel(t, decodePNG(t, raw), 50, 50, color.NRGBA{127, 127, 127, 255}, 3)
}

func TestRotatedElementPaintsAroundCenter(t *testing.T) {
	s := scene.New(200, 200)
	el := shapeEl(50, 90, 100, 20, "#0000ff")
	el.Rotation = 90
	s.AddElement(el)

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)
	img := decodePNG(t, raw)

	// The bar now runs vertically through the center.
	assertPixel(t, img, 100, 60, color.NRGBA{0, 0, 255, 255}, 3)
	// Its old horizontal extremity is background again.
	assertPixel(t, img, 60, 100, color.NRGBA{255, 255, 255, 255}, 3)
}

func TestPathStrokeRenders(t *testing.T) {
	s := scene.New(100, 100)
	s.AddElement(scene.Element{
		Kind: scene.KindPath, X: 10, Y: 50, Width: 80, Height: 1,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Path: &scene.Path{Data: "M 0 0 L 80 0", Stroke: "#3b82f6", StrokeWidth: 4},
	})

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)
	assertPixel(t, decodePNG(t, raw), 50, 50, color.NRGBA{0x3b, 0x82, 0xf6, 255}, 3)
}

func TestMissingImageSkippedNotFatal(t *testing.T) {
	s := scene.New(100, 100)
	s.AddElement(scene.Element{
		Kind: scene.KindImage, X: 0, Y: 0, Width: 50, Height: 50,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Image: &scene.Image{Src: "https://nowhere.invalid/x.png", Filters: scene.NeutralFilters()},
	})
	s.AddElement(shapeEl(60, 60, 20, 20, "#ff0000"))

	r := New(&assetfetch.Resolver{})
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)
	img := decodePNG(t, raw)
	assertPixel(t, img, 25, 25, color.NRGBA{255, 255, 255, 255}, 0)
	assertPixel(t, img, 70, 70, color.NRGBA{255, 0, 0, 255}, 2)
}

func TestExportBusyGuard(t *testing.T) {
	r := New(nil)
	r.inFlight.Store(true)

	s := scene.New(50, 50)
	_, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	assert.ErrorIs(t, err, ErrExportBusy)
	_, err = r.Thumbnail(context.Background(), s)
	assert.ErrorIs(t, err, ErrExportBusy)

	r.inFlight.Store(false)
	_, err = r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	assert.NoError(t, err)
}

func TestOptionsValidation(t *testing.T) {
	r := New(nil)
	s := scene.New(50, 50)
	_, err := r.Render(context.Background(), s, Options{Scale: 3, Format: FormatPNG})
	assert.Error(t, err)
	_, err = r.Render(context.Background(), s, Options{Scale: 1, Format: "bmp"})
	assert.Error(t, err)
}

func TestThumbnailCapsWidth(t *testing.T) {
	s := scene.New(800, 600)
	s.AddElement(shapeEl(0, 0, 800, 600, "#123456"))

	r := New(nil)
	url, err := r.Thumbnail(context.Background(), s)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	res := assetfetch.Resolver{}
	img, err := res.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestRenderDoesNotMutateLiveScene(t *testing.T) {
	s := scene.New(100, 100)
	id := s.AddElement(shapeEl(0, 0, 50, 50, "#ff0000"))
	before := *s.Element(id)

	r := New(nil)
	_, err := r.Render(context.Background(), s, Options{Scale: 2, Format: FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, before, *s.Element(id))
}

func TestTextRendersInk(t *testing.T) {
	s := scene.New(300, 100)
	s.AddElement(scene.Element{
		Kind: scene.KindText, X: 0, Y: 0, Width: 300, Height: 100,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Text: &scene.Text{
			Content: "HELLO", FontSize: 48, FontWeight: "bold",
			TextAlign: "center", Color: "#000000", TextDecoration: "underline",
		},
	})

	r := New(nil)
	raw, err := r.Render(context.Background(), s, Options{Scale: 1, Format: FormatPNG})
	require.NoError(t, err)
	img := decodePNG(t, raw)

	// Some pixels near the center must be darkened by glyphs.
	dark := 0
	for y := 30; y < 70; y++ {
		for x := 100; x < 200; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 50)
}

func TestParseColorForms(t *testing.T) {
	c, ok := parseColor("#3b82f6")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{0x3b, 0x82, 0xf6, 255}, c)

	c, ok = parseColor("#fff")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, c)

	c, ok = parseColor("#11223344")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{0x11, 0x22, 0x33, 0x44}, c)

	_, ok = parseColor("")
	assert.False(t, ok)
	_, ok = parseColor("transparent")
	assert.False(t, ok)
	_, ok = parseColor("#zzz")
	assert.False(t, ok)

	c, ok = parseColor("WHITE")
	require.True(t, ok)
	assert.Equal(t, uint8(255), c.R)
}
