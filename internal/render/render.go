// Package render is the offline raster exporter: it turns a scene snapshot
// into PNG or JPEG bytes matching what the interactive view displays.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/anthonynsimon/bild/transform"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/racan/racan/backend-go/internal/assetfetch"
	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/scene"
)

// Format selects the output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// JPEG export quality.
const jpegQuality = 95

// Thumbnails are capped to this width in pixels.
const thumbnailMaxWidth = 400

// Options control one export pass.
type Options struct {
	Scale       int // 1, 2 or 4
	Format      Format
	Transparent bool // PNG only: skip the background fill
}

func (o Options) validate() error {
	switch o.Scale {
	case 1, 2, 4:
	default:
		return fmt.Errorf("render: scale must be 1, 2 or 4, got %d", o.Scale)
	}
	switch o.Format {
	case FormatPNG, FormatJPEG:
	default:
		return fmt.Errorf("render: unknown format %q", o.Format)
	}
	return nil
}

// ErrExportBusy is returned when an export is already in flight. Callers
// drop the request rather than queueing.
var ErrExportBusy = errors.New("render: export already in progress")

// Renderer renders scene snapshots. It is non-reentrant: one export at a
// time, concurrent requests get ErrExportBusy.
type Renderer struct {
	resolver *assetfetch.Resolver
	inFlight atomic.Bool
}

// New returns a renderer resolving images through the given resolver.
func New(resolver *assetfetch.Resolver) *Renderer {
	if resolver == nil {
		resolver = &assetfetch.Resolver{}
	}
	return &Renderer{resolver: resolver}
}

// Render produces encoded bytes for the scene at canvasSize * scale.
func (r *Renderer) Render(ctx context.Context, s *scene.Scene, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrExportBusy
	}
	defer r.inFlight.Store(false)

	img, err := r.draw(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	return encode(img, opts.Format)
}

// draw runs the pipeline on a private deep copy of the scene.
func (r *Renderer) draw(ctx context.Context, live *scene.Scene, opts Options) (*image.RGBA, error) {
	s := live.Clone()
	scale := float64(opts.Scale)

	w := int(math.Ceil(s.Frame.Width * scale))
	h := int(math.Ceil(s.Frame.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: empty canvas %gx%g", s.Frame.Width, s.Frame.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	images := r.resolver.FetchAll(ctx, collectSources(s))

	transparent := opts.Transparent && opts.Format == FormatPNG
	if !transparent {
		bg := color.NRGBA{255, 255, 255, 255}
		if c, ok := parseColor(s.Frame.Background); ok {
			bg = c
		}
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

		if src, ok := images[s.Frame.BackgroundImage]; ok && s.Frame.BackgroundImage != "" {
			drawCoverFit(dst, dst.Bounds(), src)
		}
	}

	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.Visible || el.Width <= 0 || el.Height <= 0 {
			continue
		}
		if err := r.drawElement(dst, el, scale, images); err != nil {
			slog.Warn("element render failed, skipping", "element", el.ID, "error", err)
		}
	}
	return dst, nil
}

// drawElement renders the element into a local tile and composites it under
// the element transform. Failures stay contained to this element.
func (r *Renderer) drawElement(dst *image.RGBA, el *scene.Element, scale float64, images map[string]image.Image) error {
	tw := int(math.Ceil(el.Width * scale))
	th := int(math.Ceil(el.Height * scale))
	if tw <= 0 || th <= 0 {
		return nil
	}
	tile := image.NewRGBA(image.Rect(0, 0, tw, th))

	var err error
	switch el.Kind {
	case scene.KindShape:
		err = drawShapeTile(tile, el, scale, images)
	case scene.KindImage:
		err = drawImageTile(tile, el, scale, images)
	case scene.KindText:
		err = drawTextTile(tile, el, scale)
	case scene.KindPath:
		err = drawPathTile(tile, el, scale)
	}
	if err != nil {
		return err
	}

	if el.Opacity < 1 {
		fadeAlpha(tile, el.Opacity)
	}
	composite(dst, tile, el, scale)
	return nil
}

// composite places the tile under translate(center)*rotate*scale. The
// common untransformed case takes the exact integer path so unrotated
// exports are pixel-identical to a direct draw.
func composite(dst *image.RGBA, tile *image.RGBA, el *scene.Element, scale float64) {
	if el.Rotation == 0 && el.ScaleX == 1 && el.ScaleY == 1 {
		off := image.Pt(int(math.Round(el.X*scale)), int(math.Round(el.Y*scale)))
		draw.Draw(dst, tile.Bounds().Add(off), tile, image.Point{}, draw.Over)
		return
	}

	tw := float64(tile.Bounds().Dx())
	th := float64(tile.Bounds().Dy())
	m := geometry.Translate((el.X+el.Width/2)*scale, (el.Y+el.Height/2)*scale).
		Multiply(geometry.RotateDegrees(el.Rotation)).
		Multiply(geometry.Scale(el.ScaleX, el.ScaleY)).
		Multiply(geometry.Translate(-tw/2, -th/2))

	xdraw.ApproxBiLinear.Transform(dst,
		f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]},
		tile, tile.Bounds(), xdraw.Over, nil)
}

// fadeAlpha multiplies every pixel's alpha (premultiplied, so all channels)
// by the factor.
func fadeAlpha(img *image.RGBA, factor float64) {
	f := uint32(factor * 65536)
	for i := range img.Pix {
		img.Pix[i] = uint8(uint32(img.Pix[i]) * f >> 16)
	}
}

// drawCoverFit fills the destination rect with the source image, cropped
// center per cover-fit.
func drawCoverFit(dst draw.Image, dr image.Rectangle, src image.Image) {
	sb := src.Bounds()
	crop := geometry.CoverCrop(
		float64(sb.Dx()), float64(sb.Dy()),
		float64(dr.Dx()), float64(dr.Dy()),
	)
	sr := image.Rect(
		sb.Min.X+int(crop.X), sb.Min.Y+int(crop.Y),
		sb.Min.X+int(crop.X+crop.Width), sb.Min.Y+int(crop.Y+crop.Height),
	)
	xdraw.ApproxBiLinear.Scale(dst, dr, src, sr, xdraw.Over, nil)
}

func collectSources(s *scene.Scene) []string {
	var out []string
	if s.Frame.BackgroundImage != "" {
		out = append(out, s.Frame.BackgroundImage)
	}
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.Visible {
			continue
		}
		switch {
		case el.Kind == scene.KindImage && el.Image != nil && el.Image.Src != "":
			out = append(out, el.Image.Src)
		case el.Kind == scene.KindShape && el.Shape != nil && el.Shape.FillImageSrc != "":
			out = append(out, el.Shape.FillImageSrc)
		}
	}
	return out
}

func encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Thumbnail renders the scene as a PNG data URL at most thumbnailMaxWidth
// pixels wide, for template cards and project lists.
func (r *Renderer) Thumbnail(ctx context.Context, s *scene.Scene) (string, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return "", ErrExportBusy
	}
	defer r.inFlight.Store(false)

	img, err := r.draw(ctx, s, Options{Scale: 1, Format: FormatPNG})
	if err != nil {
		return "", err
	}
	if w := img.Bounds().Dx(); w > thumbnailMaxWidth {
		h := img.Bounds().Dy() * thumbnailMaxWidth / w
		img = transform.Resize(img, thumbnailMaxWidth, h, transform.Linear)
	}
	return assetfetch.DataURL(img)
}
