package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/scene"
)

func fixedPt(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// feedPath streams scaled path commands into a rasterx adder.
func feedPath(adder rasterx.Adder, cmds []geometry.PathCommand, scale float64) {
	open := false
	for _, c := range cmds {
		switch c.Op {
		case geometry.OpMoveTo:
			if open {
				adder.Stop(false)
			}
			adder.Start(fixedPt(c.Coords[0]*scale, c.Coords[1]*scale))
			open = true
		case geometry.OpLineTo:
			adder.Line(fixedPt(c.Coords[0]*scale, c.Coords[1]*scale))
		case geometry.OpQuadTo:
			adder.QuadBezier(
				fixedPt(c.Coords[0]*scale, c.Coords[1]*scale),
				fixedPt(c.Coords[2]*scale, c.Coords[3]*scale),
			)
		case geometry.OpCubicTo:
			adder.CubeBezier(
				fixedPt(c.Coords[0]*scale, c.Coords[1]*scale),
				fixedPt(c.Coords[2]*scale, c.Coords[3]*scale),
				fixedPt(c.Coords[4]*scale, c.Coords[5]*scale),
			)
		case geometry.OpClose:
			adder.Stop(true)
			open = false
		}
	}
	if open {
		adder.Stop(false)
	}
}

// fillPath rasterizes a filled path into the tile.
func fillPath(tile *image.RGBA, cmds []geometry.PathCommand, scale float64, c color.Color) {
	b := tile.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), tile, b)
	scanner.SetColor(c)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	feedPath(filler, cmds, scale)
	filler.Draw()
}

// strokePath rasterizes a stroked path into the tile with round caps and
// joins.
func strokePath(tile *image.RGBA, cmds []geometry.PathCommand, scale, width float64, c color.Color) {
	if width <= 0 {
		return
	}
	b := tile.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), tile, b)
	scanner.SetColor(c)
	dasher := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	dasher.SetStroke(
		fixed.Int26_6(width*scale*64), fixed.Int26_6(4*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap,
		rasterx.Round, nil, 0,
	)
	feedPath(dasher, cmds, scale)
	dasher.Draw()
}

// maskFromPath rasterizes the path as an opaque silhouette for DrawMask.
func maskFromPath(bounds image.Rectangle, cmds []geometry.PathCommand, scale float64) *image.RGBA {
	mask := image.NewRGBA(bounds)
	fillPath(mask, cmds, scale, color.NRGBA{255, 255, 255, 255})
	return mask
}

// drawShapeTile paints a shape into its local tile: fill, clipped fill
// image, then stroke.
func drawShapeTile(tile *image.RGBA, el *scene.Element, scale float64, images map[string]image.Image) error {
	sh := el.Shape
	if sh == nil {
		return nil
	}
	outline := geometry.Outline(sh.Kind, el.Width, el.Height, sh.BorderRadius)

	if c, ok := parseColor(sh.Fill); ok {
		fillPath(tile, outline, scale, withAlpha(c, sh.FillOpacity/100))
	}

	if sh.FillImageSrc != "" {
		if src, ok := images[sh.FillImageSrc]; ok {
			imgTile := image.NewRGBA(tile.Bounds())
			drawCoverFit(imgTile, imgTile.Bounds(), src)
			mask := maskFromPath(tile.Bounds(), outline, scale)
			draw.DrawMask(tile, tile.Bounds(), imgTile, image.Point{}, mask, image.Point{}, draw.Over)
		}
	}

	if c, ok := parseColor(sh.Stroke); ok && sh.StrokeWidth > 0 {
		strokePath(tile, outline, scale, sh.StrokeWidth, withAlpha(c, sh.StrokeOpacity/100))
	}
	return nil
}

// drawImageTile paints an image element: filter stack, cover-fit, optional
// rounded-rect clip. A missing source leaves the tile empty.
func drawImageTile(tile *image.RGBA, el *scene.Element, scale float64, images map[string]image.Image) error {
	im := el.Image
	if im == nil {
		return nil
	}
	src, ok := images[im.Src]
	if !ok {
		return nil
	}
	filtered := applyFilters(src, im.Filters, scale)

	if im.BorderRadius <= 0 {
		drawCoverFit(tile, tile.Bounds(), filtered)
		return nil
	}

	radius := min(im.BorderRadius, min(el.Width, el.Height)/2)
	clip := geometry.Outline(geometry.ShapeRectangle, el.Width, el.Height, radius)

	imgTile := image.NewRGBA(tile.Bounds())
	drawCoverFit(imgTile, imgTile.Bounds(), filtered)
	mask := maskFromPath(tile.Bounds(), clip, scale)
	draw.DrawMask(tile, tile.Bounds(), imgTile, image.Point{}, mask, image.Point{}, draw.Over)
	return nil
}

// drawPathTile paints a freehand path element from its normalized path
// data.
func drawPathTile(tile *image.RGBA, el *scene.Element, scale float64) error {
	p := el.Path
	if p == nil {
		return nil
	}
	cmds, err := geometry.ParsePathData(p.Data)
	if err != nil {
		return err
	}
	if c, ok := parseColor(p.Fill); ok {
		fillPath(tile, cmds, scale, c)
	}
	if c, ok := parseColor(p.Stroke); ok && p.StrokeWidth > 0 {
		strokePath(tile, cmds, scale, p.StrokeWidth, c)
	}
	return nil
}
