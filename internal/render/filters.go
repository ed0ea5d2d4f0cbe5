package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"

	"github.com/racan/racan/backend-go/internal/scene"
)

// applyFilters runs the image adjustment stack in CSS filter-string order:
// blur, brightness, contrast, saturate, grayscale. The source is never
// modified.
func applyFilters(src image.Image, f scene.Filters, scale float64) image.Image {
	if f.IsNeutral() {
		return src
	}
	img := clone.AsRGBA(src)

	if f.Blur > 0 {
		img = blur.Gaussian(img, f.Blur*scale)
	}
	if f.Brightness != 100 {
		img = adjust.Brightness(img, f.Brightness/100-1)
	}
	if f.Contrast != 100 {
		img = adjust.Contrast(img, f.Contrast/100-1)
	}
	if f.Saturation != 100 {
		img = adjust.Saturation(img, f.Saturation/100-1)
	}
	if f.Grayscale > 0 {
		gray := effect.Grayscale(img)
		if f.Grayscale >= 100 {
			img = gray
		} else {
			// Partial grayscale: blend the desaturated copy over the
			// original with a uniform alpha.
			a := uint8(f.Grayscale/100*255 + 0.5)
			draw.DrawMask(img, img.Bounds(), gray, img.Bounds().Min,
				image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)
		}
	}
	return img
}
