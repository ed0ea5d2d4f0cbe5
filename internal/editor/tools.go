package editor

import (
	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/scene"
)

// Freehand stroke defaults.
const (
	strokeColor = "#3b82f6"
	strokeWidth = 2.0
)

// BeginStroke starts capturing a freehand stroke at the canvas point.
func (ed *Editor) BeginStroke(x, y float64) {
	ed.stroking = true
	ed.stroke = []geometry.Point{{X: x, Y: y}}
}

// StrokeTo appends a point to the active stroke.
func (ed *Editor) StrokeTo(x, y float64) {
	if !ed.stroking {
		return
	}
	ed.stroke = append(ed.stroke, geometry.Point{X: x, Y: y})
}

// EndStroke finishes the stroke as a path element. Pen strokes keep the raw
// polyline; pencil strokes are smoothed first. Strokes with fewer than two
// points are discarded. Returns the new element id.
func (ed *Editor) EndStroke(smooth bool) (string, bool) {
	if !ed.stroking {
		return "", false
	}
	pts := ed.stroke
	ed.stroking = false
	ed.stroke = nil

	if len(pts) < 2 {
		return "", false
	}
	if smooth {
		pts = geometry.Smooth(pts)
	}

	// Normalize to the stroke's bounding box so the path data is in
	// element-local coordinates.
	bb := geometry.BoundingBox(pts)
	local := make([]geometry.Point, len(pts))
	for i, p := range pts {
		local[i] = geometry.Point{X: p.X - bb.X, Y: p.Y - bb.Y}
	}

	id := ed.AddElement(scene.Element{
		Kind: scene.KindPath,
		X:    bb.X, Y: bb.Y, Width: bb.Width, Height: bb.Height,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Path: &scene.Path{
			Data:        geometry.FormatPathData(geometry.PolylinePath(local)),
			Stroke:      strokeColor,
			StrokeWidth: strokeWidth,
		},
	})
	return id, true
}

// BeginTextEdit opens an editing session on a text element. Locked or
// non-text elements refuse.
func (ed *Editor) BeginTextEdit(id string) bool {
	el := ed.scene.Element(id)
	if el == nil || el.Kind != scene.KindText || el.Locked {
		return false
	}
	ed.textEdit = id
	return true
}

// CommitTextEdit writes the edited content back as one committing update
// and closes the session.
func (ed *Editor) CommitTextEdit(content string) bool {
	id := ed.textEdit
	if id == "" {
		return false
	}
	ed.textEdit = ""
	return ed.UpdateElement(id, func(el *scene.Element) {
		if el.Text != nil {
			el.Text.Content = content
		}
	})
}

// CancelTextEdit closes the session without touching the element.
func (ed *Editor) CancelTextEdit() { ed.textEdit = "" }

// PasteImage handles an image arriving from the clipboard. When the primary
// selection is a shape it becomes the shape's fill image; otherwise a new
// 300x300 image element lands at (100,100). Either way, one undo step.
func (ed *Editor) PasteImage(src string) string {
	if id := ed.Primary(); id != "" {
		if el := ed.scene.Element(id); el != nil && el.Kind == scene.KindShape && !el.Locked {
			ed.UpdateElement(id, func(el *scene.Element) {
				el.Shape.FillImageSrc = src
			})
			return id
		}
	}
	return ed.AddElement(scene.Element{
		Kind: scene.KindImage,
		X:    100, Y: 100, Width: 300, Height: 300,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Image: &scene.Image{Src: src, Filters: scene.NeutralFilters()},
	})
}
