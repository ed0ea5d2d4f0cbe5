package editor

import (
	"math"

	"github.com/racan/racan/backend-go/internal/scene"
)

// Gestures apply transient updates while the pointer moves and commit a
// single history entry on release.

type gestureKind int

const (
	gestureDrag gestureKind = iota
	gestureResize
	gestureRotate
)

// Corner names the four resize handles.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

type gesture struct {
	kind           gestureKind
	id             string
	orig           scene.Element
	startX, startY float64
	corner         Corner
	startAngle     float64
}

func (ed *Editor) beginGesture(kind gestureKind, id string, x, y float64) bool {
	el := ed.scene.Element(id)
	if el == nil || el.Locked || !el.Visible {
		return false
	}
	ed.gesture = &gesture{
		kind:   kind,
		id:     id,
		orig:   scene.CloneElement(*el),
		startX: x,
		startY: y,
	}
	return true
}

// endGesture commits the gesture as one history entry. Committing runs the
// element through normalization, folding any negative drag-out dimensions
// into position and scale flips.
func (ed *Editor) endGesture(kind gestureKind) bool {
	g := ed.gesture
	if g == nil || g.kind != kind {
		return false
	}
	ed.gesture = nil
	return ed.UpdateElement(g.id, func(*scene.Element) {})
}

// BeginDrag starts moving the element from the given canvas point.
func (ed *Editor) BeginDrag(id string, x, y float64) bool {
	return ed.beginGesture(gestureDrag, id, x, y)
}

// DragTo moves the element by the pointer delta. Transient.
func (ed *Editor) DragTo(x, y float64) {
	g := ed.gesture
	if g == nil || g.kind != gestureDrag {
		return
	}
	dx, dy := x-g.startX, y-g.startY
	ed.scene.UpdateElementTransient(g.id, func(el *scene.Element) {
		el.X = g.orig.X + dx
		el.Y = g.orig.Y + dy
	})
}

// EndDrag commits the move.
func (ed *Editor) EndDrag() bool { return ed.endGesture(gestureDrag) }

// BeginResize starts resizing from the given handle.
func (ed *Editor) BeginResize(id string, corner Corner, x, y float64) bool {
	if !ed.beginGesture(gestureResize, id, x, y) {
		return false
	}
	ed.gesture.corner = corner
	return true
}

// ResizeTo stretches the element so the grabbed corner follows the pointer
// while the opposite corner stays anchored. Dimensions may go negative
// mid-gesture when the pointer crosses the anchor; commit normalizes them.
func (ed *Editor) ResizeTo(x, y float64) {
	g := ed.gesture
	if g == nil || g.kind != gestureResize {
		return
	}
	left := g.orig.X
	top := g.orig.Y
	right := g.orig.X + g.orig.Width
	bottom := g.orig.Y + g.orig.Height

	var nx, ny, nw, nh float64
	switch g.corner {
	case TopLeft:
		nx, ny, nw, nh = x, y, right-x, bottom-y
	case TopRight:
		nx, ny, nw, nh = left, y, x-left, bottom-y
	case BottomLeft:
		nx, ny, nw, nh = x, top, right-x, y-top
	case BottomRight:
		nx, ny, nw, nh = left, top, x-left, y-top
	}

	ed.scene.UpdateElementTransient(g.id, func(el *scene.Element) {
		el.X, el.Y, el.Width, el.Height = nx, ny, nw, nh
	})
}

// EndResize commits the resize.
func (ed *Editor) EndResize() bool { return ed.endGesture(gestureResize) }

// BeginRotate starts rotating around the element's center, measuring the
// initial pointer angle.
func (ed *Editor) BeginRotate(id string, x, y float64) bool {
	if !ed.beginGesture(gestureRotate, id, x, y) {
		return false
	}
	c := ed.gesture.orig.Bounds().Center()
	ed.gesture.startAngle = math.Atan2(y-c.Y, x-c.X)
	return true
}

// RotateTo sets rotation to the starting rotation plus the pointer's angular
// travel around the center. Transient.
func (ed *Editor) RotateTo(x, y float64) {
	g := ed.gesture
	if g == nil || g.kind != gestureRotate {
		return
	}
	c := g.orig.Bounds().Center()
	angle := math.Atan2(y-c.Y, x-c.X)
	deltaDeg := (angle - g.startAngle) * 180 / math.Pi
	ed.scene.UpdateElementTransient(g.id, func(el *scene.Element) {
		el.Rotation = g.orig.Rotation + deltaDeg
	})
}

// EndRotate commits the rotation.
func (ed *Editor) EndRotate() bool { return ed.endGesture(gestureRotate) }
