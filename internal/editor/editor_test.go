package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/scene"
)

func rect(x, y, w, h float64) scene.Element {
	return scene.Element{
		Kind: scene.KindShape, X: x, Y: y, Width: w, Height: h,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Shape: &scene.Shape{
			Kind: geometry.ShapeRectangle, Fill: "#3b82f6",
			FillOpacity: 100, StrokeOpacity: 100,
		},
	}
}

func text(content string) scene.Element {
	return scene.Element{
		Kind: scene.KindText, X: 0, Y: 0, Width: 200, Height: 40,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Text: &scene.Text{Content: content, FontSize: 24, Color: "#111111"},
	}
}

func TestClickSelection(t *testing.T) {
	ed := New(800, 600)
	a := ed.AddElement(rect(0, 0, 10, 10))
	b := ed.AddElement(rect(20, 0, 10, 10))

	ed.Click(a, false)
	assert.Equal(t, []string{a}, ed.Selection())
	assert.Equal(t, a, ed.Primary())

	// Shift-click toggles membership.
	ed.Click(b, true)
	assert.Equal(t, []string{a, b}, ed.Selection())
	assert.Equal(t, b, ed.Primary())
	ed.Click(a, true)
	assert.Equal(t, []string{b}, ed.Selection())

	// Plain click replaces; empty-canvas click clears.
	ed.Click(a, false)
	assert.Equal(t, []string{a}, ed.Selection())
	ed.Click("", false)
	assert.Empty(t, ed.Selection())
	assert.Equal(t, "", ed.Primary())

	ed.SelectAll()
	assert.Equal(t, []string{a, b}, ed.Selection())
	ed.ClearSelection()
	assert.Empty(t, ed.Selection())

	// Unknown ids don't select.
	ed.Click("el_ghost", false)
	assert.Empty(t, ed.Selection())
}

func TestHitTestTopmostSkipsLockedAndHidden(t *testing.T) {
	ed := New(800, 600)
	bottom := ed.AddElement(rect(0, 0, 100, 100))
	top := ed.AddElement(rect(50, 50, 100, 100))

	assert.Equal(t, top, ed.HitTest(75, 75))
	assert.Equal(t, bottom, ed.HitTest(10, 10))
	assert.Equal(t, "", ed.HitTest(500, 500))

	ed.SetLocked(top, true)
	assert.Equal(t, bottom, ed.HitTest(75, 75))
	ed.SetLocked(top, false)
	ed.SetVisible(top, false)
	assert.Equal(t, bottom, ed.HitTest(75, 75))
}

func TestHitTestIgnoresRotation(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(100, 100, 100, 20))
	ed.UpdateElement(id, func(el *scene.Element) { el.Rotation = 90 })

	// Still hits by the unrotated box: a point inside the original AABB but
	// outside the rotated shape hits, and vice versa.
	assert.Equal(t, id, ed.HitTest(105, 105))
	assert.Equal(t, "", ed.HitTest(150, 160))
}

func TestScreenToCanvas(t *testing.T) {
	ed := New(800, 600)
	ed.SetViewport(100, 50, 2)
	x, y := ed.ScreenToCanvas(300, 250)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 100.0, y)

	// Zero zoom rejected.
	ed.SetViewport(0, 0, 0)
	x, y = ed.ScreenToCanvas(10, 20)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 10.0, y)
}

func TestDragTransientThenCommit(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(10, 10, 50, 50))
	before := ed.Scene().Element(id)

	require.True(t, ed.BeginDrag(id, 20, 20))
	ed.DragTo(30, 25)
	ed.DragTo(120, 80)
	// Many transient moves, no history growth.
	assert.False(t, ed.CanRedo())
	el := ed.Scene().Element(id)
	assert.Equal(t, 110.0, el.X)
	assert.Equal(t, 70.0, el.Y)

	require.True(t, ed.EndDrag())

	// One undo returns straight to the pre-drag position.
	require.True(t, ed.Undo())
	el = ed.Scene().Element(id)
	assert.Equal(t, before.X, el.X)
	assert.Equal(t, before.Y, el.Y)
}

func TestDragLockedRefused(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(10, 10, 50, 50))
	ed.SetLocked(id, true)
	assert.False(t, ed.BeginDrag(id, 20, 20))
	assert.False(t, ed.BeginResize(id, BottomRight, 60, 60))
	assert.False(t, ed.BeginRotate(id, 35, 0))
}

func TestResizeAnchorsOppositeCorner(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(100, 100, 50, 50))

	require.True(t, ed.BeginResize(id, BottomRight, 150, 150))
	ed.ResizeTo(200, 180)
	el := ed.Scene().Element(id)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 100, Height: 80}, el.Bounds())
	require.True(t, ed.EndResize())

	// Dragging the top-left handle keeps the bottom-right corner fixed.
	require.True(t, ed.BeginResize(id, TopLeft, 100, 100))
	ed.ResizeTo(120, 130)
	el = ed.Scene().Element(id)
	assert.Equal(t, geometry.Rect{X: 120, Y: 130, Width: 80, Height: 50}, el.Bounds())
	require.True(t, ed.EndResize())
}

func TestResizeCrossingAnchorFlips(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(100, 100, 50, 50))

	require.True(t, ed.BeginResize(id, BottomRight, 150, 150))
	ed.ResizeTo(60, 150)
	// Transient state keeps the negative width.
	assert.Equal(t, -40.0, ed.Scene().Element(id).Width)

	require.True(t, ed.EndResize())
	el := ed.Scene().Element(id)
	assert.Equal(t, 40.0, el.Width)
	assert.Equal(t, 60.0, el.X)
	assert.Equal(t, -1.0, el.ScaleX)
	assert.Equal(t, 1.0, el.ScaleY)
}

func TestRotateNorthToEastIsNinetyDegrees(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(100, 100, 100, 100))
	// Center is (150,150); pointer starts due north, ends due east.
	require.True(t, ed.BeginRotate(id, 150, 50))
	ed.RotateTo(250, 150)
	require.True(t, ed.EndRotate())

	assert.InDelta(t, 90, ed.Scene().Element(id).Rotation, 1e-9)
}

func TestRotateOffsetsStartRotation(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(100, 100, 100, 100))
	ed.UpdateElement(id, func(el *scene.Element) { el.Rotation = 30 })

	require.True(t, ed.BeginRotate(id, 150, 50))
	ed.RotateTo(250, 150)
	require.True(t, ed.EndRotate())
	assert.InDelta(t, 120, ed.Scene().Element(id).Rotation, 1e-9)
}

func TestPenStrokeEmitsNormalizedPath(t *testing.T) {
	ed := New(800, 600)
	ed.BeginStroke(10, 10)
	ed.StrokeTo(50, 10)
	ed.StrokeTo(50, 50)
	id, ok := ed.EndStroke(false)
	require.True(t, ok)

	el := ed.Scene().Element(id)
	require.NotNil(t, el)
	assert.Equal(t, scene.KindPath, el.Kind)
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 40, Height: 40}, el.Bounds())
	assert.Equal(t, "M 0 0 L 40 0 L 40 40", el.Path.Data)
	assert.Equal(t, "#3b82f6", el.Path.Stroke)
	assert.Equal(t, 2.0, el.Path.StrokeWidth)
	assert.Equal(t, []string{id}, ed.Selection())
}

func TestShortStrokeDiscarded(t *testing.T) {
	ed := New(800, 600)
	ed.BeginStroke(10, 10)
	_, ok := ed.EndStroke(false)
	assert.False(t, ok)
	assert.Empty(t, ed.Scene().Elements)

	_, ok = ed.EndStroke(false)
	assert.False(t, ok)
}

func TestPencilStrokeSmooths(t *testing.T) {
	ed := New(800, 600)
	ed.BeginStroke(0, 0)
	ed.StrokeTo(100, 0)
	ed.StrokeTo(100, 100)
	id, ok := ed.EndStroke(true)
	require.True(t, ok)

	cmds, err := geometry.ParsePathData(ed.Scene().Element(id).Path.Data)
	require.NoError(t, err)
	// Chaikin doubles interior density twice: 3 -> 12 points.
	assert.Len(t, cmds, 12)
}

func TestTextEditCommitsOnce(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(text("draft"))
	undos := 0

	require.True(t, ed.BeginTextEdit(id))
	require.True(t, ed.CommitTextEdit("final"))
	assert.Equal(t, "final", ed.Scene().Element(id).Text.Content)

	for ed.CanUndo() {
		ed.Undo()
		undos++
	}
	// add + edit = two steps back to empty.
	assert.Equal(t, 2, undos)

	// No session, no commit.
	assert.False(t, ed.CommitTextEdit("ignored"))

	shape := ed2Shape(t, ed)
	assert.False(t, ed.BeginTextEdit(shape))
}

func ed2Shape(t *testing.T, ed *Editor) string {
	t.Helper()
	return ed.AddElement(rect(0, 0, 10, 10))
}

func TestPasteImageFillsSelectedShape(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(0, 0, 50, 50))
	ed.Click(id, false)

	got := ed.PasteImage("https://example.com/tex.png")
	assert.Equal(t, id, got)
	assert.Equal(t, "https://example.com/tex.png", ed.Scene().Element(id).Shape.FillImageSrc)
	assert.Len(t, ed.Scene().Elements, 1)
}

func TestPasteImageCreatesElementOtherwise(t *testing.T) {
	ed := New(800, 600)
	got := ed.PasteImage("data:image/png;base64,AAAA")

	el := ed.Scene().Element(got)
	require.NotNil(t, el)
	assert.Equal(t, scene.KindImage, el.Kind)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 300, Height: 300}, el.Bounds())
}

func TestClipboardPasteOffsets(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(10, 20, 50, 50))
	ed.Click(id, false)
	ed.Copy()
	ids := ed.Paste()
	require.Len(t, ids, 1)
	assert.NotEqual(t, id, ids[0])

	pasted := ed.Scene().Element(ids[0])
	assert.Equal(t, 30.0, pasted.X)
	assert.Equal(t, 40.0, pasted.Y)
	assert.Equal(t, ids, ed.Selection())

	// Cut removes and keeps the clipboard usable.
	ed.Click(id, false)
	ed.Cut()
	assert.Nil(t, ed.Scene().Element(id))
	again := ed.Paste()
	require.Len(t, again, 1)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ed := New(800, 600)
	a := ed.AddElement(rect(0, 0, 10, 10))
	ed.AddElement(rect(20, 0, 10, 10))
	ed.UpdateElement(a, func(el *scene.Element) { el.X = 99 })

	k := 3
	for i := 0; i < k; i++ {
		require.True(t, ed.Undo())
	}
	assert.Empty(t, ed.Scene().Elements)
	assert.False(t, ed.CanUndo())

	for i := 0; i < k; i++ {
		require.True(t, ed.Redo())
	}
	assert.Len(t, ed.Scene().Elements, 2)
	assert.Equal(t, 99.0, ed.Scene().Element(a).X)
	assert.False(t, ed.CanRedo())
}

func TestDivergentEditDropsRedo(t *testing.T) {
	ed := New(800, 600)
	ed.AddElement(rect(0, 0, 10, 10))
	ed.AddElement(rect(20, 0, 10, 10))
	require.True(t, ed.Undo())
	ed.AddElement(rect(40, 0, 10, 10))
	assert.False(t, ed.CanRedo())
}

func TestUndoPrunesSelection(t *testing.T) {
	ed := New(800, 600)
	a := ed.AddElement(rect(0, 0, 10, 10))
	b := ed.AddElement(rect(20, 0, 10, 10))
	ed.Click(a, false)
	ed.Click(b, true)

	require.True(t, ed.Undo()) // b gone
	assert.Equal(t, []string{a}, ed.Selection())
}

func TestZOrderAndDelete(t *testing.T) {
	ed := New(800, 600)
	a := ed.AddElement(rect(0, 0, 10, 10))
	b := ed.AddElement(rect(0, 0, 10, 10))

	require.True(t, ed.SendToBack(b))
	assert.Equal(t, b, ed.Scene().Elements[0].ID)
	require.True(t, ed.BringToFront(b))
	assert.Equal(t, b, ed.Scene().Elements[1].ID)

	ed.Click(a, false)
	ed.Click(b, true)
	ed.DeleteSelection()
	assert.Empty(t, ed.Scene().Elements)
	// One undo step restores both.
	require.True(t, ed.Undo())
	assert.Len(t, ed.Scene().Elements, 2)
}

func TestPlaceAtCentersSelection(t *testing.T) {
	ed := New(800, 600)
	id := ed.AddElement(rect(0, 0, 100, 50))
	ed.Click(id, false)

	require.True(t, ed.PlaceAt(400, 300))
	el := ed.Scene().Element(id)
	assert.Equal(t, 350.0, el.X)
	assert.Equal(t, 275.0, el.Y)

	ed.SetLocked(id, true)
	assert.False(t, ed.PlaceAt(10, 10))
	ed.ClearSelection()
	assert.False(t, ed.PlaceAt(10, 10))
}

func TestLoadSceneResetsHistory(t *testing.T) {
	ed := New(800, 600)
	ed.AddElement(rect(0, 0, 10, 10))

	s := scene.New(1080, 1080)
	s.AddElement(text("loaded"))
	ed.LoadScene(s)

	assert.Len(t, ed.Scene().Elements, 1)
	assert.Equal(t, 1080.0, ed.Scene().Frame.Width)
	assert.Empty(t, ed.Selection())
	assert.True(t, ed.CanUndo()) // back to the empty seed only
	require.True(t, ed.Undo())
	assert.False(t, ed.CanUndo())
}
