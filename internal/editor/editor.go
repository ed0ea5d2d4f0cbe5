// Package editor owns the live editing session: the scene, its undo log,
// the selection and the active gesture or tool. All mutation goes through
// it so that every committing change lands in history exactly once.
package editor

import (
	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/history"
	"github.com/racan/racan/backend-go/internal/scene"
)

// Editor is single-writer: one goroutine (the wasm main loop, or one HTTP
// request) drives it at a time.
type Editor struct {
	scene *scene.Scene
	log   *history.Log

	selection []string

	zoom       float64
	panX, panY float64

	clipboard []scene.Element

	gesture  *gesture
	stroke   []geometry.Point
	stroking bool
	textEdit string
}

// New returns an editor over an empty canvas of the given size.
func New(width, height float64) *Editor {
	return &Editor{
		scene: scene.New(width, height),
		log:   history.New(),
		zoom:  1,
	}
}

// Scene returns the live scene. Callers must not mutate it directly;
// read-only access only.
func (ed *Editor) Scene() *scene.Scene { return ed.scene }

// SnapshotScene returns a deep copy safe to hand to exporters and savers.
func (ed *Editor) SnapshotScene() *scene.Scene { return ed.scene.Clone() }

// LoadScene replaces the whole session with the given scene. History and
// selection restart from scratch.
func (ed *Editor) LoadScene(s *scene.Scene) {
	ed.scene = s.Clone()
	ed.log = history.New()
	ed.log.Push(ed.scene.Elements)
	ed.selection = nil
	ed.gesture = nil
	ed.stroking = false
	ed.textEdit = ""
}

// commit records the current element list as one undo step.
func (ed *Editor) commit() {
	ed.log.Push(ed.scene.Elements)
}

// --- viewport ---

// SetViewport sets the pan offset (in screen pixels) and zoom factor.
// Non-positive zoom is ignored.
func (ed *Editor) SetViewport(panX, panY, zoom float64) {
	ed.panX, ed.panY = panX, panY
	if zoom > 0 {
		ed.zoom = zoom
	}
}

// ScreenToCanvas converts screen coordinates to canvas coordinates under
// the current pan and zoom.
func (ed *Editor) ScreenToCanvas(sx, sy float64) (float64, float64) {
	return (sx - ed.panX) / ed.zoom, (sy - ed.panY) / ed.zoom
}

// --- selection ---

// Selection returns the selected ids in selection order.
func (ed *Editor) Selection() []string {
	out := make([]string, len(ed.selection))
	copy(out, ed.selection)
	return out
}

// Primary returns the most recently selected id, or "".
func (ed *Editor) Primary() string {
	if len(ed.selection) == 0 {
		return ""
	}
	return ed.selection[len(ed.selection)-1]
}

// Click updates the selection for a pointer click on the element with the
// given id ("" for empty canvas). Plain click replaces the selection;
// shift-click toggles membership.
func (ed *Editor) Click(id string, shift bool) {
	if id == "" {
		if !shift {
			ed.selection = nil
		}
		return
	}
	if ed.scene.Element(id) == nil {
		return
	}
	if !shift {
		ed.selection = []string{id}
		return
	}
	for i, sel := range ed.selection {
		if sel == id {
			ed.selection = append(ed.selection[:i], ed.selection[i+1:]...)
			return
		}
	}
	ed.selection = append(ed.selection, id)
}

// SelectAll selects every element in paint order.
func (ed *Editor) SelectAll() {
	ed.selection = ed.selection[:0]
	for _, el := range ed.scene.Elements {
		ed.selection = append(ed.selection, el.ID)
	}
}

// ClearSelection empties the selection.
func (ed *Editor) ClearSelection() { ed.selection = nil }

// pruneSelection drops selected ids that no longer exist, preserving order.
func (ed *Editor) pruneSelection() {
	kept := ed.selection[:0]
	for _, id := range ed.selection {
		if ed.scene.Element(id) != nil {
			kept = append(kept, id)
		}
	}
	ed.selection = kept
}

// HitTest returns the topmost visible, unlocked element whose pre-rotation
// bounding box contains the canvas point, or "". Rotated elements are still
// tested against their unrotated box.
func (ed *Editor) HitTest(x, y float64) string {
	els := ed.scene.Elements
	for i := len(els) - 1; i >= 0; i-- {
		el := &els[i]
		if !el.Visible || el.Locked {
			continue
		}
		if el.Bounds().Contains(x, y) {
			return el.ID
		}
	}
	return ""
}

// --- committing element operations ---

// AddElement adds an element on top, selects it and commits.
func (ed *Editor) AddElement(el scene.Element) string {
	id := ed.scene.AddElement(el)
	ed.selection = []string{id}
	ed.commit()
	return id
}

// UpdateElement applies a committing mutation. Unknown ids are a no-op and
// push nothing.
func (ed *Editor) UpdateElement(id string, mutate func(*scene.Element)) bool {
	if !ed.scene.UpdateElement(id, mutate) {
		return false
	}
	ed.commit()
	return true
}

// UpdateElementTransient applies a mutation without touching history.
func (ed *Editor) UpdateElementTransient(id string, mutate func(*scene.Element)) bool {
	return ed.scene.UpdateElementTransient(id, mutate)
}

// DeleteElement removes the element and commits.
func (ed *Editor) DeleteElement(id string) bool {
	if !ed.scene.DeleteElement(id) {
		return false
	}
	ed.pruneSelection()
	ed.commit()
	return true
}

// DeleteSelection removes every selected element in one undo step.
func (ed *Editor) DeleteSelection() {
	if len(ed.selection) == 0 {
		return
	}
	for _, id := range ed.Selection() {
		ed.scene.DeleteElement(id)
	}
	ed.selection = nil
	ed.commit()
}

// DuplicateElement clones the element with a +20,+20 offset, selects the
// clone and commits.
func (ed *Editor) DuplicateElement(id string) (string, bool) {
	dupID, ok := ed.scene.DuplicateElement(id)
	if !ok {
		return "", false
	}
	ed.selection = []string{dupID}
	ed.commit()
	return dupID, true
}

// BringToFront moves the element to the top of the paint order and commits.
func (ed *Editor) BringToFront(id string) bool {
	if !ed.scene.Reorder(id, scene.ToFront) {
		return false
	}
	ed.commit()
	return true
}

// SendToBack moves the element to the bottom of the paint order and commits.
func (ed *Editor) SendToBack(id string) bool {
	if !ed.scene.Reorder(id, scene.ToBack) {
		return false
	}
	ed.commit()
	return true
}

// SetLocked locks or unlocks the element.
func (ed *Editor) SetLocked(id string, locked bool) bool {
	return ed.UpdateElement(id, func(el *scene.Element) { el.Locked = locked })
}

// SetVisible shows or hides the element.
func (ed *Editor) SetVisible(id string, visible bool) bool {
	return ed.UpdateElement(id, func(el *scene.Element) { el.Visible = visible })
}

// PlaceAt centers the primary selected element at the canvas point and
// commits immediately. Locked elements don't move.
func (ed *Editor) PlaceAt(x, y float64) bool {
	id := ed.Primary()
	if id == "" {
		return false
	}
	el := ed.scene.Element(id)
	if el == nil || el.Locked {
		return false
	}
	return ed.UpdateElement(id, func(el *scene.Element) {
		el.X = x - el.Width/2
		el.Y = y - el.Height/2
	})
}

// --- clipboard ---

// Copy stores deep copies of the selected elements.
func (ed *Editor) Copy() {
	ed.clipboard = nil
	for _, id := range ed.selection {
		if el := ed.scene.Element(id); el != nil {
			ed.clipboard = append(ed.clipboard, scene.CloneElement(*el))
		}
	}
}

// Cut copies the selection and deletes it in one undo step.
func (ed *Editor) Cut() {
	ed.Copy()
	ed.DeleteSelection()
}

// Paste inserts clones of the clipboard with fresh ids and a +20,+20
// offset, selects them, and commits once.
func (ed *Editor) Paste() []string {
	if len(ed.clipboard) == 0 {
		return nil
	}
	ed.selection = nil
	var ids []string
	for _, el := range ed.clipboard {
		dup := scene.CloneElement(el)
		dup.ID = ""
		dup.X += scene.DuplicateOffset
		dup.Y += scene.DuplicateOffset
		ids = append(ids, ed.scene.AddElement(dup))
	}
	ed.selection = ids
	ed.commit()
	return ids
}

// --- undo/redo ---

// CanUndo reports whether an undo step exists.
func (ed *Editor) CanUndo() bool { return ed.log.CanUndo() }

// CanRedo reports whether a redo step exists.
func (ed *Editor) CanRedo() bool { return ed.log.CanRedo() }

// Undo restores the previous snapshot. Selection entries that no longer
// resolve are dropped.
func (ed *Editor) Undo() bool {
	els, ok := ed.log.Undo()
	if !ok {
		return false
	}
	ed.scene.Replace(els)
	ed.pruneSelection()
	return true
}

// Redo restores the next snapshot.
func (ed *Editor) Redo() bool {
	els, ok := ed.log.Redo()
	if !ok {
		return false
	}
	ed.scene.Replace(els)
	ed.pruneSelection()
	return true
}
