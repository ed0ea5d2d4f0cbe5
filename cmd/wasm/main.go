//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/racan/racan/backend-go/internal/editor"
	"github.com/racan/racan/backend-go/internal/render/svgexport"
	"github.com/racan/racan/backend-go/internal/scene"
)

var ed *editor.Editor

func main() {
	ed = editor.New(1080, 1080)

	racanEditor := js.Global().Get("Object").New()

	// --- Scene & persistence ---
	racanEditor.Set("newScene", js.FuncOf(newScene))
	racanEditor.Set("loadScene", js.FuncOf(loadScene))
	racanEditor.Set("getScene", js.FuncOf(getScene))
	racanEditor.Set("exportProject", js.FuncOf(exportProject))

	// --- Element commands ---
	racanEditor.Set("addElement", js.FuncOf(addElement))
	racanEditor.Set("updateElement", js.FuncOf(updateElement))
	racanEditor.Set("updateElementTransient", js.FuncOf(updateElementTransient))
	racanEditor.Set("deleteElement", js.FuncOf(deleteElement))
	racanEditor.Set("deleteSelection", js.FuncOf(deleteSelection))
	racanEditor.Set("duplicateElement", js.FuncOf(duplicateElement))
	racanEditor.Set("bringToFront", js.FuncOf(bringToFront))
	racanEditor.Set("sendToBack", js.FuncOf(sendToBack))
	racanEditor.Set("setLocked", js.FuncOf(setLocked))
	racanEditor.Set("setVisible", js.FuncOf(setVisible))

	// --- Clipboard ---
	racanEditor.Set("copy", js.FuncOf(copySelection))
	racanEditor.Set("cut", js.FuncOf(cutSelection))
	racanEditor.Set("paste", js.FuncOf(paste))
	racanEditor.Set("pasteImage", js.FuncOf(pasteImage))

	// --- History ---
	racanEditor.Set("undo", js.FuncOf(undo))
	racanEditor.Set("redo", js.FuncOf(redo))
	racanEditor.Set("canUndo", js.FuncOf(canUndo))
	racanEditor.Set("canRedo", js.FuncOf(canRedo))

	// --- Selection & viewport ---
	racanEditor.Set("click", js.FuncOf(click))
	racanEditor.Set("selectAll", js.FuncOf(selectAll))
	racanEditor.Set("clearSelection", js.FuncOf(clearSelection))
	racanEditor.Set("getSelection", js.FuncOf(getSelection))
	racanEditor.Set("setViewport", js.FuncOf(setViewport))
	racanEditor.Set("screenToCanvas", js.FuncOf(screenToCanvas))
	racanEditor.Set("placeAt", js.FuncOf(placeAt))

	// --- Gestures ---
	racanEditor.Set("beginDrag", js.FuncOf(beginDrag))
	racanEditor.Set("dragTo", js.FuncOf(dragTo))
	racanEditor.Set("endDrag", js.FuncOf(endDrag))
	racanEditor.Set("beginResize", js.FuncOf(beginResize))
	racanEditor.Set("resizeTo", js.FuncOf(resizeTo))
	racanEditor.Set("endResize", js.FuncOf(endResize))
	racanEditor.Set("beginRotate", js.FuncOf(beginRotate))
	racanEditor.Set("rotateTo", js.FuncOf(rotateTo))
	racanEditor.Set("endRotate", js.FuncOf(endRotate))

	// --- Drawing tools ---
	racanEditor.Set("beginStroke", js.FuncOf(beginStroke))
	racanEditor.Set("strokeTo", js.FuncOf(strokeTo))
	racanEditor.Set("endStroke", js.FuncOf(endStroke))
	racanEditor.Set("beginTextEdit", js.FuncOf(beginTextEdit))
	racanEditor.Set("commitTextEdit", js.FuncOf(commitTextEdit))
	racanEditor.Set("cancelTextEdit", js.FuncOf(cancelTextEdit))

	// --- Queries ---
	racanEditor.Set("render", js.FuncOf(renderCommands))
	racanEditor.Set("hitTest", js.FuncOf(hitTest))
	racanEditor.Set("exportSVG", js.FuncOf(exportSVG))

	js.Global().Set("racanEditor", racanEditor)
	js.Global().Set("racanWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

// --- Scene & persistence ---

func newScene(this js.Value, args []js.Value) interface{} {
	width, height := 1080.0, 1080.0
	if len(args) >= 2 {
		width = args[0].Float()
		height = args[1].Float()
	}
	ed = editor.New(width, height)
	return ok()
}

func loadScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing project JSON")
	}
	pf, err := scene.DecodeProject([]byte(args[0].String()))
	if err != nil {
		return fail(err.Error())
	}
	s := scene.New(pf.CanvasSize.Width, pf.CanvasSize.Height)
	s.Load(pf)
	ed.LoadScene(s)
	return ok()
}

func getScene(this js.Value, args []js.Value) interface{} {
	s := ed.SnapshotScene()
	env := map[string]interface{}{
		"canvasBg":      s.Frame.Background,
		"canvasBgImage": s.Frame.BackgroundImage,
	}
	data, err := json.Marshal(struct {
		Elements   []scene.Element  `json:"elements"`
		CanvasSize scene.CanvasSize `json:"canvasSize"`
	}{s.Elements, scene.CanvasSize{Width: s.Frame.Width, Height: s.Frame.Height}})
	if err != nil {
		return fail(err.Error())
	}
	var payload map[string]interface{}
	json.Unmarshal(data, &payload)
	for k, v := range env {
		payload[k] = v
	}
	out, _ := json.Marshal(payload)
	return js.ValueOf(string(out))
}

func exportProject(this js.Value, args []js.Value) interface{} {
	name := "Untitled"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	data, err := scene.EncodeProject(name, ed.SnapshotScene(), time.Now())
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(string(data))
}

// --- Element commands ---

func addElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing element JSON")
	}
	var el scene.Element
	if err := json.Unmarshal([]byte(args[0].String()), &el); err != nil {
		return fail(err.Error())
	}
	id := ed.AddElement(el)
	return js.ValueOf(map[string]interface{}{"id": id})
}

// applyPatch overlays the patch object on the element's wire form, so
// absent fields keep their current values.
func applyPatch(el *scene.Element, patch []byte) error {
	base, err := json.Marshal(el)
	if err != nil {
		return err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return err
	}
	var delta map[string]json.RawMessage
	if err := json.Unmarshal(patch, &delta); err != nil {
		return err
	}
	for k, v := range delta {
		merged[k] = v
	}
	full, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(full, el)
}

func updateWith(args []js.Value, update func(string, func(*scene.Element)) bool) interface{} {
	if len(args) < 2 {
		return fail("missing id or patch")
	}
	id := args[0].String()
	patch := []byte(args[1].String())

	var patchErr error
	found := update(id, func(el *scene.Element) {
		patchErr = applyPatch(el, patch)
	})
	if !found {
		return fail("element not found")
	}
	if patchErr != nil {
		return fail(patchErr.Error())
	}
	return ok()
}

func updateElement(this js.Value, args []js.Value) interface{} {
	return updateWith(args, ed.UpdateElement)
}

func updateElementTransient(this js.Value, args []js.Value) interface{} {
	return updateWith(args, ed.UpdateElementTransient)
}

func deleteElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing id")
	}
	return js.ValueOf(ed.DeleteElement(args[0].String()))
}

func deleteSelection(this js.Value, args []js.Value) interface{} {
	ed.DeleteSelection()
	return ok()
}

func duplicateElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing id")
	}
	id, found := ed.DuplicateElement(args[0].String())
	if !found {
		return fail("element not found")
	}
	return js.ValueOf(map[string]interface{}{"id": id})
}

func bringToFront(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing id")
	}
	return js.ValueOf(ed.BringToFront(args[0].String()))
}

func sendToBack(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing id")
	}
	return js.ValueOf(ed.SendToBack(args[0].String()))
}

func setLocked(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing id or flag")
	}
	return js.ValueOf(ed.SetLocked(args[0].String(), args[1].Bool()))
}

func setVisible(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing id or flag")
	}
	return js.ValueOf(ed.SetVisible(args[0].String(), args[1].Bool()))
}

// --- Clipboard ---

func copySelection(this js.Value, args []js.Value) interface{} {
	ed.Copy()
	return ok()
}

func cutSelection(this js.Value, args []js.Value) interface{} {
	ed.Cut()
	return ok()
}

func paste(this js.Value, args []js.Value) interface{} {
	ids := ed.Paste()
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func pasteImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing image source")
	}
	id := ed.PasteImage(args[0].String())
	return js.ValueOf(map[string]interface{}{"id": id})
}

// --- History ---

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Redo())
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.CanRedo())
}

// --- Selection & viewport ---

func click(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	shift := len(args) > 1 && args[1].Bool()
	ed.Click(args[0].String(), shift)
	return nil
}

func selectAll(this js.Value, args []js.Value) interface{} {
	ed.SelectAll()
	return nil
}

func clearSelection(this js.Value, args []js.Value) interface{} {
	ed.ClearSelection()
	return nil
}

func getSelection(this js.Value, args []js.Value) interface{} {
	ids := ed.Selection()
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	ed.SetViewport(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

func screenToCanvas(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	x, y := ed.ScreenToCanvas(args[0].Float(), args[1].Float())
	return js.ValueOf(map[string]interface{}{"x": x, "y": y})
}

func placeAt(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.PlaceAt(args[0].Float(), args[1].Float()))
}

// --- Gestures ---

func beginDrag(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.BeginDrag(args[0].String(), args[1].Float(), args[2].Float()))
}

func dragTo(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.DragTo(args[0].Float(), args[1].Float())
	return nil
}

func endDrag(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.EndDrag())
}

func corner(name string) editor.Corner {
	switch name {
	case "topLeft":
		return editor.TopLeft
	case "topRight":
		return editor.TopRight
	case "bottomLeft":
		return editor.BottomLeft
	default:
		return editor.BottomRight
	}
}

func beginResize(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.BeginResize(args[0].String(), corner(args[1].String()), args[2].Float(), args[3].Float()))
}

func resizeTo(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.ResizeTo(args[0].Float(), args[1].Float())
	return nil
}

func endResize(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.EndResize())
}

func beginRotate(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.BeginRotate(args[0].String(), args[1].Float(), args[2].Float()))
}

func rotateTo(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.RotateTo(args[0].Float(), args[1].Float())
	return nil
}

func endRotate(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.EndRotate())
}

// --- Drawing tools ---

func beginStroke(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.BeginStroke(args[0].Float(), args[1].Float())
	return nil
}

func strokeTo(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.StrokeTo(args[0].Float(), args[1].Float())
	return nil
}

func endStroke(this js.Value, args []js.Value) interface{} {
	smooth := len(args) > 0 && args[0].Bool()
	id, created := ed.EndStroke(smooth)
	if !created {
		return js.ValueOf(map[string]interface{}{"id": ""})
	}
	return js.ValueOf(map[string]interface{}{"id": id})
}

func beginTextEdit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.BeginTextEdit(args[0].String()))
}

func commitTextEdit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.CommitTextEdit(args[0].String()))
}

func cancelTextEdit(this js.Value, args []js.Value) interface{} {
	ed.CancelTextEdit()
	return nil
}

// --- Queries ---

func renderCommands(this js.Value, args []js.Value) interface{} {
	cmds := editor.CompileDrawCommands(ed.Scene())
	out, err := editor.DrawCommandsToJSON(cmds)
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(out)
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(ed.HitTest(args[0].Float(), args[1].Float()))
}

func exportSVG(this js.Value, args []js.Value) interface{} {
	sz := svgexport.New(nil)
	svg, err := sz.Serialize(context.Background(), ed.SnapshotScene())
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(svg)
}
