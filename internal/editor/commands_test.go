package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racan/racan/backend-go/internal/scene"
)

func ops(cmds []DrawCommand) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Op
	}
	return out
}

func TestCompilePaintersOrder(t *testing.T) {
	ed := New(400, 300)
	a := ed.AddElement(rect(0, 0, 100, 100))
	b := ed.AddElement(rect(50, 50, 100, 100))
	require.True(t, ed.SendToBack(b))

	cmds := CompileDrawCommands(ed.Scene())
	var paints []string
	for _, c := range cmds {
		if c.Op == "path" {
			paints = append(paints, c.ElementID)
		}
	}
	assert.Equal(t, []string{b, a}, paints)
}

func TestCompileShapeWithFillImage(t *testing.T) {
	ed := New(400, 300)
	el := rect(100, 100, 150, 100)
	el.Shape.FillImageSrc = "https://example.com/tex.png"
	el.Shape.Stroke = "#000000"
	el.Shape.StrokeWidth = 3
	id := ed.AddElement(el)

	cmds := CompileDrawCommands(ed.Scene())
	assert.Equal(t, []string{"save", "path", "save", "clip", "image", "restore", "restore"}, ops(cmds))

	path := cmds[1]
	assert.Equal(t, id, path.ElementID)
	assert.Equal(t, "#3b82f6", path.Fill)
	assert.Equal(t, 100.0, path.FillOpacity)
	assert.Equal(t, 3.0, path.StrokeWidth)
	// Local origin maps to the element's top-left corner.
	assert.Equal(t, []float64{1, 0, 0, 1, 100, 100}, path.Transform)

	img := cmds[4]
	assert.Equal(t, "https://example.com/tex.png", img.Src)
	assert.Equal(t, 150.0, img.Width)
	assert.Equal(t, 100.0, img.Height)
}

func TestCompileSkipsHiddenAndBadPaths(t *testing.T) {
	ed := New(400, 300)
	hidden := rect(0, 0, 10, 10)
	hidden.Visible = false
	ed.AddElement(hidden)

	bad := scene.Element{
		Kind: scene.KindPath, Width: 10, Height: 10,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Path: &scene.Path{Data: "bogus 1 2"},
	}
	ed.AddElement(bad)

	cmds := CompileDrawCommands(ed.Scene())
	assert.Equal(t, []string{"save", "restore"}, ops(cmds))
}

func TestCompileImageClipsRoundedCorners(t *testing.T) {
	ed := New(400, 300)
	ed.AddElement(scene.Element{
		Kind: scene.KindImage, X: 10, Y: 10, Width: 80, Height: 60,
		ScaleX: 1, ScaleY: 1, Opacity: 0.5, Visible: true,
		Image: &scene.Image{
			Src: "a.png", BorderRadius: 12,
			Filters: scene.Filters{Blur: 2, Brightness: 100, Contrast: 100, Saturation: 100},
		},
	})

	cmds := CompileDrawCommands(ed.Scene())
	assert.Equal(t, []string{"save", "clip", "image", "restore"}, ops(cmds))
	img := cmds[2]
	assert.Equal(t, 0.5, img.Opacity)
	require.NotNil(t, img.Filters)
	assert.Equal(t, 2.0, img.Filters.Blur)
}

func TestCompileText(t *testing.T) {
	ed := New(400, 300)
	el := text("Title")
	el.Text.TextDecoration = "underline"
	el.Text.TextAlign = "center"
	ed.AddElement(el)

	cmds := CompileDrawCommands(ed.Scene())
	require.Equal(t, []string{"save", "text", "restore"}, ops(cmds))
	cmd := cmds[1]
	assert.Equal(t, "Title", cmd.Text)
	assert.Equal(t, "underline", cmd.TextDecoration)
	assert.Equal(t, "center", cmd.TextAlign)
}

func TestDrawCommandsToJSON(t *testing.T) {
	out, err := DrawCommandsToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", out)

	out, err = DrawCommandsToJSON([]DrawCommand{{Op: "save"}})
	require.NoError(t, err)
	assert.Contains(t, out, `"op":"save"`)
}

func TestAutosaveLifecycle(t *testing.T) {
	ed := New(400, 300)
	ed.AddElement(rect(0, 0, 10, 10))

	var mu sync.Mutex
	var saves int
	a := NewAutosave(10*time.Millisecond, ed.SnapshotScene, func(_ context.Context, s *scene.Scene) error {
		mu.Lock()
		defer mu.Unlock()
		saves++
		assert.Len(t, s.Elements, 1)
		return nil
	})

	a.Start()
	a.Start() // second Start is a no-op
	time.Sleep(35 * time.Millisecond)
	a.Stop()

	mu.Lock()
	got := saves
	mu.Unlock()
	assert.GreaterOrEqual(t, got, 2) // ticks plus the final flush
	a.Stop()                        // idempotent
}
