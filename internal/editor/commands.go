package editor

import (
	"encoding/json"

	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/scene"
)

// DrawCommand is a single drawing operation for the frontend to execute on
// a Canvas2D context. A frame is a flat list in painter's order.
type DrawCommand struct {
	Op        string                 `json:"op"` // "save", "restore", "clip", "path", "image", "text"
	ElementID string                 `json:"elementId,omitempty"`
	Transform []float64              `json:"transform,omitempty"` // [a, b, c, d, e, f]
	Path      []geometry.PathCommand `json:"path,omitempty"`
	Opacity   float64                `json:"opacity,omitempty"`

	Fill          string  `json:"fill,omitempty"`
	FillOpacity   float64 `json:"fillOpacity,omitempty"`
	Stroke        string  `json:"stroke,omitempty"`
	StrokeWidth   float64 `json:"strokeWidth,omitempty"`
	StrokeOpacity float64 `json:"strokeOpacity,omitempty"`

	// image: cover-fit the source into Width x Height at the local origin.
	Src     string         `json:"src,omitempty"`
	Width   float64        `json:"width,omitempty"`
	Height  float64        `json:"height,omitempty"`
	Filters *scene.Filters `json:"filters,omitempty"`

	// text
	Text           string  `json:"text,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	FontFamily     string  `json:"fontFamily,omitempty"`
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty"`
	Color          string  `json:"color,omitempty"`
}

// CompileDrawCommands flattens a scene into draw commands, back to front.
// Each element is bracketed by save/restore so clips never leak.
func CompileDrawCommands(s *scene.Scene) []DrawCommand {
	var cmds []DrawCommand
	for i := range s.Elements {
		compileElement(&s.Elements[i], &cmds)
	}
	return cmds
}

// localTransform maps the element's local box (0,0)-(w,h) onto the canvas.
func localTransform(el *scene.Element) []float64 {
	m := el.Transform().Multiply(geometry.Translate(-el.Width/2, -el.Height/2))
	return m.ToSlice()
}

func compileElement(el *scene.Element, cmds *[]DrawCommand) {
	if !el.Visible {
		return
	}
	tf := localTransform(el)
	*cmds = append(*cmds, DrawCommand{Op: "save"})

	switch el.Kind {
	case scene.KindShape:
		compileShape(el, tf, cmds)
	case scene.KindImage:
		compileImage(el, tf, cmds)
	case scene.KindText:
		compileText(el, tf, cmds)
	case scene.KindPath:
		compilePath(el, tf, cmds)
	}

	*cmds = append(*cmds, DrawCommand{Op: "restore"})
}

func compileShape(el *scene.Element, tf []float64, cmds *[]DrawCommand) {
	sh := el.Shape
	if sh == nil {
		return
	}
	outline := geometry.Outline(sh.Kind, el.Width, el.Height, sh.BorderRadius)

	*cmds = append(*cmds, DrawCommand{
		Op:            "path",
		ElementID:     el.ID,
		Transform:     tf,
		Path:          outline,
		Opacity:       el.Opacity,
		Fill:          sh.Fill,
		FillOpacity:   sh.FillOpacity,
		Stroke:        sh.Stroke,
		StrokeWidth:   sh.StrokeWidth,
		StrokeOpacity: sh.StrokeOpacity,
	})

	if sh.FillImageSrc != "" {
		*cmds = append(*cmds,
			DrawCommand{Op: "save"},
			DrawCommand{Op: "clip", Transform: tf, Path: outline},
			DrawCommand{
				Op:        "image",
				ElementID: el.ID,
				Transform: tf,
				Opacity:   el.Opacity,
				Src:       sh.FillImageSrc,
				Width:     el.Width,
				Height:    el.Height,
			},
			DrawCommand{Op: "restore"},
		)
	}
}

func compileImage(el *scene.Element, tf []float64, cmds *[]DrawCommand) {
	img := el.Image
	if img == nil {
		return
	}
	if img.BorderRadius > 0 {
		clip := geometry.Outline(geometry.ShapeRectangle, el.Width, el.Height, img.BorderRadius)
		*cmds = append(*cmds, DrawCommand{Op: "clip", Transform: tf, Path: clip})
	}
	cmd := DrawCommand{
		Op:        "image",
		ElementID: el.ID,
		Transform: tf,
		Opacity:   el.Opacity,
		Src:       img.Src,
		Width:     el.Width,
		Height:    el.Height,
	}
	if !img.Filters.IsNeutral() {
		f := img.Filters
		cmd.Filters = &f
	}
	*cmds = append(*cmds, cmd)
}

func compileText(el *scene.Element, tf []float64, cmds *[]DrawCommand) {
	t := el.Text
	if t == nil {
		return
	}
	*cmds = append(*cmds, DrawCommand{
		Op:             "text",
		ElementID:      el.ID,
		Transform:      tf,
		Opacity:        el.Opacity,
		Text:           t.Content,
		FontSize:       t.FontSize,
		FontFamily:     t.FontFamily,
		FontWeight:     t.FontWeight,
		FontStyle:      t.FontStyle,
		TextDecoration: t.TextDecoration,
		TextAlign:      t.TextAlign,
		Color:          t.Color,
		Width:          el.Width,
		Height:         el.Height,
	})
}

func compilePath(el *scene.Element, tf []float64, cmds *[]DrawCommand) {
	p := el.Path
	if p == nil {
		return
	}
	path, err := geometry.ParsePathData(p.Data)
	if err != nil || len(path) == 0 {
		return
	}
	*cmds = append(*cmds, DrawCommand{
		Op:          "path",
		ElementID:   el.ID,
		Transform:   tf,
		Path:        path,
		Opacity:     el.Opacity,
		Fill:        p.Fill,
		Stroke:      p.Stroke,
		StrokeWidth: p.StrokeWidth,
	})
}

// DrawCommandsToJSON serializes draw commands for the wasm boundary.
func DrawCommandsToJSON(cmds []DrawCommand) (string, error) {
	data, err := json.Marshal(cmds)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
