package scene

import (
	"encoding/json"
	"fmt"

	"github.com/racan/racan/backend-go/internal/geometry"
)

// Kind discriminates the element variants.
type Kind string

const (
	KindText  Kind = "text"
	KindShape Kind = "shape"
	KindImage Kind = "image"
	KindPath  Kind = "path"
)

// Element is a single item on the canvas. Exactly one of the payload
// pointers (Text, Shape, Image, Path) is non-nil, matching Kind. The wire
// form is flat camelCase (see elementJSON), shared with template records
// and project files.
type Element struct {
	ID       string
	Kind     Kind
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64 // degrees, about the element center
	ScaleX   float64 // default 1; negative mirrors
	ScaleY   float64
	Opacity  float64 // 0..1
	Visible  bool
	Locked   bool
	Name     string

	Text  *Text
	Shape *Shape
	Image *Image
	Path  *Path
}

// Text holds the payload for text elements.
type Text struct {
	Content        string
	FontSize       float64
	FontFamily     string
	FontWeight     string
	FontStyle      string
	TextDecoration string // "underline" or empty
	TextAlign      string
	Color          string
}

// Underlined reports whether the text carries an underline decoration.
func (t *Text) Underlined() bool { return t.TextDecoration == "underline" }

// Shape holds the payload for shape elements. FillOpacity and StrokeOpacity
// are percentages (0..100, default 100) multiplied with the element opacity
// when painting.
type Shape struct {
	Kind          geometry.ShapeKind
	Fill          string // background color
	Stroke        string
	StrokeWidth   float64
	BorderRadius  float64 // rectangles only
	FillImageSrc  string
	FillOpacity   float64
	StrokeOpacity float64
}

// Filters are the non-destructive image adjustments, standard CSS filter
// semantics: Brightness, Contrast and Saturation are percentages (100
// neutral), Grayscale a percentage (0 neutral), Blur a radius in pixels.
type Filters struct {
	Blur       float64 `json:"blur"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Grayscale  float64 `json:"grayscale"`
}

// NeutralFilters returns the filter values that leave an image unchanged.
func NeutralFilters() Filters {
	return Filters{Brightness: 100, Contrast: 100, Saturation: 100}
}

// IsNeutral reports whether the filters have no visible effect.
func (f Filters) IsNeutral() bool {
	return f == NeutralFilters()
}

// Image holds the payload for image elements. The edit field tracks the
// in-flight non-destructive editing session and is never persisted.
type Image struct {
	Src          string
	BorderRadius float64
	Filters      Filters

	edit editState
}

// Path holds the payload for freehand path elements. Data is the absolute
// "M x y L x y" command string, normalized so the bounding box starts at
// (0,0) in element-local coordinates. Points optionally keeps the raw
// samples the path was drawn from.
type Path struct {
	Data        string
	Points      []geometry.Point
	Stroke      string
	StrokeWidth float64
	Fill        string
}

// Bounds returns the element's axis-aligned pre-rotation bounding box.
func (e *Element) Bounds() geometry.Rect {
	return geometry.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Transform returns the element's center-to-canvas matrix: translate to
// center, rotate, then mirror by the scale signs.
func (e *Element) Transform() geometry.Matrix2D {
	return geometry.ElementTransform(e.X, e.Y, e.Width, e.Height, e.Rotation, e.ScaleX, e.ScaleY)
}

// elementJSON is the flat wire form shared with templates and .racan files.
type elementJSON struct {
	ID       string   `json:"id"`
	Type     Kind     `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Rotation float64  `json:"rotation"`
	ScaleX   *float64 `json:"scaleX,omitempty"`
	ScaleY   *float64 `json:"scaleY,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Visible  *bool    `json:"visible,omitempty"`
	Locked   bool     `json:"locked,omitempty"`
	Name     string   `json:"name,omitempty"`

	// text
	Content        string  `json:"content,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	FontFamily     string  `json:"fontFamily,omitempty"`
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty"`
	Color          string  `json:"color,omitempty"`

	// shape and path share fill/stroke naming
	ShapeType       geometry.ShapeKind `json:"shapeType,omitempty"`
	BackgroundColor string             `json:"backgroundColor,omitempty"`
	StrokeColor     string             `json:"strokeColor,omitempty"`
	StrokeWidth     float64            `json:"strokeWidth,omitempty"`
	BorderRadius    float64            `json:"borderRadius,omitempty"`
	FillImageSrc    string             `json:"fillImageSrc,omitempty"`
	FillOpacity     *float64           `json:"fillOpacity,omitempty"`
	StrokeOpacity   *float64           `json:"strokeOpacity,omitempty"`

	// image
	ImageSrc   string   `json:"imageSrc,omitempty"`
	Blur       float64  `json:"blur,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty"`
	Saturation *float64 `json:"saturation,omitempty"`
	Grayscale  float64  `json:"grayscale,omitempty"`

	// path
	PathData string           `json:"pathData,omitempty"`
	Points   []geometry.Point `json:"points,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	w := elementJSON{
		ID:       e.ID,
		Type:     e.Kind,
		X:        e.X,
		Y:        e.Y,
		Width:    e.Width,
		Height:   e.Height,
		Rotation: e.Rotation,
		Locked:   e.Locked,
		Name:     e.Name,
	}
	if e.ScaleX != 1 {
		w.ScaleX = ptr(e.ScaleX)
	}
	if e.ScaleY != 1 {
		w.ScaleY = ptr(e.ScaleY)
	}
	if e.Opacity != 1 {
		w.Opacity = ptr(e.Opacity)
	}
	if !e.Visible {
		w.Visible = ptr(false)
	}

	switch e.Kind {
	case KindText:
		if t := e.Text; t != nil {
			w.Content = t.Content
			w.FontSize = t.FontSize
			w.FontFamily = t.FontFamily
			w.FontWeight = t.FontWeight
			w.FontStyle = t.FontStyle
			w.TextDecoration = t.TextDecoration
			w.TextAlign = t.TextAlign
			w.Color = t.Color
		}
	case KindShape:
		if s := e.Shape; s != nil {
			w.ShapeType = s.Kind
			w.BackgroundColor = s.Fill
			w.StrokeColor = s.Stroke
			w.StrokeWidth = s.StrokeWidth
			w.BorderRadius = s.BorderRadius
			w.FillImageSrc = s.FillImageSrc
			if s.FillOpacity != 100 {
				w.FillOpacity = ptr(s.FillOpacity)
			}
			if s.StrokeOpacity != 100 {
				w.StrokeOpacity = ptr(s.StrokeOpacity)
			}
		}
	case KindImage:
		if img := e.Image; img != nil {
			w.ImageSrc = img.Src
			w.BorderRadius = img.BorderRadius
			w.Blur = img.Filters.Blur
			w.Grayscale = img.Filters.Grayscale
			if img.Filters.Brightness != 100 {
				w.Brightness = ptr(img.Filters.Brightness)
			}
			if img.Filters.Contrast != 100 {
				w.Contrast = ptr(img.Filters.Contrast)
			}
			if img.Filters.Saturation != 100 {
				w.Saturation = ptr(img.Filters.Saturation)
			}
		}
	case KindPath:
		if p := e.Path; p != nil {
			w.PathData = p.Data
			w.Points = p.Points
			w.StrokeColor = p.Stroke
			w.StrokeWidth = p.StrokeWidth
			w.BackgroundColor = p.Fill
		}
	}
	return json.Marshal(w)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var w elementJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*e = Element{
		ID:       w.ID,
		Kind:     w.Type,
		X:        w.X,
		Y:        w.Y,
		Width:    w.Width,
		Height:   w.Height,
		Rotation: w.Rotation,
		ScaleX:   orDefault(w.ScaleX, 1),
		ScaleY:   orDefault(w.ScaleY, 1),
		Opacity:  orDefault(w.Opacity, 1),
		Visible:  w.Visible == nil || *w.Visible,
		Locked:   w.Locked,
		Name:     w.Name,
	}

	switch w.Type {
	case KindText:
		e.Text = &Text{
			Content:        w.Content,
			FontSize:       w.FontSize,
			FontFamily:     w.FontFamily,
			FontWeight:     w.FontWeight,
			FontStyle:      w.FontStyle,
			TextDecoration: w.TextDecoration,
			TextAlign:      w.TextAlign,
			Color:          w.Color,
		}
	case KindShape:
		e.Shape = &Shape{
			Kind:          w.ShapeType,
			Fill:          w.BackgroundColor,
			Stroke:        w.StrokeColor,
			StrokeWidth:   w.StrokeWidth,
			BorderRadius:  w.BorderRadius,
			FillImageSrc:  w.FillImageSrc,
			FillOpacity:   orDefault(w.FillOpacity, 100),
			StrokeOpacity: orDefault(w.StrokeOpacity, 100),
		}
	case KindImage:
		e.Image = &Image{
			Src:          w.ImageSrc,
			BorderRadius: w.BorderRadius,
			Filters: Filters{
				Blur:       w.Blur,
				Brightness: orDefault(w.Brightness, 100),
				Contrast:   orDefault(w.Contrast, 100),
				Saturation: orDefault(w.Saturation, 100),
				Grayscale:  w.Grayscale,
			},
		}
	case KindPath:
		e.Path = &Path{
			Data:        w.PathData,
			Points:      w.Points,
			Stroke:      w.StrokeColor,
			StrokeWidth: w.StrokeWidth,
			Fill:        w.BackgroundColor,
		}
	default:
		return fmt.Errorf("element %q: unknown type %q", w.ID, w.Type)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
