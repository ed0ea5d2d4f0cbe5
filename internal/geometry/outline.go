package geometry

import "math"

// ShapeKind names the built-in shape outlines.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeStar      ShapeKind = "star"
	ShapeHexagon   ShapeKind = "hexagon"
)

// Kappa approximates a quarter circle with a cubic Bézier.
const kappa = 0.5522847498307936

// Outline returns the closed path for a shape in local coordinates,
// filling the box (0,0)-(width,height). Unknown kinds fall back to a
// plain rectangle.
func Outline(kind ShapeKind, width, height, borderRadius float64) []PathCommand {
	switch kind {
	case ShapeCircle:
		return circleOutline(width, height)
	case ShapeTriangle:
		return triangleOutline(width, height)
	case ShapeStar:
		return starOutline(width, height)
	case ShapeHexagon:
		return hexagonOutline(width, height)
	default:
		return rectOutline(width, height, borderRadius)
	}
}

func rectOutline(w, h, radius float64) []PathCommand {
	r := min(radius, min(w, h)/2)
	if r <= 0 {
		return []PathCommand{
			{Op: OpMoveTo, Coords: []float64{0, 0}},
			{Op: OpLineTo, Coords: []float64{w, 0}},
			{Op: OpLineTo, Coords: []float64{w, h}},
			{Op: OpLineTo, Coords: []float64{0, h}},
			{Op: OpClose},
		}
	}
	k := r * kappa
	return []PathCommand{
		{Op: OpMoveTo, Coords: []float64{r, 0}},
		{Op: OpLineTo, Coords: []float64{w - r, 0}},
		{Op: OpCubicTo, Coords: []float64{w - r + k, 0, w, r - k, w, r}},
		{Op: OpLineTo, Coords: []float64{w, h - r}},
		{Op: OpCubicTo, Coords: []float64{w, h - r + k, w - r + k, h, w - r, h}},
		{Op: OpLineTo, Coords: []float64{r, h}},
		{Op: OpCubicTo, Coords: []float64{r - k, h, 0, h - r + k, 0, h - r}},
		{Op: OpLineTo, Coords: []float64{0, r}},
		{Op: OpCubicTo, Coords: []float64{0, r - k, r - k, 0, r, 0}},
		{Op: OpClose},
	}
}

// circleOutline inscribes a circle of radius min(w,h)/2 at the box center.
func circleOutline(w, h float64) []PathCommand {
	r := min(w, h) / 2
	cx, cy := w/2, h/2
	k := r * kappa
	return []PathCommand{
		{Op: OpMoveTo, Coords: []float64{cx + r, cy}},
		{Op: OpCubicTo, Coords: []float64{cx + r, cy + k, cx + k, cy + r, cx, cy + r}},
		{Op: OpCubicTo, Coords: []float64{cx - k, cy + r, cx - r, cy + k, cx - r, cy}},
		{Op: OpCubicTo, Coords: []float64{cx - r, cy - k, cx - k, cy - r, cx, cy - r}},
		{Op: OpCubicTo, Coords: []float64{cx + k, cy - r, cx + r, cy - k, cx + r, cy}},
		{Op: OpClose},
	}
}

func triangleOutline(w, h float64) []PathCommand {
	return []PathCommand{
		{Op: OpMoveTo, Coords: []float64{w / 2, 0}},
		{Op: OpLineTo, Coords: []float64{w, h}},
		{Op: OpLineTo, Coords: []float64{0, h}},
		{Op: OpClose},
	}
}

// starOutline draws a five-pointed star: ten vertices alternating between
// the outer radius and 40% of it, first point straight up.
func starOutline(w, h float64) []PathCommand {
	cx, cy := w/2, h/2
	outer := min(w, h) / 2
	inner := outer * 0.4

	cmds := make([]PathCommand, 0, 11)
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := float64(i)*math.Pi/5 - math.Pi/2
		x := cx + r*math.Cos(angle)
		y := cy + r*math.Sin(angle)
		op := OpLineTo
		if i == 0 {
			op = OpMoveTo
		}
		cmds = append(cmds, PathCommand{Op: op, Coords: []float64{x, y}})
	}
	return append(cmds, PathCommand{Op: OpClose})
}

// hexagonOutline draws a regular hexagon with the first vertex straight up.
func hexagonOutline(w, h float64) []PathCommand {
	cx, cy := w/2, h/2
	r := min(w, h) / 2

	cmds := make([]PathCommand, 0, 7)
	for i := 0; i < 6; i++ {
		angle := float64(i)*math.Pi/3 - math.Pi/2
		x := cx + r*math.Cos(angle)
		y := cy + r*math.Sin(angle)
		op := OpLineTo
		if i == 0 {
			op = OpMoveTo
		}
		cmds = append(cmds, PathCommand{Op: op, Coords: []float64{x, y}})
	}
	return append(cmds, PathCommand{Op: OpClose})
}
