package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// PathOp identifies a path drawing operation.
type PathOp string

const (
	OpMoveTo  PathOp = "M" // 2 coords: x, y
	OpLineTo  PathOp = "L" // 2 coords: x, y
	OpQuadTo  PathOp = "Q" // 4 coords: cx, cy, x, y
	OpCubicTo PathOp = "C" // 6 coords: c1x, c1y, c2x, c2y, x, y
	OpClose   PathOp = "Z" // 0 coords
)

// PathCommand is a single typed path segment. Coords holds the absolute
// coordinates for the operation; its length is fixed by Op.
type PathCommand struct {
	Op     PathOp    `json:"op"`
	Coords []float64 `json:"coords,omitempty"`
}

func coordCount(op PathOp) (int, bool) {
	switch op {
	case OpMoveTo, OpLineTo:
		return 2, true
	case OpQuadTo:
		return 4, true
	case OpCubicTo:
		return 6, true
	case OpClose:
		return 0, true
	}
	return 0, false
}

// ParsePathData parses an absolute-command path string ("M x y L x y Q ... Z")
// into typed commands. Only the uppercase M/L/Q/C/Z subset is accepted; this
// is the subset freehand strokes and shape outlines produce.
func ParsePathData(data string) ([]PathCommand, error) {
	fields := strings.Fields(data)
	var cmds []PathCommand
	i := 0
	for i < len(fields) {
		op := PathOp(fields[i])
		n, ok := coordCount(op)
		if !ok {
			return nil, fmt.Errorf("path data: unsupported command %q at token %d", fields[i], i)
		}
		i++
		if i+n > len(fields) {
			return nil, fmt.Errorf("path data: command %s needs %d coordinates, got %d", op, n, len(fields)-i)
		}
		var coords []float64
		if n > 0 {
			coords = make([]float64, n)
			for j := 0; j < n; j++ {
				v, err := strconv.ParseFloat(fields[i+j], 64)
				if err != nil {
					return nil, fmt.Errorf("path data: bad coordinate %q: %w", fields[i+j], err)
				}
				coords[j] = v
			}
		}
		i += n
		cmds = append(cmds, PathCommand{Op: op, Coords: coords})
	}
	return cmds, nil
}

// FormatPathData serializes commands back to the string form. Coordinates
// are written with up to two decimal places, trailing zeros trimmed.
func FormatPathData(cmds []PathCommand) string {
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(c.Op))
		for _, v := range c.Coords {
			b.WriteByte(' ')
			b.WriteString(formatCoord(v))
		}
	}
	return b.String()
}

func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// PathBounds returns the bounding box of a command list. Control points are
// included, so curves get a conservative box. Returns a zero rect for an
// empty list.
func PathBounds(cmds []PathCommand) Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, c := range cmds {
		for j := 0; j+1 < len(c.Coords); j += 2 {
			x, y := c.Coords[j], c.Coords[j+1]
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if first {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// TransformPath applies a matrix to every coordinate pair in the commands,
// returning a new slice.
func TransformPath(cmds []PathCommand, m Matrix2D) []PathCommand {
	out := make([]PathCommand, len(cmds))
	for i, c := range cmds {
		nc := PathCommand{Op: c.Op}
		if len(c.Coords) > 0 {
			nc.Coords = make([]float64, len(c.Coords))
			for j := 0; j+1 < len(c.Coords); j += 2 {
				nc.Coords[j], nc.Coords[j+1] = m.TransformPoint(c.Coords[j], c.Coords[j+1])
			}
		}
		out[i] = nc
	}
	return out
}

// Smooth applies two iterations of Chaikin corner cutting to a polyline,
// keeping the original endpoints. Strokes with fewer than three points are
// returned unchanged.
func Smooth(points []Point) []Point {
	pts := points
	for iter := 0; iter < 2; iter++ {
		if len(pts) < 3 {
			return pts
		}
		out := make([]Point, 0, len(pts)*2)
		out = append(out, pts[0])
		for i := 0; i < len(pts)-1; i++ {
			p0, p1 := pts[i], pts[i+1]
			out = append(out,
				Point{X: 0.75*p0.X + 0.25*p1.X, Y: 0.75*p0.Y + 0.25*p1.Y},
				Point{X: 0.25*p0.X + 0.75*p1.X, Y: 0.25*p0.Y + 0.75*p1.Y},
			)
		}
		out = append(out, pts[len(pts)-1])
		pts = out
	}
	return pts
}

// BoundingBox returns the axis-aligned bounds of a point list, or a zero
// rect for an empty list.
func BoundingBox(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// PolylinePath converts a point list into M/L commands.
func PolylinePath(points []Point) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	cmds := make([]PathCommand, 0, len(points))
	cmds = append(cmds, PathCommand{Op: OpMoveTo, Coords: []float64{points[0].X, points[0].Y}})
	for _, p := range points[1:] {
		cmds = append(cmds, PathCommand{Op: OpLineTo, Coords: []float64{p.X, p.Y}})
	}
	return cmds
}
