package render

import (
	"image/color"
	"strconv"
	"strings"
)

// parseColor handles the color forms the editor emits: #rgb, #rrggbb,
// #rrggbbaa and a handful of CSS keywords. Returns false for anything else
// (including "transparent" and empty), which callers treat as "don't
// paint".
func parseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "transparent":
		return color.NRGBA{}, false
	case "white":
		return color.NRGBA{255, 255, 255, 255}, true
	case "black":
		return color.NRGBA{0, 0, 0, 255}, true
	case "red":
		return color.NRGBA{255, 0, 0, 255}, true
	case "green":
		return color.NRGBA{0, 128, 0, 255}, true
	case "blue":
		return color.NRGBA{0, 0, 255, 255}, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		r, okR := hexNibble(hex[0])
		g, okG := hexNibble(hex[1])
		b, okB := hexNibble(hex[2])
		if !okR || !okG || !okB {
			return color.NRGBA{}, false
		}
		return color.NRGBA{r * 17, g * 17, b * 17, 255}, true
	case 6, 8:
		v, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		if len(hex) == 6 {
			return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
		}
		return color.NRGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
	}
	return color.NRGBA{}, false
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// withAlpha scales a color's alpha by a 0..1 factor.
func withAlpha(c color.NRGBA, factor float64) color.NRGBA {
	if factor >= 1 {
		return c
	}
	if factor < 0 {
		factor = 0
	}
	c.A = uint8(float64(c.A)*factor + 0.5)
	return c
}
