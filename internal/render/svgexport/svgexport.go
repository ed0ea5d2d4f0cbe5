// Package svgexport serializes a scene snapshot as a self-contained SVG
// document: raster assets are embedded as data URIs so the file opens
// without network access.
package svgexport

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/racan/racan/backend-go/internal/assetfetch"
	"github.com/racan/racan/backend-go/internal/geometry"
	"github.com/racan/racan/backend-go/internal/scene"
)

// Serializer produces SVG text. It is pure with respect to the snapshot:
// identical scenes and embedded assets serialize identically.
type Serializer struct {
	resolver *assetfetch.Resolver
}

// New returns a serializer embedding remote assets through the resolver.
func New(resolver *assetfetch.Resolver) *Serializer {
	if resolver == nil {
		resolver = &assetfetch.Resolver{}
	}
	return &Serializer{resolver: resolver}
}

// Serialize renders the scene as an SVG string. The live scene is cloned
// first; the embed pre-pass never touches it.
func (sz *Serializer) Serialize(ctx context.Context, live *scene.Scene) (string, error) {
	s := live.Clone()
	sz.embedAssets(ctx, s)

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(s.Frame.Width), num(s.Frame.Height), num(s.Frame.Width), num(s.Frame.Height))
	b.WriteByte('\n')

	if s.Frame.Background != "" && s.Frame.Background != "transparent" {
		fmt.Fprintf(&b, `<rect width="%s" height="%s" fill="%s"/>`,
			num(s.Frame.Width), num(s.Frame.Height), escape(s.Frame.Background))
		b.WriteByte('\n')
	}
	if s.Frame.BackgroundImage != "" {
		fmt.Fprintf(&b, `<image width="%s" height="%s" preserveAspectRatio="xMidYMid slice" href="%s"/>`,
			num(s.Frame.Width), num(s.Frame.Height), escape(s.Frame.BackgroundImage))
		b.WriteByte('\n')
	}

	for i := range s.Elements {
		writeElement(&b, &s.Elements[i], i)
	}

	b.WriteString("</svg>\n")
	return b.String(), nil
}

// embedAssets converts every remote image reference into a base64 data URI,
// best effort: a failed fetch keeps the original URL.
func (sz *Serializer) embedAssets(ctx context.Context, s *scene.Scene) {
	refs := make(map[string]string)
	collect := func(src string) {
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			refs[src] = src
		}
	}
	collect(s.Frame.BackgroundImage)
	for i := range s.Elements {
		el := &s.Elements[i]
		if el.Image != nil {
			collect(el.Image.Src)
		}
		if el.Shape != nil {
			collect(el.Shape.FillImageSrc)
		}
	}
	if len(refs) == 0 {
		return
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for src := range refs {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			raw, ct, err := sz.resolver.FetchBytes(ctx, src)
			if err != nil {
				return
			}
			uri := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(raw)
			mu.Lock()
			refs[src] = uri
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	swap := func(src *string) {
		if uri, ok := refs[*src]; ok {
			*src = uri
		}
	}
	swap(&s.Frame.BackgroundImage)
	for i := range s.Elements {
		el := &s.Elements[i]
		if el.Image != nil {
			swap(&el.Image.Src)
		}
		if el.Shape != nil {
			swap(&el.Shape.FillImageSrc)
		}
	}
}

func writeElement(b *strings.Builder, el *scene.Element, index int) {
	if !el.Visible || el.Width <= 0 || el.Height <= 0 {
		return
	}
	gid := fmt.Sprintf("g%d", index)
	cx := el.X + el.Width/2
	cy := el.Y + el.Height/2

	fmt.Fprintf(b, `<g id="%s" transform="translate(%s,%s) rotate(%s) scale(%s,%s)"`,
		gid, num(cx), num(cy), num(el.Rotation), num(el.ScaleX), num(el.ScaleY))
	if el.Opacity != 1 {
		fmt.Fprintf(b, ` opacity="%s"`, num(el.Opacity))
	}
	b.WriteString(">")

	switch el.Kind {
	case scene.KindShape:
		writeShape(b, el, gid)
	case scene.KindImage:
		writeImage(b, el, gid)
	case scene.KindText:
		writeText(b, el)
	case scene.KindPath:
		writePath(b, el)
	}

	b.WriteString("</g>\n")
}

// shapePrimitive writes the element-local outline primitive, centered at
// the origin, with the given paint attributes appended.
func shapePrimitive(b *strings.Builder, kind geometry.ShapeKind, w, h, borderRadius float64, attrs string) {
	switch kind {
	case geometry.ShapeCircle:
		fmt.Fprintf(b, `<circle cx="0" cy="0" r="%s"%s/>`, num(min(w, h)/2), attrs)
	case geometry.ShapeTriangle, geometry.ShapeStar, geometry.ShapeHexagon:
		fmt.Fprintf(b, `<polygon points="%s"%s/>`, polygonPoints(kind, w, h), attrs)
	default:
		rx := ""
		if borderRadius > 0 {
			rx = fmt.Sprintf(` rx="%s"`, num(min(borderRadius, min(w, h)/2)))
		}
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s"%s%s/>`,
			num(-w/2), num(-h/2), num(w), num(h), rx, attrs)
	}
}

// polygonPoints lists the straight-line vertices of an outline, shifted so
// the element box is centered on the origin.
func polygonPoints(kind geometry.ShapeKind, w, h float64) string {
	var parts []string
	for _, c := range geometry.Outline(kind, w, h, 0) {
		if c.Op == geometry.OpMoveTo || c.Op == geometry.OpLineTo {
			parts = append(parts, num(c.Coords[0]-w/2)+","+num(c.Coords[1]-h/2))
		}
	}
	return strings.Join(parts, " ")
}

func paintAttrs(fill string, fillOpacity float64, stroke string, strokeWidth, strokeOpacity float64) string {
	var sb strings.Builder
	if fill == "" {
		sb.WriteString(` fill="none"`)
	} else {
		fmt.Fprintf(&sb, ` fill="%s"`, escape(fill))
		if fillOpacity != 100 {
			fmt.Fprintf(&sb, ` fill-opacity="%s"`, num(fillOpacity/100))
		}
	}
	if stroke != "" && strokeWidth > 0 {
		fmt.Fprintf(&sb, ` stroke="%s" stroke-width="%s"`, escape(stroke), num(strokeWidth))
		if strokeOpacity != 100 {
			fmt.Fprintf(&sb, ` stroke-opacity="%s"`, num(strokeOpacity/100))
		}
	}
	return sb.String()
}

func writeShape(b *strings.Builder, el *scene.Element, gid string) {
	sh := el.Shape
	if sh == nil {
		return
	}
	shapePrimitive(b, sh.Kind, el.Width, el.Height, sh.BorderRadius,
		paintAttrs(sh.Fill, sh.FillOpacity, sh.Stroke, sh.StrokeWidth, sh.StrokeOpacity))

	if sh.FillImageSrc != "" {
		clipID := "clip-" + gid
		fmt.Fprintf(b, `<clipPath id="%s">`, clipID)
		shapePrimitive(b, sh.Kind, el.Width, el.Height, sh.BorderRadius, "")
		b.WriteString(`</clipPath>`)
		fmt.Fprintf(b, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid slice" clip-path="url(#%s)" href="%s"/>`,
			num(-el.Width/2), num(-el.Height/2), num(el.Width), num(el.Height), clipID, escape(sh.FillImageSrc))
	}
}

func writeImage(b *strings.Builder, el *scene.Element, gid string) {
	im := el.Image
	if im == nil || im.Src == "" {
		return
	}
	clip := ""
	if im.BorderRadius > 0 {
		clipID := "clip-" + gid
		rx := min(im.BorderRadius, min(el.Width, el.Height)/2)
		fmt.Fprintf(b, `<clipPath id="%s"><rect x="%s" y="%s" width="%s" height="%s" rx="%s"/></clipPath>`,
			clipID, num(-el.Width/2), num(-el.Height/2), num(el.Width), num(el.Height), num(rx))
		clip = fmt.Sprintf(` clip-path="url(#%s)"`, clipID)
	}
	style := ""
	if !im.Filters.IsNeutral() {
		style = fmt.Sprintf(` style="filter: %s"`, filterCSS(im.Filters))
	}
	fmt.Fprintf(b, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid slice"%s%s href="%s"/>`,
		num(-el.Width/2), num(-el.Height/2), num(el.Width), num(el.Height), clip, style, escape(im.Src))
}

func filterCSS(f scene.Filters) string {
	var parts []string
	if f.Blur > 0 {
		parts = append(parts, fmt.Sprintf("blur(%spx)", num(f.Blur)))
	}
	if f.Brightness != 100 {
		parts = append(parts, fmt.Sprintf("brightness(%s%%)", num(f.Brightness)))
	}
	if f.Contrast != 100 {
		parts = append(parts, fmt.Sprintf("contrast(%s%%)", num(f.Contrast)))
	}
	if f.Saturation != 100 {
		parts = append(parts, fmt.Sprintf("saturate(%s%%)", num(f.Saturation)))
	}
	if f.Grayscale > 0 {
		parts = append(parts, fmt.Sprintf("grayscale(%s%%)", num(f.Grayscale)))
	}
	return strings.Join(parts, " ")
}

func writeText(b *strings.Builder, el *scene.Element) {
	t := el.Text
	if t == nil {
		return
	}
	fmt.Fprintf(b, `<text x="0" y="0" text-anchor="middle" dominant-baseline="middle" font-size="%s"`, num(t.FontSize))
	if t.FontFamily != "" {
		fmt.Fprintf(b, ` font-family="%s"`, escape(t.FontFamily))
	}
	if t.FontWeight != "" && t.FontWeight != "normal" {
		fmt.Fprintf(b, ` font-weight="%s"`, escape(t.FontWeight))
	}
	if t.FontStyle != "" && t.FontStyle != "normal" {
		fmt.Fprintf(b, ` font-style="%s"`, escape(t.FontStyle))
	}
	if t.TextDecoration != "" {
		fmt.Fprintf(b, ` text-decoration="%s"`, escape(t.TextDecoration))
	}
	if t.Color != "" {
		fmt.Fprintf(b, ` fill="%s"`, escape(t.Color))
	}
	b.WriteString(">")
	b.WriteString(escape(t.Content))
	b.WriteString("</text>")
}

func writePath(b *strings.Builder, el *scene.Element) {
	p := el.Path
	if p == nil || p.Data == "" {
		return
	}
	fill := p.Fill
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(b, `<path d="%s" transform="translate(%s,%s)" fill="%s"`,
		escape(p.Data), num(-el.Width/2), num(-el.Height/2), escape(fill))
	if p.Stroke != "" && p.StrokeWidth > 0 {
		fmt.Fprintf(b, ` stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"`,
			escape(p.Stroke), num(p.StrokeWidth))
	}
	b.WriteString("/>")
}

// num formats a coordinate compactly and deterministically.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-0" || s == "-" {
		return "0"
	}
	return s
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
