package chart

import (
	"fmt"
	"strings"
)

// EncodeSVG serializes a scene to standalone SVG markup
func EncodeSVG(scene *Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(scene.Width), num(scene.Height), num(scene.Width), num(scene.Height))
	b.WriteString("\n")

	for _, shape := range scene.Shapes {
		switch s := shape.(type) {
		case Line:
			fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"`,
				num(s.X1), num(s.Y1), num(s.X2), num(s.Y2), s.Stroke, num(s.StrokeWidth))
			if s.Dashed {
				b.WriteString(` stroke-dasharray="6 4"`)
			}
			writeOpacity(&b, "stroke-opacity", s.Opacity)
			b.WriteString(" />\n")
		case Polyline:
			fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s"`,
				encodePoints(s.Points), s.Stroke, num(s.StrokeWidth))
			writeOpacity(&b, "stroke-opacity", s.Opacity)
			b.WriteString(" />\n")
		case Rect:
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"`,
				num(s.X), num(s.Y), num(s.W), num(s.H), s.Fill)
			writeOpacity(&b, "fill-opacity", s.Opacity)
			b.WriteString(" />\n")
		case Circle:
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s"`,
				num(s.CX), num(s.CY), num(s.R), s.Fill)
			writeOpacity(&b, "fill-opacity", s.Opacity)
			b.WriteString(" />\n")
		case Text:
			anchor := s.Anchor
			if anchor == "" {
				anchor = "start"
			}
			fmt.Fprintf(&b, `<text x="%s" y="%s" font-size="%s" fill="%s" text-anchor="%s" font-family="sans-serif">%s</text>`,
				num(s.X), num(s.Y), num(s.FontSize), s.Fill, anchor, escapeText(s.Content))
			b.WriteString("\n")
		}
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func encodePoints(points []Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, num(p.X)+","+num(p.Y))
	}
	return strings.Join(parts, " ")
}

func writeOpacity(b *strings.Builder, attr string, opacity float64) {
	if opacity > 0 && opacity < 1 {
		fmt.Fprintf(b, ` %s="%s"`, attr, num(opacity))
	}
}

// num formats a coordinate without trailing zeros
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
