// Package export renders scenes and traces as standalone SVG documents.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/signal"
	"github.com/san-kum/rodsphere/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// Scene describes one still of the piece.
type Scene struct {
	Rods   []placer.Rod
	Pose   orbit.Pose
	Curve  signal.Curve
	Cursor float64
	Width  int
	Height int
}

type segment struct {
	x1, y1, x2, y2 int
	depth          float64
}

// SceneToSVG draws the rods as translucent white lines seen from the pose,
// with the sparkline and its cursor overlaid in the bottom-left corner. A
// nil curve omits the sparkline.
func SceneToSVG(s Scene) string {
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		return ""
	}

	cam := viz.NewCamera()
	cam.Follow(s.Pose)

	segs := make([]segment, 0, len(s.Rods))
	for _, r := range s.Rods {
		a, b := r.Endpoints()
		x1, y1, d1, v1 := cam.Project(a, w, h, 1)
		x2, y2, d2, v2 := cam.Project(b, w, h, 1)
		if d1 < cam.Near || d2 < cam.Near || !(v1 || v2) {
			continue
		}
		segs = append(segs, segment{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].depth > segs[j].depth })

	var sb strings.Builder
	header(&sb, float64(w), float64(h))

	sb.WriteString(`<g stroke="#ffffff" stroke-opacity="0.5" stroke-width="1" stroke-linecap="round">` + "\n")
	for _, sg := range segs {
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", sg.x1, sg.y1, sg.x2, sg.y2)
	}
	sb.WriteString("</g>\n")

	if s.Curve != nil {
		writeSparkline(&sb, s.Curve, s.Cursor, float64(w), float64(h))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeSparkline(sb *strings.Builder, curve signal.Curve, cursor, vw, vh float64) {
	sp := viz.NewSparkline(curve, viz.SparklineMargin)
	sp.Fit(vw, vh)
	pts := sp.Points()
	if len(pts) < 2 {
		return
	}
	_, sh := sp.Size()
	lw := viz.LineWidth(vw, vh)

	fmt.Fprintf(sb, `<g transform="translate(0 %.1f)" fill="none" stroke="#ffffff" stroke-width="%.0f">`+"\n", vh-sh, lw)
	sb.WriteString(`<path d="M`)
	for i, p := range pts {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(sb, "%.1f,%.1f", p.X, p.Y)
	}
	sb.WriteString(`"/>` + "\n")
	x := sp.CursorX(cursor)
	fmt.Fprintf(sb, `<line x1="%.1f" y1="0" x2="%.1f" y2="%.1f"/>`+"\n", x, x, sh)
	sb.WriteString("</g>\n")
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(`<g fill="#ffffff">` + "\n")

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots evenly spaced values as a polyline with 10% padding.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
