package gui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/rodsphere/internal/geom"
	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/viz"
)

const (
	fovY      = 55.0
	rodRadius = 0.01
	rodSides  = 6
)

func vec3(v geom.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

func cameraFor(p orbit.Pose) rl.Camera3D {
	return rl.NewCamera3D(vec3(p.Position), vec3(p.Target), rl.NewVector3(0, 1, 0), fovY, rl.CameraPerspective)
}

// RenderRods draws every rod as a thin cylinder between its endpoints.
func (a *App) RenderRods() {
	for _, r := range a.Frame.Rods {
		p, q := r.Endpoints()
		rl.DrawCylinderEx(vec3(p), vec3(q), rodRadius, rodRadius, rodSides, ColRod)
	}
}

// RenderSparkline draws the drive curve in the bottom-left corner with a
// full-height cursor at the current position in the cycle.
func (a *App) RenderSparkline() {
	pts := a.Spark.Points()
	if len(pts) < 2 {
		return
	}
	w, h := float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
	_, sh := a.Spark.Size()
	oy := float32(h - sh)
	stroke := float32(viz.LineWidth(w, h))

	for i := 1; i < len(pts); i++ {
		s := rl.NewVector2(float32(pts[i-1].X), oy+float32(pts[i-1].Y))
		e := rl.NewVector2(float32(pts[i].X), oy+float32(pts[i].Y))
		rl.DrawLineEx(s, e, stroke, ColAccent)
	}

	x := float32(a.Spark.CursorX(a.Frame.Sample.Cursor()))
	rl.DrawLineEx(rl.NewVector2(x, oy), rl.NewVector2(x, oy+float32(sh)), stroke, ColSelect)
}

// DrawTelemetry plots the recent population history above the help line.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	rectX, rectY := w-330, h-120
	width, height := 300, 60

	// Normalize Data
	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("N: %d", int(a.Telemetry[len(a.Telemetry)-1])), rectX, rectY-20, 14, ColText)
}

func levelBar(level float64, width int) string {
	bars := int(level * float64(width))
	bars = max(0, min(bars, width))
	return "[" + strings.Repeat("|", bars) + strings.Repeat(" ", width-bars) + "]"
}
