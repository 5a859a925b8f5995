package export

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rodsphere/internal/geom"
	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/signal"
	"github.com/san-kum/rodsphere/internal/viz"
)

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			require.Equal(t, "EOF", err.Error())
			return
		}
	}
}

func TestSceneToSVG(t *testing.T) {
	rods := []placer.Rod{
		{ID: 1, Position: geom.UnitY, Orientation: geom.Identity, Length: 1},
		{ID: 2, Position: geom.UnitX, Orientation: placer.Orientation(geom.UnitX, 0.3), Length: 2},
		// Behind the camera: dropped.
		{ID: 3, Position: geom.Vec3{Z: 9}, Orientation: geom.Identity, Length: 1},
	}
	doc := SceneToSVG(Scene{
		Rods:   rods,
		Pose:   orbit.Pose{Position: geom.Vec3{Z: 5}},
		Curve:  signal.NewPeakedSine(20),
		Cursor: 0.5,
		Width:  800,
		Height: 600,
	})

	wellFormed(t, doc)
	assert.Equal(t, 3, strings.Count(doc, "<line "), "two rods and the cursor")
	assert.Contains(t, doc, `stroke-opacity="0.5"`)
	assert.Contains(t, doc, `<path d="M10.0,80.0`)
	assert.Contains(t, doc, `x1="150.0"`)

	assert.Empty(t, SceneToSVG(Scene{}))
}

func TestSceneToSVG_NoCurve(t *testing.T) {
	doc := SceneToSVG(Scene{Pose: orbit.Pose{Position: geom.Vec3{Z: 5}}, Width: 100, Height: 100})
	wellFormed(t, doc)
	assert.NotContains(t, doc, "<path")
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	doc := CanvasToSVG(c, 2)
	wellFormed(t, doc)
	assert.Equal(t, 2, strings.Count(doc, "<circle"))
	assert.Contains(t, doc, `width="8" height="8"`)
	assert.Empty(t, CanvasToSVG(nil, 1))
}

func TestSeriesToSVG(t *testing.T) {
	doc := SeriesToSVG([]float64{0, 5, 10, 5}, 300, 100, "#ffffff")
	wellFormed(t, doc)
	assert.Contains(t, doc, "M0.0,")
	assert.Contains(t, doc, "L300.0,")
	assert.Empty(t, SeriesToSVG([]float64{1}, 10, 10, "#fff"))
}
