package viz

import (
	"math"
	"sort"

	"github.com/san-kum/rodsphere/internal/geom"
	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/placer"
)

// DefaultFOV is the vertical field of view of the scene camera.
const DefaultFOV = 55 * math.Pi / 180

// Camera is a perspective look-at camera.
type Camera struct {
	Position, Target, Up geom.Vec3
	FOV, Near, Far       float64
	Zoom                 float64
}

func NewCamera() *Camera {
	return &Camera{
		Position: geom.Vec3{Z: 5},
		Up:       geom.UnitY,
		FOV:      DefaultFOV,
		Near:     0.1,
		Far:      100,
		Zoom:     1.0,
	}
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Follow places the camera at an orbit pose.
func (c *Camera) Follow(p orbit.Pose) {
	c.Position, c.Target = p.Position, p.Target
}

// basis returns right, up and forward unit vectors of the view.
func (c *Camera) basis() (geom.Vec3, geom.Vec3, geom.Vec3) {
	fwd := c.Target.Sub(c.Position).Normalize()
	right := fwd.Cross(c.Up).Normalize()
	if right.Length() == 0 {
		right = geom.UnitX
	}
	up := right.Cross(fwd)
	return right, up, fwd
}

// Project maps a world point onto a sw x sh pixel surface. Terminal cells are
// not square, so aspect is the physical width/height of one pixel.
// Returns x, y, view depth and whether the point is in front of the camera
// and on screen.
func (c *Camera) Project(p geom.Vec3, sw, sh int, aspect float64) (int, int, float64, bool) {
	right, up, fwd := c.basis()
	rel := p.Sub(c.Position)
	depth := rel.Dot(fwd)
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	if aspect <= 0 {
		aspect = 1
	}

	f := c.Zoom / math.Tan(c.FOV/2)
	ndcX := rel.Dot(right) * f / depth
	ndcY := rel.Dot(up) * f / depth

	half := float64(sh) / 2
	sx := int(math.Round(float64(sw)/2 + ndcX*half/aspect))
	sy := int(math.Round(half - ndcY*half))
	return sx, sy, depth, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// A 1:2 terminal cell holds 2x4 braille dots, so dots are close to square.
const brailleAspect = 1.0

type Edge struct {
	Start, End geom.Vec3
}

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
}

// Render3D draws edges to the canvas far-to-near. Edges with either end
// behind the camera are skipped.
func Render3D(c *Canvas, edges []Edge, cam *Camera) {
	if c == nil || cam == nil {
		return
	}
	cw, ch := c.SubWidth(), c.SubHeight()
	proj := make([]ProjectedEdge, 0, len(edges))
	for _, e := range edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch, brailleAspect)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch, brailleAspect)
		if d1 < cam.Near || d2 < cam.Near || !(v1 || v2) {
			continue
		}
		proj = append(proj, ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].Depth > proj[j].Depth })
	for _, e := range proj {
		c.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
	}
}

func RodEdges(rods []placer.Rod) []Edge {
	edges := make([]Edge, len(rods))
	for i, r := range rods {
		a, b := r.Endpoints()
		edges[i] = Edge{a, b}
	}
	return edges
}

// SphereOutline draws the silhouette of a sphere of the given radius at the
// origin as a dotted circle.
func SphereOutline(c *Canvas, cam *Camera, radius float64) {
	cw, ch := c.SubWidth(), c.SubHeight()
	dist := cam.Position.Sub(cam.Target).Length()
	if dist <= radius {
		return
	}
	cx, cy, _, ok := cam.Project(cam.Target, cw, ch, brailleAspect)
	if !ok {
		return
	}
	// Angular radius of the silhouette, projected with the same focal scale.
	ang := math.Asin(radius / dist)
	f := cam.Zoom / math.Tan(cam.FOV/2)
	r := int(math.Round(math.Tan(ang) * f * float64(ch) / 2))
	c.DrawDottedCircle(cx, cy, r, 3)
}

// Scene renders the rods seen from pose.
func Scene(c *Canvas, cam *Camera, pose orbit.Pose, rods []placer.Rod) {
	c.Clear()
	cam.Follow(pose)
	SphereOutline(c, cam, 1)
	Render3D(c, RodEdges(rods), cam)
}
