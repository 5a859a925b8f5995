package placer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/rodsphere/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlacer(mode Mode, seed int64) *Placer {
	cfg := DefaultConfig()
	cfg.Mode = mode
	return New(cfg, rand.New(rand.NewSource(seed)))
}

// cosBins histograms cos(theta). Equal-width bins in cos(theta) cover equal
// sphere area, so an area-uniform sampler fills them evenly.
func cosBins(p *Placer, n, bins int) []int {
	counts := make([]int, bins)
	for i := 0; i < n; i++ {
		rod := p.Place()
		c := rod.Position.Normalize().Z
		idx := int((c + 1) / 2 * float64(bins))
		if idx == bins {
			idx--
		}
		counts[idx]++
	}
	return counts
}

func TestPlace_UniformOverSphereArea(t *testing.T) {
	const n, bins = 200000, 10
	counts := cosBins(newPlacer(ModeUniform, 42), n, bins)

	expected := float64(n) / bins
	for i, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.05, "bin %d", i)
	}
}

func TestPlace_LegacyOversamplesPoles(t *testing.T) {
	const n, bins = 200000, 10
	counts := cosBins(newPlacer(ModeLegacy, 42), n, bins)

	expected := float64(n) / bins
	// Polar caps collect well above their area share; the equatorial band falls short.
	assert.Greater(t, float64(counts[0]), expected*1.3)
	assert.Greater(t, float64(counts[bins-1]), expected*1.3)
	assert.Less(t, float64(counts[bins/2]), expected*0.9)
}

func TestPlace_RadiusWithinJitter(t *testing.T) {
	p := newPlacer(ModeUniform, 3)
	for i := 0; i < 5000; i++ {
		r := p.Place().Position.Length()
		assert.GreaterOrEqual(t, r, 0.9-1e-12)
		assert.LessOrEqual(t, r, 1.1+1e-12)
	}
}

func TestPlace_TangentAlignedAxis(t *testing.T) {
	p := newPlacer(ModeUniform, 11)
	for i := 0; i < 5000; i++ {
		rod := p.Place()
		axis := rod.Axis()
		radial := rod.Position.Normalize()

		assert.InDelta(t, 1, axis.Length(), 1e-9)
		assert.InDelta(t, 0, axis.Dot(radial), 1e-9, "axis must lie in the tangent plane")
	}
}

func TestPlace_TwistVariesOrientation(t *testing.T) {
	pos := geom.Vec3{X: 0.3, Y: 0.4, Z: 0.866}
	a := Orientation(pos, 0).Rotate(geom.UnitY)
	b := Orientation(pos, math.Pi/2).Rotate(geom.UnitY)

	assert.InDelta(t, 0, a.Dot(b), 1e-9, "quarter twist yields a perpendicular tangent")
	assert.InDelta(t, 0, b.Dot(pos.Normalize()), 1e-9)
}

func TestOrientation_NearPoleUsesZHelper(t *testing.T) {
	axis := Orientation(geom.Vec3{X: 0, Y: 1, Z: 0}, 0).Rotate(geom.UnitY)
	assert.InDelta(t, 1, axis.Length(), 1e-9)
	assert.InDelta(t, 0, axis.Y, 1e-9)
}

func TestPlace_LengthBiasedShort(t *testing.T) {
	p := newPlacer(ModeUniform, 5)
	const n = 50000
	sum := 0.0
	short := 0
	for i := 0; i < n; i++ {
		l := p.Place().Length
		require.GreaterOrEqual(t, l, 1.0)
		require.LessOrEqual(t, l, 4.0)
		sum += l
		if l < 2.5 {
			short++
		}
	}
	// E[1 + 3u^3] = 1.75
	assert.InDelta(t, 1.75, sum/n, 0.03)
	assert.Greater(t, short, n*3/4)
}

func TestPlace_UniqueIncreasingIDs(t *testing.T) {
	p := newPlacer(ModeUniform, 1)
	prev := uint64(0)
	for i := 0; i < 100; i++ {
		id := p.Place().ID
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestPlace_DeterministicForSeed(t *testing.T) {
	a := newPlacer(ModeUniform, 99).Place()
	b := newPlacer(ModeUniform, 99).Place()
	assert.Equal(t, a, b)
}

func TestRod_Endpoints(t *testing.T) {
	rod := Rod{Position: geom.Vec3{X: 1}, Orientation: geom.Identity, Length: 2}
	a, b := rod.Endpoints()
	assert.Equal(t, geom.Vec3{X: 1, Y: -1}, a)
	assert.Equal(t, geom.Vec3{X: 1, Y: 1}, b)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("legacy")
	require.NoError(t, err)
	assert.Equal(t, ModeLegacy, m)
	assert.Equal(t, "legacy", m.String())

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeUniform, m)

	_, err = ParseMode("fibonacci")
	assert.Error(t, err)
}
