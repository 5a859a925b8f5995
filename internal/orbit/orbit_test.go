package orbit

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAngularVelocity_ScalesWithIntensity(t *testing.T) {
	c := New(DefaultConfig())
	assert.InDelta(t, 0.25, c.AngularVelocity(0), 1e-12)
	assert.InDelta(t, 1.0, c.AngularVelocity(1), 1e-12)
	assert.InDelta(t, 1.0, c.AngularVelocity(1.5), 1e-12, "intensity clamps")
}

func TestAdvance_IntegratesDelta(t *testing.T) {
	c := New(DefaultConfig())
	step := time.Second / 60
	for i := 0; i < 60; i++ {
		c.Advance(step, 0)
	}
	// step truncates to whole nanoseconds.
	want := 0.25 * (60 * step).Seconds()
	assert.InDelta(t, want, c.Angle(), 1e-12)
	assert.InDelta(t, 0.25, c.Angle(), 1e-7)

	c.Advance(2*time.Second, 1)
	assert.InDelta(t, want+2, c.Angle(), 1e-12)
}

func TestAdvance_NoJumpWhenSpeedChanges(t *testing.T) {
	c := New(DefaultConfig())
	c.Advance(time.Second, 0)
	before := c.Angle()
	// Sudden peak intensity only changes the rate from here on.
	c.Advance(time.Millisecond, 1)
	assert.InDelta(t, before+0.001, c.Angle(), 1e-12)
}

func TestAdvance_IgnoresNegativeDelta(t *testing.T) {
	c := New(DefaultConfig())
	c.Advance(-time.Second, 1)
	assert.Equal(t, 0.0, c.Angle())
}

func TestPose_CirclesOrigin(t *testing.T) {
	c := New(DefaultConfig())
	p := c.Pose()
	assert.InDelta(t, 0, p.Position.X, 1e-12)
	assert.InDelta(t, 5, p.Position.Z, 1e-12)

	c.SetAngle(math.Pi / 2)
	p = c.Pose()
	assert.InDelta(t, 5, p.Position.X, 1e-12)
	assert.InDelta(t, 0, p.Position.Y, 1e-12)
	assert.InDelta(t, 0, p.Position.Z, 1e-12)
	assert.InDelta(t, 5, p.Position.Sub(p.Target).Length(), 1e-12)
}
