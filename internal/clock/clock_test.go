package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func TestClock_ElapsedFollowsSource(t *testing.T) {
	fc := clockwork.NewFakeClockAt(epoch)
	c := New(fc)

	assert.Equal(t, epoch, c.Start())
	assert.Equal(t, time.Duration(0), c.Elapsed())

	fc.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, c.Elapsed())
	assert.Equal(t, epoch.Add(1500*time.Millisecond), c.Now())
}

func TestClock_DeltaSinceLastCall(t *testing.T) {
	fc := clockwork.NewFakeClockAt(epoch)
	c := New(fc)

	fc.Advance(16 * time.Millisecond)
	assert.Equal(t, 16*time.Millisecond, c.Delta())
	assert.Equal(t, time.Duration(0), c.Delta())

	fc.Advance(40 * time.Millisecond)
	assert.Equal(t, 40*time.Millisecond, c.Delta())
}

func TestClock_NonMonotonicSourceClamps(t *testing.T) {
	fc := clockwork.NewFakeClockAt(epoch)
	c := New(fc)

	fc.Advance(time.Second)
	c.Delta()

	// Move the source backwards behind the start instant.
	fc.Advance(-3 * time.Second)

	assert.Equal(t, time.Duration(0), c.Delta())
	assert.Equal(t, time.Duration(0), c.Elapsed())
	assert.Equal(t, epoch, c.Now())
}

func TestClock_PauseExcludesWallTime(t *testing.T) {
	fc := clockwork.NewFakeClockAt(epoch)
	c := New(fc)

	fc.Advance(2 * time.Second)
	c.Pause()
	assert.True(t, c.Paused())

	fc.Advance(10 * time.Second)
	assert.Equal(t, 2*time.Second, c.Elapsed())
	assert.Equal(t, 10*time.Second, c.PausedTotal())

	c.Resume()
	assert.False(t, c.Paused())
	fc.Advance(time.Second)
	assert.Equal(t, 3*time.Second, c.Elapsed())
	assert.Equal(t, 10*time.Second, c.PausedTotal())
}

func TestClock_DeltaZeroWhilePaused(t *testing.T) {
	fc := clockwork.NewFakeClockAt(epoch)
	c := New(fc)

	c.Pause()
	fc.Advance(time.Second)
	assert.Equal(t, time.Duration(0), c.Delta())

	c.Resume()
	fc.Advance(20 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, c.Delta())
}

func TestClock_PauseResumeIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClockAt(epoch)
	c := New(fc)

	c.Resume()
	c.Pause()
	fc.Advance(time.Second)
	c.Pause()
	fc.Advance(time.Second)
	c.Resume()
	c.Resume()

	assert.Equal(t, 2*time.Second, c.PausedTotal())
	assert.Equal(t, time.Duration(0), c.Elapsed())
}

func TestNew_NilSourceUsesRealClock(t *testing.T) {
	before := time.Now()
	c := New(nil)
	after := time.Now()

	assert.False(t, c.Start().Before(before))
	assert.False(t, c.Start().After(after))
}
