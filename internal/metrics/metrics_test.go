package metrics

import (
	"testing"
	"time"

	"github.com/san-kum/rodsphere/internal/population"
	"github.com/stretchr/testify/assert"
)

func feed(ms []Metric, ds ...population.Decision) {
	for _, d := range ds {
		for _, m := range ms {
			m.OnDecision(d)
		}
	}
}

func TestStandardMetrics(t *testing.T) {
	ms := Standard()
	feed(ms,
		population.Decision{Action: population.ActionAdd, Size: 1, Delay: 1000 * time.Millisecond},
		population.Decision{Action: population.ActionAdd, Size: 2, Delay: 500 * time.Millisecond},
		population.Decision{Action: population.ActionHold, Size: 2, Delay: time.Second},
		population.Decision{Action: population.ActionRemove, Size: 1, Delay: 40 * time.Millisecond},
		population.Decision{Action: population.ActionNone, Size: 0, Delay: 60 * time.Millisecond},
	)

	got := Snapshot(ms)
	assert.Equal(t, 5.0, got["ticks"])
	assert.Equal(t, 2.0, got["adds"])
	assert.Equal(t, 1.0, got["removes"])
	assert.Equal(t, 1.0, got["holds"])
	assert.Equal(t, 2.0, got["peak_population"])
	assert.InDelta(t, 400.0, got["mean_delay_ms"], 1e-9)
}

func TestReset(t *testing.T) {
	ms := Standard()
	feed(ms, population.Decision{Action: population.ActionAdd, Size: 3, Delay: time.Second})

	for _, m := range ms {
		m.Reset()
		assert.Zero(t, m.Value(), m.Name())
	}
}

func TestMeanDelay_Empty(t *testing.T) {
	assert.Zero(t, NewMeanDelay().Value())
}
