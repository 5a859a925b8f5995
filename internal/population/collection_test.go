package population

import (
	"testing"

	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/stretchr/testify/assert"
)

func TestCollection_RemoveAtKeepsOrder(t *testing.T) {
	c := NewCollection()
	for i := uint64(1); i <= 4; i++ {
		c.Add(placer.Rod{ID: i})
	}

	r, ok := c.RemoveAt(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), r.ID)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []uint64{1, 3, 4}, ids(c.Snapshot()))

	_, ok = c.RemoveAt(3)
	assert.False(t, ok)
	_, ok = c.RemoveAt(-1)
	assert.False(t, ok)
}

func TestCollection_SnapshotIsCopy(t *testing.T) {
	c := NewCollection()
	c.Add(placer.Rod{ID: 1})
	snap := c.Snapshot()
	snap[0].ID = 99
	assert.Equal(t, uint64(1), c.At(0).ID)
}

func TestCollection_Clear(t *testing.T) {
	c := NewCollection()
	c.Add(placer.Rod{ID: 1})
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("decoupled")
	assert.NoError(t, err)
	assert.Equal(t, PolicyDecoupled, p)
	assert.Equal(t, "decoupled", p.String())

	p, err = ParsePolicy("")
	assert.NoError(t, err)
	assert.Equal(t, PolicyCoupled, p)

	_, err = ParsePolicy("sideways")
	assert.Error(t, err)
}

func ids(rods []placer.Rod) []uint64 {
	out := make([]uint64, len(rods))
	for i, r := range rods {
		out[i] = r.ID
	}
	return out
}
