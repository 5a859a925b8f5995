package population

import "github.com/san-kum/rodsphere/internal/placer"

// Collection is the ordered set of live rods. Removal is an atomic delete;
// order carries no meaning beyond uniform index-based sampling.
type Collection struct {
	rods []placer.Rod
}

func NewCollection() *Collection {
	return &Collection{rods: make([]placer.Rod, 0, 256)}
}

func (c *Collection) Len() int { return len(c.rods) }

func (c *Collection) Add(r placer.Rod) { c.rods = append(c.rods, r) }

// At returns the rod at index i.
func (c *Collection) At(i int) placer.Rod { return c.rods[i] }

// RemoveAt deletes the rod at index i, keeping the rest in order.
func (c *Collection) RemoveAt(i int) (placer.Rod, bool) {
	if i < 0 || i >= len(c.rods) {
		return placer.Rod{}, false
	}
	r := c.rods[i]
	copy(c.rods[i:], c.rods[i+1:])
	c.rods[len(c.rods)-1] = placer.Rod{}
	c.rods = c.rods[:len(c.rods)-1]
	return r, true
}

// Snapshot returns a copy safe to hand to render backends.
func (c *Collection) Snapshot() []placer.Rod {
	out := make([]placer.Rod, len(c.rods))
	copy(out, c.rods)
	return out
}

func (c *Collection) Clear() {
	clear(c.rods)
	c.rods = c.rods[:0]
}
