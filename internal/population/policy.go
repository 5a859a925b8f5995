package population

import (
	"fmt"
	"strings"

	"github.com/san-kum/rodsphere/internal/signal"
)

// Policy couples (or not) the growth direction to the cursor sweep direction.
type Policy int

const (
	// PolicyCoupled shrinks exactly while the sample is reversed. With
	// direction alternation off, the population only grows.
	PolicyCoupled Policy = iota
	// PolicyDecoupled shrinks on odd cycles regardless of how the cursor sweeps.
	PolicyDecoupled
)

func (p Policy) String() string {
	if p == PolicyDecoupled {
		return "decoupled"
	}
	return "coupled"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "coupled":
		return PolicyCoupled, nil
	case "decoupled":
		return PolicyDecoupled, nil
	}
	return PolicyCoupled, fmt.Errorf("population: unknown policy %q", s)
}

// Shrinking reports whether a tick at this sample removes rather than adds.
func (p Policy) Shrinking(s signal.Sample) bool {
	if p == PolicyDecoupled {
		return s.Cycle%2 != 0
	}
	return s.Reverse
}
