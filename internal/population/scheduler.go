package population

import (
	"math/rand"
	"time"

	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/signal"
)

type Action int

const (
	ActionNone Action = iota
	ActionAdd
	ActionRemove
	ActionHold
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionHold:
		return "hold"
	default:
		return "none"
	}
}

// Decision records one tick: what happened, to which rod, and when the next
// tick is due.
type Decision struct {
	Action Action
	Rod    placer.Rod
	Index  int
	Size   int
	Delay  time.Duration
	Sample signal.Sample
}

// Observer is notified synchronously after each decision.
type Observer interface {
	OnDecision(d Decision)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Decision)

func (f ObserverFunc) OnDecision(d Decision) { f(d) }

type Scheduler struct {
	coll      *Collection
	placer    *placer.Placer
	rng       *rand.Rand
	delay     DelayCurve
	policy    Policy
	observers []Observer
}

func NewScheduler(coll *Collection, p *placer.Placer, rng *rand.Rand, delay DelayCurve, policy Policy) *Scheduler {
	if coll == nil {
		coll = NewCollection()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Scheduler{coll: coll, placer: p, rng: rng, delay: delay, policy: policy}
}

func (s *Scheduler) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Scheduler) Collection() *Collection { return s.coll }
func (s *Scheduler) DelayCurve() DelayCurve  { return s.delay }
func (s *Scheduler) Policy() Policy          { return s.policy }

// Tick performs one add or remove decision for the given sample and returns
// it with the delay until the next tick. It never fails.
func (s *Scheduler) Tick(sample signal.Sample) Decision {
	d := Decision{
		Action: ActionNone,
		Index:  -1,
		Delay:  s.delay.Delay(sample.Intensity),
		Sample: sample,
	}

	if s.policy.Shrinking(sample) {
		if n := s.coll.Len(); n > 0 {
			idx := s.rng.Intn(n)
			rod, _ := s.coll.RemoveAt(idx)
			d.Action, d.Rod, d.Index = ActionRemove, rod, idx
		}
	} else {
		rod := s.placer.Place()
		s.coll.Add(rod)
		d.Action, d.Rod, d.Index = ActionAdd, rod, s.coll.Len()-1
	}

	d.Size = s.coll.Len()
	s.notify(d)
	return d
}

// Hold records a tick that deliberately changes nothing, used while paused.
func (s *Scheduler) Hold(sample signal.Sample) Decision {
	d := Decision{
		Action: ActionHold,
		Index:  -1,
		Size:   s.coll.Len(),
		Delay:  s.delay.Max,
		Sample: sample,
	}
	s.notify(d)
	return d
}

func (s *Scheduler) notify(d Decision) {
	for _, o := range s.observers {
		o.OnDecision(d)
	}
}
