package population_test

import (
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/population"
	"github.com/san-kum/rodsphere/internal/signal"
)

var classicDelay = population.DelayCurve{Min: 40 * time.Millisecond, Max: time.Second, Sharpness: 10}

func newScheduler(policy population.Policy) *population.Scheduler {
	rng := rand.New(rand.NewSource(1))
	p := placer.New(placer.DefaultConfig(), rng)
	return population.NewScheduler(population.NewCollection(), p, rng, classicDelay, policy)
}

var _ = Describe("Scheduler", func() {
	var (
		sched   *population.Scheduler
		growing = signal.Sample{Phase: 0.25, Intensity: 0.3}
		reverse = signal.Sample{Phase: 0.25, Intensity: 0.3, Reverse: true, Cycle: 1}
	)

	BeforeEach(func() {
		sched = newScheduler(population.PolicyCoupled)
	})

	Context("while growing", func() {
		It("adds exactly one rod per tick", func() {
			for i := 1; i <= 25; i++ {
				d := sched.Tick(growing)
				Expect(d.Action).To(Equal(population.ActionAdd))
				Expect(d.Size).To(Equal(i))
				Expect(sched.Collection().Len()).To(Equal(i))
				Expect(d.Index).To(Equal(i - 1))
			}
		})

		It("gives each added rod a fresh identity", func() {
			seen := map[uint64]bool{}
			for i := 0; i < 50; i++ {
				id := sched.Tick(growing).Rod.ID
				Expect(seen).NotTo(HaveKey(id))
				seen[id] = true
			}
		})
	})

	Context("while shrinking", func() {
		It("removes exactly one rod per tick", func() {
			for i := 0; i < 10; i++ {
				sched.Tick(growing)
			}
			for i := 9; i >= 0; i-- {
				before := sched.Collection().Snapshot()
				d := sched.Tick(reverse)
				Expect(d.Action).To(Equal(population.ActionRemove))
				Expect(d.Size).To(Equal(i))
				Expect(before[d.Index]).To(Equal(d.Rod))
				Expect(sched.Collection().Snapshot()).NotTo(ContainElement(d.Rod))
			}
		})

		It("is a no-op on an empty collection", func() {
			for i := 0; i < 3; i++ {
				d := sched.Tick(reverse)
				Expect(d.Action).To(Equal(population.ActionNone))
				Expect(d.Size).To(BeZero())
				Expect(d.Index).To(Equal(-1))
			}
		})

		It("removes uniformly over current members", func() {
			counts := make([]int, 4)
			rng := rand.New(rand.NewSource(3))
			for trial := 0; trial < 8000; trial++ {
				p := placer.New(placer.DefaultConfig(), rng)
				s := population.NewScheduler(nil, p, rng, classicDelay, population.PolicyCoupled)
				for i := 0; i < 4; i++ {
					s.Tick(growing)
				}
				counts[s.Tick(reverse).Index]++
			}
			for _, c := range counts {
				Expect(c).To(BeNumerically("~", 2000, 200))
			}
		})
	})

	Describe("delay", func() {
		It("collapses to the minimum at the peak and relaxes to the maximum in troughs", func() {
			Expect(sched.Tick(signal.Sample{Intensity: 1}).Delay).To(Equal(40 * time.Millisecond))
			Expect(sched.Tick(signal.Sample{Intensity: 0}).Delay).To(Equal(time.Second))
		})

		It("shortens as intensity rises", func() {
			prev := time.Duration(1 << 62)
			for i := 0; i <= 10; i++ {
				d := classicDelay.Delay(float64(i) / 10)
				Expect(d).To(BeNumerically("<=", prev))
				prev = d
			}
		})

		It("clamps drifting intensity", func() {
			Expect(classicDelay.Delay(1 + 1e-12)).To(Equal(40 * time.Millisecond))
			Expect(classicDelay.Delay(-1e-12)).To(Equal(time.Second))
		})
	})

	Describe("policies", func() {
		It("couples shrinking to the reverse flag", func() {
			Expect(population.PolicyCoupled.Shrinking(signal.Sample{Cycle: 1})).To(BeFalse())
			Expect(population.PolicyCoupled.Shrinking(signal.Sample{Cycle: 1, Reverse: true})).To(BeTrue())
		})

		It("decouples shrinking onto odd cycles", func() {
			Expect(population.PolicyDecoupled.Shrinking(signal.Sample{Cycle: 1})).To(BeTrue())
			Expect(population.PolicyDecoupled.Shrinking(signal.Sample{Cycle: 2, Reverse: true})).To(BeFalse())
		})
	})

	Describe("observers", func() {
		It("sees every decision in order", func() {
			var got []population.Action
			sched.AddObserver(population.ObserverFunc(func(d population.Decision) {
				got = append(got, d.Action)
			}))
			sched.Tick(growing)
			sched.Tick(reverse)
			sched.Tick(reverse)
			sched.Hold(growing)
			Expect(got).To(Equal([]population.Action{
				population.ActionAdd, population.ActionRemove, population.ActionNone, population.ActionHold,
			}))
		})
	})

	It("holds without touching the collection", func() {
		sched.Tick(growing)
		d := sched.Hold(signal.Sample{Intensity: 1})
		Expect(d.Action).To(Equal(population.ActionHold))
		Expect(d.Size).To(Equal(1))
		Expect(d.Delay).To(Equal(time.Second))
	})
})

var _ = Describe("End-to-end delay on the classic curve", func() {
	It("ticks fastest at the peak and slowest at the ends", func() {
		sig, err := signal.New(signal.NewPeakedSine(20), 60*time.Second, true)
		Expect(err).NotTo(HaveOccurred())

		Expect(classicDelay.Delay(sig.At(30 * time.Second).Intensity)).To(Equal(40 * time.Millisecond))
		Expect(classicDelay.Delay(sig.At(0).Intensity)).To(Equal(time.Second))
		Expect(classicDelay.Delay(sig.At(60 * time.Second).Intensity)).To(Equal(time.Second))
	})
})
