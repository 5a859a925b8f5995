package engine_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/engine"
)

var _ = Describe("Simulate", func() {
	const twoCycles = 120 * time.Second

	It("requires a virtual engine", func() {
		eng, err := engine.New(seeded(1))
		Expect(err).NotTo(HaveOccurred())
		_, err = eng.Simulate(context.Background(), time.Second, 10)
		Expect(err).To(MatchError(engine.ErrNotVirtual))
	})

	It("stops on a cancelled context", func() {
		eng, err := engine.NewVirtual(seeded(1))
		Expect(err).NotTo(HaveOccurred())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = eng.Simulate(ctx, time.Second, 10)
		Expect(err).To(MatchError(context.Canceled))
	})

	Context("over two coupled cycles", func() {
		var res *engine.Result

		BeforeEach(func() {
			eng, err := engine.NewVirtual(seeded(7))
			Expect(err).NotTo(HaveOccurred())
			res, err = eng.Simulate(context.Background(), twoCycles, 10)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records frames at the requested rate", func() {
			Expect(res.Frames).To(HaveLen(1200))
			for i := 1; i < len(res.Frames); i++ {
				Expect(res.Frames[i].At).To(BeNumerically(">", res.Frames[i-1].At))
			}
		})

		It("orders ticks in time and fires the first at zero", func() {
			Expect(res.Ticks).NotTo(BeEmpty())
			Expect(res.Ticks[0].At).To(BeZero())
			for i := 1; i < len(res.Ticks); i++ {
				prev := res.Ticks[i-1]
				Expect(res.Ticks[i].At).To(Equal(prev.At + prev.Delay))
			}
		})

		It("grows in the forward cycle and shrinks in the reverse cycle", func() {
			peak := 0
			for _, tk := range res.Ticks {
				switch tk.Cycle {
				case 0:
					Expect(tk.Action).To(Equal("add"))
					Expect(tk.Reverse).To(BeFalse())
					peak = tk.Population
				case 1:
					Expect(tk.Action).To(BeElementOf("remove", "none"))
					Expect(tk.Reverse).To(BeTrue())
				}
			}
			Expect(peak).To(BeNumerically(">", 300))
			Expect(res.Metrics["peak_population"]).To(BeNumerically("==", peak))
		})

		It("keeps metrics consistent with the trace", func() {
			Expect(res.Metrics["ticks"]).To(BeNumerically("==", len(res.Ticks)))
			adds, removes := res.Metrics["adds"], res.Metrics["removes"]
			Expect(adds - removes).To(BeNumerically("==", res.FinalPopulation()))
			Expect(res.Metrics["final_population"]).To(BeNumerically("==", len(res.FinalRods)))
			Expect(res.Metrics["mean_delay_ms"]).To(BeNumerically(">=", 40))
			Expect(res.Metrics["mean_delay_ms"]).To(BeNumerically("<=", 1000))
		})
	})

	It("is deterministic for a fixed seed", func() {
		run := func() *engine.Result {
			eng, err := engine.NewVirtual(seeded(123))
			Expect(err).NotTo(HaveOccurred())
			res, err := eng.Simulate(context.Background(), 90*time.Second, 0)
			Expect(err).NotTo(HaveOccurred())
			return res
		}
		a, b := run(), run()
		Expect(a.Ticks).To(Equal(b.Ticks))
		Expect(a.FinalRods).To(Equal(b.FinalRods))
		Expect(a.Angle).To(Equal(b.Angle))
		Expect(a.Frames).To(BeEmpty())
	})

	It("shrinks on odd cycles without reversing when decoupled", func() {
		eng, err := engine.NewVirtual(config.GetPreset("decoupled"))
		Expect(err).NotTo(HaveOccurred())
		res, err := eng.Simulate(context.Background(), twoCycles, 0)
		Expect(err).NotTo(HaveOccurred())

		for _, tk := range res.Ticks {
			Expect(tk.Reverse).To(BeFalse())
			if tk.Cycle == 1 {
				Expect(tk.Action).To(BeElementOf("remove", "none"))
			}
		}
	})
})
