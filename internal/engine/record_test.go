package engine_test

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rodsphere/internal/engine"
)

var _ = Describe("Record", func() {
	type outcome struct {
		res *engine.Result
		err error
	}

	It("traces the timer chain until the duration ends", func() {
		fc := clockwork.NewFakeClockAt(engine.Epoch)
		eng, err := engine.New(seeded(7), engine.WithClock(fc))
		Expect(err).NotTo(HaveOccurred())

		out := make(chan outcome, 1)
		go func() {
			res, err := eng.Record(context.Background(), 3*time.Second, 0)
			out <- outcome{res, err}
		}()

		// The end timer plus the pending tick timer.
		fc.BlockUntil(2)
		fc.Advance(time.Second)
		fc.BlockUntil(2)
		fc.Advance(time.Second)
		fc.BlockUntil(2)
		fc.Advance(time.Second)

		var o outcome
		Eventually(out).Should(Receive(&o))
		Expect(o.err).NotTo(HaveOccurred())

		res := o.res
		Expect(res.Duration).To(Equal(3 * time.Second))
		Expect(len(res.Ticks)).To(BeNumerically(">=", 3))
		Expect(res.Ticks[0].At).To(BeZero())
		Expect(res.Ticks[0].Action).To(Equal("add"))
		Expect(res.Ticks[1].At).To(Equal(time.Second))
		Expect(res.FinalPopulation()).To(Equal(len(res.Ticks)))
		Expect(res.Metrics).To(HaveKeyWithValue("final_population", float64(len(res.Ticks))))
		Expect(res.Frames).To(BeEmpty())
	})

	It("returns the context error when cancelled", func() {
		fc := clockwork.NewFakeClockAt(engine.Epoch)
		eng, err := engine.New(seeded(7), engine.WithClock(fc))
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		out := make(chan outcome, 1)
		go func() {
			res, err := eng.Record(ctx, time.Minute, 0)
			out <- outcome{res, err}
		}()
		fc.BlockUntil(2)
		cancel()

		var o outcome
		Eventually(out).Should(Receive(&o))
		Expect(o.err).To(MatchError(context.Canceled))
		Expect(o.res).To(BeNil())
	})
})
