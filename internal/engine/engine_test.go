package engine_test

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/engine"
	"github.com/san-kum/rodsphere/internal/population"
)

func seeded(seed int64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Seed = seed
	return cfg
}

var _ = Describe("Engine", func() {
	It("rejects an invalid configuration", func() {
		cfg := config.DefaultConfig()
		cfg.TotalDurationSeconds = 0
		_, err := engine.New(cfg)
		Expect(err).To(MatchError(config.ErrInvalidConfig))
	})

	It("reports the configured seed", func() {
		eng, err := engine.New(seeded(99))
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.Seed()).To(Equal(int64(99)))
	})

	It("reaches min delay at the peak and max delay at the cycle edges", func() {
		fc := clockwork.NewFakeClockAt(engine.Epoch)
		cfg := seeded(3)
		cfg.TotalDurationSeconds = 60
		cfg.Scheduler.MinDelayMs = 40
		cfg.Scheduler.MaxDelayMs = 1000
		cfg.Scheduler.DelaySharpness = 10
		eng, err := engine.New(cfg, engine.WithClock(fc))
		Expect(err).NotTo(HaveOccurred())

		Expect(eng.Tick().Delay).To(Equal(time.Second))

		fc.Advance(30 * time.Second)
		peak := eng.Tick()
		Expect(peak.Sample.Phase).To(BeNumerically("~", 0.5, 1e-12))
		Expect(peak.Delay).To(Equal(40 * time.Millisecond))

		fc.Advance(30 * time.Second)
		Expect(eng.Tick().Delay).To(Equal(time.Second))
	})

	Describe("Run", func() {
		var (
			fc     clockwork.FakeClock
			eng    *engine.Engine
			ctx    context.Context
			cancel context.CancelFunc
			done   chan error
		)

		BeforeEach(func() {
			var err error
			fc = clockwork.NewFakeClockAt(engine.Epoch)
			eng, err = engine.New(seeded(42), engine.WithClock(fc))
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel = context.WithCancel(context.Background())
			done = make(chan error, 1)
			go func() { done <- eng.Run(ctx) }()
			fc.BlockUntil(1)
		})

		AfterEach(func() {
			cancel()
			Eventually(done).Should(Receive())
		})

		It("fires the first tick immediately", func() {
			Expect(eng.Population()).To(Equal(1))
			last := eng.Last()
			Expect(last.Action).To(Equal(population.ActionAdd))
			Expect(last.Delay).To(Equal(time.Second))
		})

		It("re-arms exactly one timer after each tick", func() {
			for want := 2; want <= 6; want++ {
				fc.Advance(eng.Last().Delay)
				fc.BlockUntil(1)
				Expect(eng.Population()).To(Equal(want))
			}
			Expect(eng.Metrics()["ticks"]).To(BeNumerically("==", 6))
		})

		It("does not tick before the delay elapses", func() {
			fc.Advance(eng.Last().Delay - time.Millisecond)
			Consistently(eng.Population, 50*time.Millisecond).Should(Equal(1))
		})

		It("returns nil after Stop and releases its timer", func() {
			eng.Stop()
			Eventually(done).Should(Receive(BeNil()))
			fc.BlockUntil(0)

			eng.Stop()
			Expect(eng.Run(context.Background())).To(MatchError(engine.ErrStopped))
			done <- nil
		})

		It("returns the context error on cancellation", func() {
			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
			done <- nil
		})

		It("refuses a second concurrent Run", func() {
			Expect(eng.Run(ctx)).To(MatchError(engine.ErrRunning))
		})

		It("holds the population while paused", func() {
			eng.Pause()
			fc.Advance(time.Second)
			fc.BlockUntil(1)

			Expect(eng.Last().Action).To(Equal(population.ActionHold))
			Expect(eng.Population()).To(Equal(1))
			Expect(eng.Frame().Elapsed).To(BeZero())

			eng.Resume()
			fc.Advance(eng.Last().Delay)
			fc.BlockUntil(1)
			Expect(eng.Last().Action).To(Equal(population.ActionAdd))
			Expect(eng.Population()).To(Equal(2))
		})
	})

	Describe("Frame", func() {
		It("advances the orbit by the clock delta", func() {
			fc := clockwork.NewFakeClockAt(engine.Epoch)
			eng, err := engine.New(seeded(1), engine.WithClock(fc))
			Expect(err).NotTo(HaveOccurred())

			fc.Advance(2 * time.Second)
			f := eng.Frame()
			Expect(f.Elapsed).To(Equal(2 * time.Second))
			Expect(f.Angle).To(BeNumerically("~", 0.5, 1e-6))
			Expect(f.Pose.Target.Length()).To(BeZero())
			Expect(f.Pose.Position.Length()).To(BeNumerically("~", 5, 1e-9))

			eng.TogglePause()
			fc.Advance(2 * time.Second)
			Expect(eng.Frame().Angle).To(BeNumerically("~", 0.5, 1e-6))
		})
	})
})
