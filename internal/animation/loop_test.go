package animation

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type tick struct {
	delta, total float64
}

// leakyScheduler keeps callbacks around after Cancel so tests can fire a
// request the loop believes it withdrew.
type leakyScheduler struct {
	fns []func(time.Time)
}

func (s *leakyScheduler) RequestFrame(fn func(time.Time)) Cancel {
	s.fns = append(s.fns, fn)
	return func() {}
}

var _ = Describe("Loop", func() {
	var (
		q     *FrameQueue
		ticks []tick
		cont  bool
		base  time.Time
		opts  Options
	)

	record := func(delta, total float64) bool {
		ticks = append(ticks, tick{delta, total})
		return cont
	}

	at := func(ms int) time.Time {
		return base.Add(time.Duration(ms) * time.Millisecond)
	}

	BeforeEach(func() {
		q = NewFrameQueue()
		ticks = nil
		cont = true
		base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		opts = DefaultOptions()
	})

	Describe("a new loop", func() {
		It("starts paused at zero", func() {
			l := New(record, q, opts)
			Expect(l.SimTime()).To(BeZero())
			Expect(l.Running()).To(BeFalse())
			Expect(l.Speed()).To(Equal(1.0))
			Expect(q.Pending()).To(BeFalse())
		})

		It("fills in defaults for zero options", func() {
			l := New(record, q, Options{})
			Expect(l.Speed()).To(Equal(DefaultSpeed))
			Expect(l.opts.MaxDelta).To(Equal(DefaultMaxDelta))
			Expect(l.opts.PublishInterval).To(Equal(DefaultPublishInterval))
		})
	})

	Describe("Play", func() {
		It("uses the first frame as a baseline only", func() {
			l := New(record, q, opts)
			l.Play()
			Expect(q.Pending()).To(BeTrue())

			q.Fire(at(0))
			Expect(ticks).To(BeEmpty())
			Expect(l.SimTime()).To(BeZero())

			q.Fire(at(16))
			Expect(ticks).To(HaveLen(1))
			Expect(ticks[0].delta).To(BeNumerically("~", 0.016, 1e-12))
			Expect(l.SimTime()).To(BeNumerically("~", 0.016, 1e-12))
		})

		It("clamps long frames to the maximum delta", func() {
			l := New(record, q, opts)
			l.Play()
			q.Fire(at(0))
			q.Fire(at(5000))
			Expect(ticks[0].delta).To(BeNumerically("~", 0.05, 1e-12))
		})

		It("treats a backwards timestamp as no time passing", func() {
			l := New(record, q, opts)
			l.Play()
			q.Fire(at(100))
			q.Fire(at(50))
			Expect(ticks[0].delta).To(BeZero())
		})

		It("scales deltas by speed", func() {
			l := New(record, q, opts)
			l.SetSpeed(2)
			l.Play()
			q.Fire(at(0))
			q.Fire(at(20))
			Expect(ticks[0].delta).To(BeNumerically("~", 0.04, 1e-12))

			l.SetSpeed(0.25)
			q.Fire(at(40))
			Expect(ticks[1].delta).To(BeNumerically("~", 0.005, 1e-12))
		})

		It("re-baselines after a pause", func() {
			l := New(record, q, opts)
			l.Play()
			q.Fire(at(0))
			q.Fire(at(10))
			l.Pause()
			l.Play()
			q.Fire(at(10000))
			Expect(ticks).To(HaveLen(1))
			q.Fire(at(10010))
			Expect(ticks).To(HaveLen(2))
			Expect(ticks[1].delta).To(BeNumerically("~", 0.01, 1e-12))
		})

		It("is a no-op when already running", func() {
			l := New(record, q, opts)
			l.Play()
			q.Fire(at(0))
			l.Play()
			q.Fire(at(10))
			Expect(ticks).To(HaveLen(1))
		})
	})

	Describe("monotonicity", func() {
		It("never decreases time while running", func() {
			l := New(record, q, opts)
			l.Play()
			ms := 0
			for i := 0; i < 200; i++ {
				q.Fire(at(ms))
				ms += 7 + i%23
			}
			prev := -1.0
			for _, tk := range ticks {
				Expect(tk.total).To(BeNumerically(">=", prev))
				Expect(tk.delta).To(BeNumerically(">=", 0))
				prev = tk.total
			}
		})
	})

	Describe("MaxTime", func() {
		BeforeEach(func() {
			opts.MaxTime = 0.1
		})

		It("clamps exactly and ticks once at the boundary", func() {
			l := New(record, q, opts)
			l.Play()
			for ms := 0; q.Pending(); ms += 40 {
				q.Fire(at(ms))
			}
			Expect(l.SimTime()).To(Equal(0.1))
			Expect(l.Running()).To(BeFalse())

			last := ticks[len(ticks)-1]
			Expect(last.total).To(Equal(0.1))
			Expect(last.delta).To(BeNumerically("~", 0.1-0.08, 1e-12))
			for _, tk := range ticks {
				Expect(tk.total).To(BeNumerically("<=", 0.1))
			}
		})

		It("rewinds when played from the end", func() {
			l := New(record, q, opts)
			l.SkipTo(0.1)
			ticks = nil
			l.Play()
			Expect(l.SimTime()).To(BeZero())
			Expect(ticks).To(Equal([]tick{{0, 0}}))
			Expect(l.Running()).To(BeTrue())
		})

		It("pulls the clock back when the bound shrinks", func() {
			l := New(record, q, opts)
			l.SkipTo(0.1)
			l.SetMaxTime(0.05)
			Expect(l.SimTime()).To(Equal(0.05))
		})
	})

	Describe("TickFunc returning false", func() {
		It("auto-pauses", func() {
			l := New(record, q, opts)
			l.Play()
			q.Fire(at(0))
			cont = false
			q.Fire(at(10))
			Expect(l.Running()).To(BeFalse())
			Expect(q.Pending()).To(BeFalse())
			Expect(l.Published().Running).To(BeFalse())
		})
	})

	Describe("Pause", func() {
		It("withdraws the pending frame", func() {
			l := New(record, q, opts)
			l.Play()
			l.Pause()
			Expect(q.Pending()).To(BeFalse())
		})

		It("ignores callbacks that fire after it", func() {
			s := &leakyScheduler{}
			l := New(record, s, opts)
			l.Play()
			s.fns[0](at(0))
			stale := s.fns[1]
			l.Pause()
			stale(at(20))
			Expect(ticks).To(BeEmpty())
			Expect(l.SimTime()).To(BeZero())
		})

		It("ignores callbacks from a previous play", func() {
			s := &leakyScheduler{}
			l := New(record, s, opts)
			l.Play()
			stale := s.fns[0]
			l.Pause()
			l.Play()
			stale(at(0))
			s.fns[len(s.fns)-1](at(0))
			s.fns[len(s.fns)-1](at(10))
			Expect(ticks).To(HaveLen(1))
		})

		It("toggles", func() {
			l := New(record, q, opts)
			l.Toggle()
			Expect(l.Running()).To(BeTrue())
			l.Toggle()
			Expect(l.Running()).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("stops, zeroes and snaps dependents to t=0", func() {
			l := New(record, q, opts)
			l.Play()
			q.Fire(at(0))
			q.Fire(at(30))
			ticks = nil

			l.Reset()
			Expect(l.Running()).To(BeFalse())
			Expect(l.SimTime()).To(BeZero())
			Expect(ticks).To(Equal([]tick{{0, 0}}))
			Expect(q.Pending()).To(BeFalse())
		})
	})

	Describe("SkipTo", func() {
		It("snaps with a zero delta", func() {
			l := New(record, q, opts)
			l.SkipTo(5)
			Expect(ticks).To(Equal([]tick{{0, 5}}))
			Expect(l.SimTime()).To(Equal(5.0))
			Expect(l.Running()).To(BeFalse())
		})

		It("clamps to the valid range", func() {
			opts.MaxTime = 3
			l := New(record, q, opts)
			l.SkipTo(10)
			Expect(l.SimTime()).To(Equal(3.0))
			l.SkipTo(-2)
			Expect(l.SimTime()).To(BeZero())
		})

		It("stops a running loop", func() {
			l := New(record, q, opts)
			l.Play()
			l.SkipTo(1)
			Expect(l.Running()).To(BeFalse())
			Expect(q.Pending()).To(BeFalse())
		})
	})

	Describe("publication", func() {
		It("throttles observers while the live clock stays current", func() {
			l := New(record, q, opts)
			var got []Status
			l.Subscribe(func(s Status) { got = append(got, s) })

			l.Play()
			Expect(got).To(HaveLen(1))

			for ms := 0; ms <= 200; ms += 10 {
				q.Fire(at(ms))
			}
			// play, then frames at 10, 60, 110, 160 ms
			Expect(got).To(HaveLen(5))
			Expect(l.SimTime()).To(BeNumerically("~", 0.2, 1e-9))
			Expect(l.Published().Time).To(BeNumerically("<", l.SimTime()))
		})

		It("always publishes explicit state changes", func() {
			l := New(record, q, opts)
			count := 0
			l.Subscribe(func(Status) { count++ })
			l.Play()
			l.Pause()
			l.SetSpeed(3)
			l.SkipTo(1)
			l.Reset()
			Expect(count).To(Equal(5))
			Expect(l.Published()).To(Equal(Status{Time: 0, Running: false, Speed: 3}))
		})

		It("stops notifying after unsubscribe", func() {
			l := New(record, q, opts)
			count := 0
			unsubscribe := l.Subscribe(func(Status) { count++ })
			l.Play()
			unsubscribe()
			l.Pause()
			Expect(count).To(Equal(1))
		})
	})

	Describe("Drive", func() {
		It("runs a bounded loop to completion", func() {
			opts.MaxTime = 1
			l := New(record, q, opts)
			l.Play()
			frames, err := Drive(context.Background(), q, 60, base)
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(BeNumerically(">", 60))
			Expect(l.SimTime()).To(Equal(1.0))
			Expect(l.Running()).To(BeFalse())
		})

		It("honours cancellation", func() {
			l := New(record, q, opts)
			l.Play()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := Drive(ctx, q, 60, base)
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
