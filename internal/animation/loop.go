package animation

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// Defaults applied by [New] to zero-valued options.
const (
	DefaultMaxDelta        = 50 * time.Millisecond
	DefaultPublishInterval = 50 * time.Millisecond
	DefaultSpeed           = 1.0
)

// TickFunc advances dependent state. delta is the scaled simulation step in
// seconds and total the new simulation time. A zero delta means "snap to
// total" and is used by Reset and SkipTo, so implementations must be
// idempotent for it. Returning false pauses the loop.
type TickFunc func(delta, total float64) bool

// Options configures a Loop.
type Options struct {
	// MaxTime bounds the simulation clock; zero means unbounded.
	MaxTime float64
	// MaxDelta caps a single frame's wall-clock delta.
	MaxDelta time.Duration
	// PublishInterval throttles observer notification.
	PublishInterval time.Duration
	// Speed is the initial playback multiplier.
	Speed  float64
	Logger *zap.Logger
}

// DefaultOptions returns an unbounded loop at normal speed.
func DefaultOptions() Options {
	return Options{
		MaxDelta:        DefaultMaxDelta,
		PublishInterval: DefaultPublishInterval,
		Speed:           DefaultSpeed,
	}
}

// Status is the published view of the clock.
type Status struct {
	Time    float64
	Running bool
	Speed   float64
}

// Loop is the animation loop engine.
type Loop struct {
	onTick    TickFunc
	scheduler Scheduler
	opts      Options
	log       *zap.Logger

	simTime  float64
	running  bool
	speed    float64
	last     time.Time
	haveLast bool

	cancel Cancel
	gen    uint64

	published   Status
	lastPublish time.Time
	hasPublish  bool
	observers   map[int]func(Status)
	nextID      int
}

// New creates a paused loop at t=0.
func New(onTick TickFunc, scheduler Scheduler, opts Options) *Loop {
	if opts.MaxDelta <= 0 {
		opts.MaxDelta = DefaultMaxDelta
	}
	if opts.PublishInterval <= 0 {
		opts.PublishInterval = DefaultPublishInterval
	}
	if opts.Speed <= 0 {
		opts.Speed = DefaultSpeed
	}
	if opts.MaxTime < 0 {
		opts.MaxTime = 0
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loop{
		onTick:    onTick,
		scheduler: scheduler,
		opts:      opts,
		log:       log,
		speed:     opts.Speed,
		observers: make(map[int]func(Status)),
	}
	l.published = l.status()
	return l
}

// SimTime is the live simulation time.
func (l *Loop) SimTime() float64 { return l.simTime }

// Running reports whether frames are being consumed.
func (l *Loop) Running() bool { return l.running }

// Speed is the current playback multiplier.
func (l *Loop) Speed() float64 { return l.speed }

// MaxTime is the configured bound, or zero.
func (l *Loop) MaxTime() float64 { return l.opts.MaxTime }

// Published is the last status handed to observers. It may trail the live
// clock by up to one publish interval.
func (l *Loop) Published() Status { return l.published }

// Subscribe registers fn for published status updates and returns a
// function that removes it.
func (l *Loop) Subscribe(fn func(Status)) func() {
	id := l.nextID
	l.nextID++
	l.observers[id] = fn
	return func() { delete(l.observers, id) }
}

// Play starts consuming frames. Playing from the end of a bounded loop
// rewinds to zero first.
func (l *Loop) Play() {
	if l.running {
		return
	}
	if l.opts.MaxTime > 0 && l.simTime >= l.opts.MaxTime {
		l.simTime = 0
		l.onTick(0, 0)
	}
	l.running = true
	l.haveLast = false
	l.gen++
	l.log.Debug("loop play", zap.Float64("t", l.simTime), zap.Float64("speed", l.speed))
	l.publishNow()
	l.request()
}

// Pause stops consuming frames and cancels the pending request.
func (l *Loop) Pause() {
	if !l.running {
		return
	}
	l.stop()
	l.log.Debug("loop pause", zap.Float64("t", l.simTime))
	l.publishNow()
}

// Toggle flips between Play and Pause.
func (l *Loop) Toggle() {
	if l.running {
		l.Pause()
		return
	}
	l.Play()
}

// Reset stops the loop, rewinds to zero and snaps dependent state to t=0.
func (l *Loop) Reset() {
	l.stop()
	l.simTime = 0
	l.onTick(0, 0)
	l.publishNow()
}

// SkipTo stops the loop and snaps to t, clamped to [0, MaxTime].
func (l *Loop) SkipTo(t float64) {
	l.stop()
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	if l.opts.MaxTime > 0 && t > l.opts.MaxTime {
		t = l.opts.MaxTime
	}
	l.simTime = t
	l.onTick(0, t)
	l.publishNow()
}

// SetSpeed changes the playback multiplier. s must be positive; this is a
// caller precondition and is not checked.
func (l *Loop) SetSpeed(s float64) {
	l.speed = s
	l.publishNow()
}

// SetMaxTime changes the bound. A clock already past the new bound is
// pulled back to it.
func (l *Loop) SetMaxTime(maxTime float64) {
	if maxTime < 0 {
		maxTime = 0
	}
	l.opts.MaxTime = maxTime
	if maxTime > 0 && l.simTime > maxTime {
		l.SkipTo(maxTime)
	}
}

func (l *Loop) stop() {
	l.running = false
	l.haveLast = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loop) request() {
	if !l.running || l.scheduler == nil {
		return
	}
	gen := l.gen
	l.cancel = l.scheduler.RequestFrame(func(now time.Time) {
		l.frame(gen, now)
	})
}

func (l *Loop) frame(gen uint64, now time.Time) {
	// a callback that outlived Pause must not advance time
	if !l.running || gen != l.gen {
		return
	}
	l.cancel = nil

	if !l.haveLast {
		l.last = now
		l.haveLast = true
		l.request()
		return
	}

	raw := now.Sub(l.last)
	l.last = now
	if raw < 0 {
		raw = 0
	}
	if raw > l.opts.MaxDelta {
		raw = l.opts.MaxDelta
	}

	prev := l.simTime
	next := prev + raw.Seconds()*l.speed

	if l.opts.MaxTime > 0 && next >= l.opts.MaxTime {
		l.simTime = l.opts.MaxTime
		l.onTick(l.simTime-prev, l.simTime)
		l.stop()
		l.log.Debug("loop reached max time", zap.Float64("t", l.simTime))
		l.publishNow()
		return
	}

	l.simTime = next
	if !l.onTick(next-prev, next) {
		l.stop()
		l.log.Debug("loop stopped by tick", zap.Float64("t", l.simTime))
		l.publishNow()
		return
	}

	l.publishThrottled(now)
	l.request()
}

func (l *Loop) status() Status {
	return Status{Time: l.simTime, Running: l.running, Speed: l.speed}
}

func (l *Loop) publishThrottled(now time.Time) {
	if l.hasPublish && now.Sub(l.lastPublish) < l.opts.PublishInterval {
		return
	}
	l.lastPublish = now
	l.hasPublish = true
	l.publishNow()
}

func (l *Loop) publishNow() {
	l.published = l.status()
	for _, fn := range l.observers {
		fn(l.published)
	}
}
