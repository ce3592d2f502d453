package animation

import "time"

// Cancel withdraws a pending frame request.
type Cancel func()

// Scheduler delivers host frame signals. RequestFrame asks for exactly one
// future callback; the returned Cancel must stop it from firing.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) Cancel
}

// FrameQueue is a single-slot scheduler fired explicitly by the host.
type FrameQueue struct {
	pending func(time.Time)
	seq     uint64
}

// NewFrameQueue returns an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// RequestFrame replaces any pending request with fn.
func (q *FrameQueue) RequestFrame(fn func(now time.Time)) Cancel {
	q.seq++
	seq := q.seq
	q.pending = fn
	return func() {
		if q.seq == seq {
			q.pending = nil
		}
	}
}

// Pending reports whether a frame has been requested.
func (q *FrameQueue) Pending() bool { return q.pending != nil }

// Fire delivers one frame at now. It reports false when nothing was waiting.
func (q *FrameQueue) Fire(now time.Time) bool {
	fn := q.pending
	if fn == nil {
		return false
	}
	q.pending = nil
	fn(now)
	return true
}
