// Package timeline models a motion as a contiguous sequence of
// constant-acceleration phases and evaluates it at any instant.
//
// A Timeline is immutable. Evaluate is a pure function of the timeline and
// the query time, so seeking can call it as often as it likes.
package timeline

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmpty       = errors.New("timeline: no phases")
	ErrStart       = errors.New("timeline: first phase must start at 0")
	ErrNonPositive = errors.New("timeline: phase must end after it starts")
	ErrGap         = errors.New("timeline: phases are not contiguous")
)

// PhaseID names a phase independently of its display label.
type PhaseID string

// Phase is one interval of constant acceleration.
type Phase struct {
	ID           PhaseID
	Label        string
	Start        float64
	End          float64
	Acceleration float64
	Description  string
}

// Duration is End-Start.
func (p Phase) Duration() float64 { return p.End - p.Start }

// Progress is how far t is through the phase, clamped to [0, 1]. A phase
// with no duration counts as complete.
func (p Phase) Progress(t float64) float64 {
	d := p.Duration()
	if d <= 0 {
		return 1
	}
	return math.Min(1, math.Max(0, (t-p.Start)/d))
}

// Timeline is an ordered, gap-free list of phases starting at t=0.
type Timeline struct {
	phases []Phase
}

// New validates phases and wraps them in a Timeline.
func New(phases ...Phase) (Timeline, error) {
	if len(phases) == 0 {
		return Timeline{}, ErrEmpty
	}
	if phases[0].Start != 0 {
		return Timeline{}, fmt.Errorf("%w: got %g", ErrStart, phases[0].Start)
	}
	for i, p := range phases {
		if !(p.End > p.Start) {
			return Timeline{}, fmt.Errorf("%w: phase %d (%s) [%g, %g]", ErrNonPositive, i, p.ID, p.Start, p.End)
		}
		if i > 0 && phases[i-1].End != p.Start {
			return Timeline{}, fmt.Errorf("%w: phase %d ends at %g, phase %d starts at %g", ErrGap, i-1, phases[i-1].End, i, p.Start)
		}
	}
	owned := make([]Phase, len(phases))
	copy(owned, phases)
	return Timeline{phases: owned}, nil
}

// Phases returns a copy of the phases.
func (tl Timeline) Phases() []Phase {
	out := make([]Phase, len(tl.phases))
	copy(out, tl.phases)
	return out
}

// Len is the number of phases.
func (tl Timeline) Len() int { return len(tl.phases) }

// Duration is the end time of the last phase.
func (tl Timeline) Duration() float64 {
	if len(tl.phases) == 0 {
		return 0
	}
	return tl.phases[len(tl.phases)-1].End
}

// Kinematics is a timeline evaluated at one instant.
type Kinematics struct {
	Time         float64
	Position     float64
	Velocity     float64
	Acceleration float64
	Phase        Phase
	PhaseIndex   int
	Progress     float64
}

// Evaluate integrates the timeline from rest at the origin up to t. Times
// before zero read as t=0 and times past the end read as the final instant;
// nothing is extrapolated.
func (tl Timeline) Evaluate(t float64) Kinematics {
	if len(tl.phases) == 0 {
		return Kinematics{}
	}

	end := tl.Duration()
	switch {
	case math.IsNaN(t) || t < 0:
		t = 0
	case t > end:
		t = end
	}

	pos, vel := 0.0, 0.0
	current := 0
	// phases are half-open, so a shared boundary belongs to the later phase
	for i, p := range tl.phases {
		if p.Start > t {
			break
		}
		current = i
		dt := math.Min(t, p.End) - p.Start
		if dt <= 0 {
			continue
		}
		pos += vel*dt + 0.5*p.Acceleration*dt*dt
		vel += p.Acceleration * dt
	}

	phase := tl.phases[current]
	return Kinematics{
		Time:         t,
		Position:     pos,
		Velocity:     vel,
		Acceleration: phase.Acceleration,
		Phase:        phase,
		PhaseIndex:   current,
		Progress:     phase.Progress(t),
	}
}

// PhaseAt returns the index of the phase containing t, with the same
// clamping as Evaluate.
func (tl Timeline) PhaseAt(t float64) int {
	return tl.Evaluate(t).PhaseIndex
}
