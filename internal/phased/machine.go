// Package phased runs a finite-state machine whose phases each integrate
// their own data and end on a timed event or a guard.
//
// A machine is pure data: phase integrators, an exit-event clock per phase
// and a transition table. [Machine.Step] is a pure function of the state and
// the step, so a scene can snap to any time by stepping its initial state
// once instead of replaying frames.
//
// Data should be a value type. Integrators and transitions receive a copy
// and return the new value; they must not retain or share pointers.
package phased

import "math"

// maxEvents bounds the phase exits handled inside one Step.
const maxEvents = 1024

// Integrator advances phase data by dt seconds.
type Integrator[D any] func(d D, dt float64) D

// Remaining returns the time until the phase's exit event, given the time
// already spent in it. +Inf means the phase only ends through a guard.
type Remaining[D any] func(d D, elapsed float64) float64

// Guard decides whether a transition applies.
type Guard[D any] func(d D, elapsed float64) bool

// Transition moves the machine to another phase. Enter, if set, rewrites
// the data on the way in.
type Transition[P comparable, D any] struct {
	To    P
	When  Guard[D]
	Enter func(d D) D
}

// Phase describes how one phase evolves.
type Phase[D any] struct {
	Integrate Integrator[D]
	Remaining Remaining[D]
}

// State is the mutable part of a phased simulation.
type State[P comparable, D any] struct {
	Phase   P
	Data    D
	Elapsed float64
	Time    float64
}

// Machine is a transition table plus per-phase integrators.
type Machine[P comparable, D any] struct {
	phases  map[P]Phase[D]
	onExit  map[P][]Transition[P, D]
	watches map[P][]Transition[P, D]
}

// New returns an empty machine.
func New[P comparable, D any]() *Machine[P, D] {
	return &Machine[P, D]{
		phases:  make(map[P]Phase[D]),
		onExit:  make(map[P][]Transition[P, D]),
		watches: make(map[P][]Transition[P, D]),
	}
}

// Phase registers how phase p evolves.
func (m *Machine[P, D]) Phase(p P, ph Phase[D]) *Machine[P, D] {
	m.phases[p] = ph
	return m
}

// OnExit adds transitions taken when p's exit event fires. They are tried
// in order; a nil When always matches.
func (m *Machine[P, D]) OnExit(p P, ts ...Transition[P, D]) *Machine[P, D] {
	m.onExit[p] = append(m.onExit[p], ts...)
	return m
}

// Watch adds guarded transitions checked after every step spent in p.
func (m *Machine[P, D]) Watch(p P, ts ...Transition[P, D]) *Machine[P, D] {
	m.watches[p] = append(m.watches[p], ts...)
	return m
}

// Start builds the initial state.
func Start[P comparable, D any](p P, d D) State[P, D] {
	return State[P, D]{Phase: p, Data: d}
}

// Step advances s by dt. When a phase's exit event falls inside the step,
// the step is split at the event so no phase overshoots its boundary.
func (m *Machine[P, D]) Step(s State[P, D], dt float64) State[P, D] {
	if !(dt > 0) {
		return s
	}

	for events := 0; dt > 0; events++ {
		ph := m.phases[s.Phase]
		rem := math.Inf(1)
		if ph.Remaining != nil && events < maxEvents {
			rem = math.Max(0, ph.Remaining(s.Data, s.Elapsed))
		}

		if rem > dt {
			s = m.integrate(s, ph, dt)
			s, _ = m.apply(s, m.watches[s.Phase])
			return s
		}

		s = m.integrate(s, ph, rem)
		dt -= rem

		next, moved := m.apply(s, m.onExit[s.Phase])
		if !moved {
			// an exit nobody handles: stay put for the rest of the step
			s = m.integrate(next, ph, dt)
			s, _ = m.apply(s, m.watches[s.Phase])
			return s
		}
		s = next
	}

	s, _ = m.apply(s, m.watches[s.Phase])
	return s
}

func (m *Machine[P, D]) integrate(s State[P, D], ph Phase[D], dt float64) State[P, D] {
	if dt <= 0 {
		return s
	}
	if ph.Integrate != nil {
		s.Data = ph.Integrate(s.Data, dt)
	}
	s.Elapsed += dt
	s.Time += dt
	return s
}

func (m *Machine[P, D]) apply(s State[P, D], ts []Transition[P, D]) (State[P, D], bool) {
	for _, tr := range ts {
		if tr.When != nil && !tr.When(s.Data, s.Elapsed) {
			continue
		}
		if tr.Enter != nil {
			s.Data = tr.Enter(s.Data)
		}
		s.Phase = tr.To
		s.Elapsed = 0
		return s, true
	}
	return s, false
}

// Run steps s to absolute time t. Times at or before s.Time return s.
func (m *Machine[P, D]) Run(s State[P, D], t float64) State[P, D] {
	return m.Step(s, t-s.Time)
}
