package scenario

import (
	"math"

	"github.com/san-kum/kinelab/internal/dynamo"
)

// FallPhase is the stage of a dropped body.
type FallPhase int

const (
	Held FallPhase = iota
	Falling
	Impact
	Rest
)

var fallPhaseNames = [...]string{"held", "falling", "impact", "rest"}

func (p FallPhase) String() string {
	if p < 0 || int(p) >= len(fallPhaseNames) {
		return "unknown"
	}
	return fallPhaseNames[p]
}

// Defaults for the drop demo.
const (
	DefaultHoldTime       = 1.0
	DefaultImpactDuration = 0.1
	DefaultRestTime       = 1.5
	MinImpactDuration     = 1e-3
)

// FallParams configures a drop onto a scale.
type FallParams struct {
	Mass           float64
	Gravity        float64
	DropHeight     float64
	ImpactDuration float64
	HoldTime       float64
}

func (p FallParams) normalized() FallParams {
	p.Mass = dynamo.Floor(p.Mass, MinMass)
	p.Gravity = dynamo.Floor(p.Gravity, MinGravity)
	p.DropHeight = math.Max(0, p.DropHeight)
	p.ImpactDuration = dynamo.Floor(p.ImpactDuration, MinImpactDuration)
	p.HoldTime = math.Max(0, p.HoldTime)
	return p
}

// FallTime is sqrt(2h/g).
func (p FallParams) FallTime() float64 {
	p = p.normalized()
	return math.Sqrt(2 * p.DropHeight / p.Gravity)
}

// ImpactSpeed is g·FallTime.
func (p FallParams) ImpactSpeed() float64 {
	p = p.normalized()
	return p.Gravity * p.FallTime()
}

// Duration covers hold, fall, impact and a short rest.
func (p FallParams) Duration() float64 {
	p = p.normalized()
	return p.HoldTime + p.FallTime() + p.ImpactDuration + DefaultRestTime
}

// FallState is the drop evaluated at one instant. Height is above the
// scale, velocity is positive upward, FrameAccel is the body's acceleration.
type FallState struct {
	Phase      FallPhase
	Progress   float64
	Height     float64
	Velocity   float64
	FrameAccel float64
	Weight     ApparentWeight
}

// FreeFallState evaluates the drop at time t. The impact stage decelerates
// uniformly over ImpactDuration; that deceleration only exists to show the
// spike on the scale and is not derived from a restitution model.
func FreeFallState(t float64, p FallParams) FallState {
	p = p.normalized()
	tFall := p.FallTime()
	vImpact := p.Gravity * tFall

	releaseAt := p.HoldTime
	impactAt := releaseAt + tFall
	restAt := impactAt + p.ImpactDuration

	var s FallState
	switch {
	case t < releaseAt:
		s = FallState{Phase: Held, Height: p.DropHeight}
		if releaseAt > 0 {
			s.Progress = math.Max(0, t) / releaseAt
		}
	case t < impactAt:
		tau := t - releaseAt
		s = FallState{
			Phase:      Falling,
			Progress:   tau / tFall,
			Height:     math.Max(0, p.DropHeight-0.5*p.Gravity*tau*tau),
			Velocity:   -p.Gravity * tau,
			FrameAccel: -p.Gravity,
		}
	case t < restAt:
		tau := t - impactAt
		decel := vImpact / p.ImpactDuration
		s = FallState{
			Phase:      Impact,
			Progress:   tau / p.ImpactDuration,
			Velocity:   -vImpact + decel*tau,
			FrameAccel: decel,
		}
	default:
		s = FallState{Phase: Rest, Progress: 1}
	}
	s.Progress = dynamo.Clamp(s.Progress, 0, 1)
	s.Weight = ApparentWeightOf(p.Mass, p.Gravity, s.FrameAccel)
	return s
}
