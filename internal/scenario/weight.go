// Package scenario provides closed-form kinematics for the elevator,
// free-fall and vertical-loop demos, and the apparent-weight reading a scale
// would show in each.
package scenario

import (
	"math"

	"github.com/san-kum/kinelab/internal/dynamo"
)

// MinMass and MinGravity floor slider input that momentarily reaches zero.
const (
	MinMass    = 1e-6
	MinGravity = 1e-6
)

// WeightState buckets a g-force reading.
type WeightState int

const (
	Weightless WeightState = iota
	Lighter
	Normal
	Heavier
	Crushed
)

var weightStateNames = [...]string{"weightless", "lighter", "normal", "heavier", "crushed"}

func (w WeightState) String() string {
	if w < 0 || int(w) >= len(weightStateNames) {
		return "unknown"
	}
	return weightStateNames[w]
}

// Classify maps a g-force onto the five ordered bands.
func Classify(gForce float64) WeightState {
	switch {
	case gForce <= 0.01:
		return Weightless
	case gForce < 0.9:
		return Lighter
	case gForce <= 1.1:
		return Normal
	case gForce <= 3:
		return Heavier
	default:
		return Crushed
	}
}

// ApparentWeight is what a scale under the body would read.
type ApparentWeight struct {
	Real     float64
	Apparent float64
	GForce   float64
	State    WeightState
}

// ApparentWeightOf returns the reading in a frame accelerating at
// frameAccel (positive is up). A frame falling faster than g reads zero:
// the body has left the scale.
func ApparentWeightOf(mass, g, frameAccel float64) ApparentWeight {
	mass = dynamo.Floor(mass, MinMass)
	g = dynamo.Floor(g, MinGravity)
	return reading(mass*g, mass*(g+frameAccel))
}

// OnLoop returns the reading at angle theta on a vertical loop, where theta
// is zero at the bottom and the track pushes toward the centre.
func OnLoop(mass, g, centripetalAccel, theta float64) ApparentWeight {
	mass = dynamo.Floor(mass, MinMass)
	g = dynamo.Floor(g, MinGravity)
	return reading(mass*g, NormalForce(mass, g, centripetalAccel, theta))
}

// NormalForce is the signed track force on the loop; negative means the
// track would have to pull.
func NormalForce(mass, g, centripetalAccel, theta float64) float64 {
	return mass * (centripetalAccel + g*math.Cos(theta))
}

func reading(real, raw float64) ApparentWeight {
	apparent := math.Max(0, raw)
	gForce := apparent / real
	return ApparentWeight{
		Real:     real,
		Apparent: apparent,
		GForce:   gForce,
		State:    Classify(gForce),
	}
}
