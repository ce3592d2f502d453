package scenario

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/kinelab/internal/dynamo"
)

// MinRadius floors the loop radius.
const MinRadius = 1e-3

// LoopParams configures a body riding the inside of a vertical loop at
// constant speed.
type LoopParams struct {
	Mass    float64
	Gravity float64
	Radius  float64
	Speed   float64
}

func (p LoopParams) normalized() LoopParams {
	p.Mass = dynamo.Floor(p.Mass, MinMass)
	p.Gravity = dynamo.Floor(p.Gravity, MinGravity)
	p.Radius = dynamo.Floor(p.Radius, MinRadius)
	p.Speed = math.Abs(p.Speed)
	return p
}

// CentripetalAccel is v²/r.
func (p LoopParams) CentripetalAccel() float64 {
	p = p.normalized()
	return p.Speed * p.Speed / p.Radius
}

// AngularSpeed is v/r.
func (p LoopParams) AngularSpeed() float64 {
	p = p.normalized()
	return p.Speed / p.Radius
}

// MinTopSpeed is the slowest speed that keeps contact at the top of a loop.
func MinTopSpeed(g, radius float64) float64 {
	if g <= 0 || radius <= 0 {
		return 0
	}
	return math.Sqrt(g * radius)
}

// LoopState is the loop evaluated at one angle.
type LoopState struct {
	Theta            float64
	Position         mgl64.Vec2
	Velocity         mgl64.Vec2
	CentripetalAccel float64
	NormalForce      float64
	ContactLost      bool
	Weight           ApparentWeight
}

// LoopPoint returns the position at angle theta on a loop whose bottom sits
// at the origin and whose centre is one radius above it.
func LoopPoint(theta, radius float64) mgl64.Vec2 {
	return mgl64.Vec2{radius * math.Sin(theta), radius - radius*math.Cos(theta)}
}

// CircularMotionState evaluates the loop at theta (zero at the bottom,
// increasing counter-clockwise when viewed with x to the right).
func CircularMotionState(theta float64, p LoopParams) LoopState {
	p = p.normalized()
	ac := p.Speed * p.Speed / p.Radius
	normal := NormalForce(p.Mass, p.Gravity, ac, theta)
	return LoopState{
		Theta:            theta,
		Position:         LoopPoint(theta, p.Radius),
		Velocity:         mgl64.Vec2{p.Speed * math.Cos(theta), p.Speed * math.Sin(theta)},
		CentripetalAccel: ac,
		NormalForce:      normal,
		ContactLost:      normal < 0,
		Weight:           OnLoop(p.Mass, p.Gravity, ac, theta),
	}
}

// DetachAngle is the first angle in (0, 2π) at which the normal force
// reaches zero. It reports false when the body keeps contact all the way
// round.
func DetachAngle(p LoopParams) (float64, bool) {
	p = p.normalized()
	ratio := -p.Speed * p.Speed / (p.Radius * p.Gravity)
	if ratio <= -1 {
		return 0, false
	}
	return math.Acos(ratio), true
}
