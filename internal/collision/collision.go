// Package collision implements the one-dimensional impact math used by the
// collision and bounce demos.
//
// Every function is pure. Degenerate slider input (zero mass, zero contact
// time) is floored rather than rejected, and configurations with no solution
// are reported through a boolean instead of an error.
package collision

import (
	"math"

	"github.com/san-kum/kinelab/internal/dynamo"
)

// MinMass is the smallest mass, in kilograms, any formula will use.
const MinMass = 1e-6

// MinContactTime is the smallest contact duration, in seconds.
const MinContactTime = 1e-6

// Kind selects the collision model of the collision demo.
type Kind int

const (
	Elastic Kind = iota
	Inelastic
	PerfectlyInelastic
	Explosion
)

var kindNames = [...]string{"elastic", "inelastic", "perfectly_inelastic", "explosion"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// DefaultRestitution is the coefficient a kind starts with before the user
// moves the slider.
func (k Kind) DefaultRestitution() float64 {
	switch k {
	case Elastic:
		return 1
	case Inelastic:
		return 0.5
	default:
		return 0
	}
}

// FixedRestitution reports the coefficient of kinds that define one.
// Elastic is always 1 and perfectly inelastic always 0; inelastic takes any
// value in (0, 1). Explosions do not use restitution.
func (k Kind) FixedRestitution() (float64, bool) {
	switch k {
	case Elastic:
		return 1, true
	case PerfectlyInelastic:
		return 0, true
	}
	return 0, false
}

// ParseKind maps a name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Momentum returns m·v.
func Momentum(m, v float64) float64 { return m * v }

// KineticEnergy returns ½·m·v².
func KineticEnergy(m, v float64) float64 { return 0.5 * m * v * v }

// Outcome is the result of a two-body head-on collision.
type Outcome struct {
	V1, V2         float64
	MomentumBefore float64
	MomentumAfter  float64
	KEBefore       float64
	KEAfter        float64
	EnergyLost     float64
}

// Resolve solves momentum conservation together with the restitution
// definition e = (v2-v1)/(u1-u2) for the post-collision velocities.
// Restitution is clamped to [0, 1].
func Resolve(m1, m2, u1, u2, e float64) Outcome {
	m1 = dynamo.Floor(m1, MinMass)
	m2 = dynamo.Floor(m2, MinMass)
	e = dynamo.Clamp(e, 0, 1)

	approach := u1 - u2
	v1 := (m1*u1 + m2*u2 - m2*e*approach) / (m1 + m2)
	v2 := v1 + e*approach

	out := Outcome{
		V1:             v1,
		V2:             v2,
		MomentumBefore: Momentum(m1, u1) + Momentum(m2, u2),
		MomentumAfter:  Momentum(m1, v1) + Momentum(m2, v2),
		KEBefore:       KineticEnergy(m1, u1) + KineticEnergy(m2, u2),
		KEAfter:        KineticEnergy(m1, v1) + KineticEnergy(m2, v2),
	}
	// near-elastic rounding can leave a tiny negative
	out.EnergyLost = math.Max(0, out.KEBefore-out.KEAfter)
	return out
}

// ExplosionResult is the outcome of two joined bodies pushed apart by a
// release of energy Q.
type ExplosionResult struct {
	V1, V2       float64
	Momentum     float64
	KEBefore     float64
	KEAfter      float64
	EnergyGained float64
}

// Explode converts Q (floored at 0) into kinetic energy in the
// centre-of-mass frame of two bodies sharing velocity v0. Body 1 is pushed
// backwards, body 2 forwards.
func Explode(m1, m2, q, v0 float64) ExplosionResult {
	m1 = dynamo.Floor(m1, MinMass)
	m2 = dynamo.Floor(m2, MinMass)
	q = math.Max(0, q)

	total := m1 + m2
	rel1 := -math.Sqrt(2 * q * m2 / (m1 * total))
	rel2 := math.Sqrt(2 * q * m1 / (m2 * total))

	res := ExplosionResult{
		V1:       v0 + rel1,
		V2:       v0 + rel2,
		Momentum: total * v0,
		KEBefore: KineticEnergy(total, v0),
	}
	res.KEAfter = KineticEnergy(m1, res.V1) + KineticEnergy(m2, res.V2)
	res.EnergyGained = math.Max(0, res.KEAfter-res.KEBefore)
	return res
}

// ImpactVelocity is the speed reached after falling h metres from rest.
func ImpactVelocity(h, g float64) float64 {
	if h <= 0 || g <= 0 {
		return 0
	}
	return math.Sqrt(2 * g * h)
}

// Impulse summarises a single bounce against immovable ground.
type Impulse struct {
	ReboundSpeed float64
	Impulse      float64
	AvgForce     float64
	PeakForce    float64
	BounceHeight float64
	EnergyLost   float64
}

// FromContact derives the bounce of a body hitting the ground at
// impactSpeed. The contact force is modelled as a half-sine pulse over dt,
// so the peak is π/2 times the average.
func FromContact(mass, impactSpeed, e, dt, g float64) Impulse {
	mass = dynamo.Floor(mass, MinMass)
	impactSpeed = math.Abs(impactSpeed)
	e = dynamo.Clamp(e, 0, 1)
	dt = dynamo.Floor(dt, MinContactTime)
	g = dynamo.Floor(g, dynamo.Epsilon)

	rebound := e * impactSpeed
	// the velocity reverses, so both legs add up
	dp := mass * (impactSpeed + rebound)
	avg := dp / dt

	return Impulse{
		ReboundSpeed: rebound,
		Impulse:      dp,
		AvgForce:     avg,
		PeakForce:    math.Pi / 2 * avg,
		BounceHeight: rebound * rebound / (2 * g),
		EnergyLost:   math.Max(0, KineticEnergy(mass, impactSpeed)-KineticEnergy(mass, rebound)),
	}
}

// HalfSineForce samples F(t) = peak·sin(πt/dt) on [0, dt]; zero outside.
func HalfSineForce(peak, t, dt float64) float64 {
	dt = dynamo.Floor(dt, MinContactTime)
	if t < 0 || t > dt {
		return 0
	}
	return peak * math.Sin(math.Pi*t/dt)
}

// Approach is the moment two bodies first touch.
type Approach struct {
	Time     float64
	Position float64
}

// ApproachTime finds when the facing edges of two bodies of width w1, w2
// centred at x1, x2 meet, moving at u1, u2. It reports false when the
// bodies never close in or are already moving apart, overlapping or not.
// Bodies that start overlapped and are still closing meet at t=0.
func ApproachTime(x1, x2, u1, u2, w1, w2 float64) (Approach, bool) {
	w1 = math.Max(0, w1)
	w2 = math.Max(0, w2)

	// normalise so that body a is on the left
	xa, xb, ua, ub, wa, wb := x1, x2, u1, u2, w1, w2
	if x1 > x2 {
		xa, xb, ua, ub, wa, wb = x2, x1, u2, u1, w2, w1
	}

	closing := ua - ub
	if closing <= dynamo.Tolerance {
		return Approach{}, false
	}

	gap := (xb - wb/2) - (xa + wa/2)
	t := gap / closing
	if t < -dynamo.Tolerance {
		return Approach{}, false
	}
	t = math.Max(0, t)

	return Approach{Time: t, Position: xa + wa/2 + ua*t}, true
}
