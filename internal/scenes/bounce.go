package scenes

import (
	"math"

	"github.com/san-kum/kinelab/internal/collision"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/phased"
)

// Bounce phases.
const (
	BounceFalling    = "falling"
	BounceColliding  = "colliding"
	BounceRebounding = "rebounding"
	BounceDone       = "done"
)

const (
	// MinBounceSpeed ends the demo once a rebound would be slower.
	MinBounceSpeed = 0.2
	// maxBounceDuration caps the demo for restitution close to one.
	maxBounceDuration = 30.0
)

type ball struct {
	Y, V    float64
	Impact  collision.Impulse
	Speed   float64
	Bounces int
	Apex    float64
}

// Bounce drops a ball and lets it bounce, computing the impulse of every
// contact with a half-sine force pulse.
type Bounce struct {
	params
	machine *phased.Machine[string, ball]
	initial phased.State[string, ball]
	state   phased.State[string, ball]
}

// NewBounce returns the bounce scene at t=0.
func NewBounce() *Bounce {
	b := &Bounce{params: newParams("bounce",
		ParamSpec{Name: "mass", Label: "Mass", Unit: "kg", Default: 0.5, Min: 0.01, Max: 20},
		ParamSpec{Name: "gravity", Label: "Gravity", Unit: "m/s²", Default: 9.8, Min: 0.1, Max: 30},
		ParamSpec{Name: "height", Label: "Drop height", Unit: "m", Default: 2, Min: 0.05, Max: 50},
		ParamSpec{Name: "restitution", Label: "Restitution", Default: 0.7, Min: 0, Max: 1},
		ParamSpec{Name: "contact_time", Label: "Contact time", Unit: "s", Default: 0.05, Min: 0.001, Max: 0.5},
	)}
	b.rebuild()
	return b
}

func (b *Bounce) Name() string { return "bounce" }

func (b *Bounce) SetParam(name string, value float64) error {
	if err := b.set(name, value); err != nil {
		return err
	}
	b.rebuild()
	return nil
}

func (b *Bounce) rebuild() {
	mass := b.get("mass")
	g := b.get("gravity")
	e := b.get("restitution")
	contact := b.get("contact_time")

	flight := func(d ball, dt float64) ball {
		d.Y += d.V*dt - 0.5*g*dt*dt
		d.V -= g * dt
		return d
	}
	untilGround := func(d ball, _ float64) float64 {
		return (d.V + math.Sqrt(math.Max(0, d.V*d.V+2*g*d.Y))) / g
	}

	b.machine = phased.New[string, ball]().
		Phase(BounceFalling, phased.Phase[ball]{Integrate: flight, Remaining: untilGround}).
		Phase(BounceColliding, phased.Phase[ball]{
			Remaining: func(_ ball, elapsed float64) float64 { return contact - elapsed },
		}).
		Phase(BounceRebounding, phased.Phase[ball]{
			Integrate: flight,
			Remaining: func(d ball, _ float64) float64 { return d.V / g },
		}).
		Phase(BounceDone, phased.Phase[ball]{}).
		OnExit(BounceFalling, phased.Transition[string, ball]{
			To: BounceColliding,
			Enter: func(d ball) ball {
				d.Y = 0
				d.Speed = math.Abs(d.V)
				d.Impact = collision.FromContact(mass, d.Speed, e, contact, g)
				d.Bounces++
				return d
			},
		}).
		OnExit(BounceColliding,
			phased.Transition[string, ball]{
				To:    BounceDone,
				When:  func(d ball, _ float64) bool { return d.Impact.ReboundSpeed < MinBounceSpeed },
				Enter: func(d ball) ball { d.V = 0; return d },
			},
			phased.Transition[string, ball]{
				To: BounceRebounding,
				Enter: func(d ball) ball {
					d.V = d.Impact.ReboundSpeed
					d.Apex = d.Impact.BounceHeight
					return d
				},
			},
		).
		OnExit(BounceRebounding, phased.Transition[string, ball]{
			To:    BounceFalling,
			Enter: func(d ball) ball { d.V = 0; return d },
		})

	h := b.get("height")
	b.initial = phased.Start(BounceFalling, ball{Y: h, Apex: h})
	b.state = b.initial
}

// Duration sums the flight and contact times of every bounce until the
// rebound drops below MinBounceSpeed, plus a short tail.
func (b *Bounce) Duration() float64 {
	g := b.get("gravity")
	e := b.get("restitution")
	contact := b.get("contact_time")

	v := collision.ImpactVelocity(b.get("height"), g)
	total := v / g
	for total < maxBounceDuration {
		total += contact
		v *= e
		if v < MinBounceSpeed {
			return total + 1
		}
		total += 2 * v / g
	}
	return maxBounceDuration
}

func (b *Bounce) Tick(delta, total float64) bool {
	if delta == 0 || total < b.state.Time {
		b.state = b.machine.Run(b.initial, total)
	} else {
		b.state = b.machine.Run(b.state, total)
	}
	return b.state.Phase != BounceDone
}

// Phase is the current machine phase.
func (b *Bounce) Phase() string { return b.state.Phase }

func (b *Bounce) Snapshot() dynamo.Snapshot {
	mass, g := b.get("mass"), b.get("gravity")
	contact := b.get("contact_time")
	s := b.state
	d := s.Data

	v := d.V
	accel := -g
	force := 0.0
	progress := 0.0
	collisionProgress := 0.0
	switch s.Phase {
	case BounceColliding:
		collisionProgress = dynamo.Clamp(s.Elapsed/contact, 0, 1)
		progress = collisionProgress
		// integral of the half-sine pulse from 0 to elapsed
		dv := d.Impact.Impulse / mass * (1 - math.Cos(math.Pi*collisionProgress)) / 2
		v = -d.Speed + dv
		force = collision.HalfSineForce(d.Impact.PeakForce, s.Elapsed, contact)
		accel = force / mass
	case BounceFalling:
		if d.Apex > 0 {
			progress = dynamo.Clamp(1-d.Y/d.Apex, 0, 1)
		}
	case BounceRebounding:
		if d.Apex > 0 {
			progress = dynamo.Clamp(d.Y/d.Apex, 0, 1)
		}
		collisionProgress = 1
	case BounceDone:
		accel = 0
		progress = 1
		collisionProgress = 1
	}

	return dynamo.Snapshot{
		Scene:             b.Name(),
		Time:              s.Time,
		Phase:             s.Phase,
		Progress:          progress,
		Position:          d.Y,
		Velocity:          v,
		Acceleration:      accel,
		CollisionProgress: collisionProgress,
		Bodies: []dynamo.Body{
			{Label: "ball", Y: d.Y, Velocity: v, Width: 0.2},
		},
		Quantities: map[string]float64{
			"force":             force,
			"impact_speed":      d.Speed,
			"rebound_speed":     d.Impact.ReboundSpeed,
			"impulse":           d.Impact.Impulse,
			"avg_force":         d.Impact.AvgForce,
			"peak_force":        d.Impact.PeakForce,
			"bounce_height":     d.Impact.BounceHeight,
			"energy_lost":       d.Impact.EnergyLost,
			"momentum":          mass * v,
			"kinetic_energy":    0.5 * mass * v * v,
			"mechanical_energy": 0.5*mass*v*v + mass*b.get("gravity")*d.Y,
			"bounces":           float64(d.Bounces),
		},
	}
}
