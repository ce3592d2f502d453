package scenes

import (
	"math"

	"github.com/san-kum/kinelab/internal/collision"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/phased"
)

// Collision phases.
const (
	CollisionApproaching = "approaching"
	CollisionColliding   = "colliding"
	CollisionSeparating  = "separating"
	CollisionMerged      = "merged"
	CollisionNeverMeet   = "never_meet"
	CollisionJoined      = "joined"
	CollisionExploding   = "exploding"
)

const (
	// explosionDelay is how long the joined bodies coast before the charge
	// goes off.
	explosionDelay = 1.0
	collisionTail  = 2.0
	neverMeetTime  = 4.0
)

type carts struct {
	X1, X2 float64
	V1, V2 float64
	// velocities at the start and end of the contact
	From1, From2 float64
	To1, To2     float64
	Contact      float64
	Outcome      collision.Outcome
}

// Collision runs two carts on a track into each other, or pushes two
// joined carts apart with a spring charge.
type Collision struct {
	params
	machine *phased.Machine[string, carts]
	initial phased.State[string, carts]
	state   phased.State[string, carts]
	meet    float64
}

// NewCollision returns the cart scene at t=0.
func NewCollision() *Collision {
	c := &Collision{params: newParams("collision",
		ParamSpec{Name: "m1", Label: "Mass 1", Unit: "kg", Default: 2, Min: 0.1, Max: 50},
		ParamSpec{Name: "m2", Label: "Mass 2", Unit: "kg", Default: 1, Min: 0.1, Max: 50},
		ParamSpec{Name: "u1", Label: "Velocity 1", Unit: "m/s", Default: 3, Min: -20, Max: 20},
		ParamSpec{Name: "u2", Label: "Velocity 2", Unit: "m/s", Default: -1, Min: -20, Max: 20},
		ParamSpec{Name: "kind", Label: "Kind (0 elastic, 1 inelastic, 2 perfectly inelastic, 3 explosion)", Default: 0, Min: 0, Max: 3, Step: 1},
		ParamSpec{Name: "restitution", Label: "Restitution", Default: 1, Min: 0, Max: 1},
		ParamSpec{Name: "x1", Label: "Start 1", Unit: "m", Default: -4, Min: -50, Max: 50},
		ParamSpec{Name: "x2", Label: "Start 2", Unit: "m", Default: 4, Min: -50, Max: 50},
		ParamSpec{Name: "width", Label: "Cart width", Unit: "m", Default: 1, Min: 0.1, Max: 5},
		ParamSpec{Name: "contact_time", Label: "Contact time", Unit: "s", Default: 0.1, Min: 0.005, Max: 1},
		ParamSpec{Name: "energy", Label: "Explosion energy", Unit: "J", Default: 12, Min: 0, Max: 500},
	)}
	c.rebuild()
	return c
}

func (c *Collision) Name() string { return "collision" }

func (c *Collision) SetParam(name string, value float64) error {
	if err := c.set(name, value); err != nil {
		return err
	}
	if name == "kind" {
		// picking a kind resets the slider to that kind's coefficient
		c.values["restitution"] = c.Kind().DefaultRestitution()
	}
	// elastic and perfectly inelastic hold the slider at their coefficient
	if e, fixed := c.Kind().FixedRestitution(); fixed {
		c.values["restitution"] = e
	}
	c.rebuild()
	return nil
}

// Locked reports whether the restitution slider is held by the kind.
func (c *Collision) Locked(name string) bool {
	if name != "restitution" {
		return false
	}
	_, fixed := c.Kind().FixedRestitution()
	return fixed
}

// Kind is the collision kind selected by the "kind" slider.
func (c *Collision) Kind() collision.Kind {
	return collision.Kind(int(math.Round(c.get("kind"))))
}

func (c *Collision) rebuild() {
	m1, m2 := c.get("m1"), c.get("m2")
	w := c.get("width")
	contact := c.get("contact_time")
	kind := c.Kind()

	coast := func(d carts, dt float64) carts {
		d.X1 += d.V1 * dt
		d.X2 += d.V2 * dt
		return d
	}
	// velocities ramp linearly across the contact, which keeps the total
	// momentum fixed at every instant
	push := func(d carts, dt float64) carts {
		t0, t1 := d.Contact, d.Contact+dt
		ramp := (t1*t1 - t0*t0) / (2 * contact)
		d.X1 += d.From1*dt + (d.To1-d.From1)*ramp
		d.X2 += d.From2*dt + (d.To2-d.From2)*ramp
		f := math.Min(1, t1/contact)
		d.V1 = d.From1 + (d.To1-d.From1)*f
		d.V2 = d.From2 + (d.To2-d.From2)*f
		d.Contact = t1
		return d
	}
	untilContact := func(d carts, _ float64) float64 {
		a, ok := collision.ApproachTime(d.X1, d.X2, d.V1, d.V2, w, w)
		if !ok {
			return math.Inf(1)
		}
		return a.Time
	}
	endContact := func(_ carts, elapsed float64) float64 { return contact - elapsed }
	finish := func(d carts) carts {
		d.V1, d.V2 = d.To1, d.To2
		return d
	}

	m := phased.New[string, carts]().
		Phase(CollisionApproaching, phased.Phase[carts]{Integrate: coast, Remaining: untilContact}).
		Phase(CollisionColliding, phased.Phase[carts]{Integrate: push, Remaining: endContact}).
		Phase(CollisionExploding, phased.Phase[carts]{Integrate: push, Remaining: endContact}).
		Phase(CollisionJoined, phased.Phase[carts]{
			Integrate: coast,
			Remaining: func(_ carts, elapsed float64) float64 { return explosionDelay - elapsed },
		}).
		Phase(CollisionSeparating, phased.Phase[carts]{Integrate: coast}).
		Phase(CollisionMerged, phased.Phase[carts]{Integrate: coast}).
		Phase(CollisionNeverMeet, phased.Phase[carts]{Integrate: coast}).
		OnExit(CollisionApproaching, phased.Transition[string, carts]{
			To: CollisionColliding,
			Enter: func(d carts) carts {
				e := c.get("restitution")
				if fixed, ok := kind.FixedRestitution(); ok {
					e = fixed
				}
				out := collision.Resolve(m1, m2, d.V1, d.V2, e)
				d.Outcome = out
				d.From1, d.From2 = d.V1, d.V2
				d.To1, d.To2 = out.V1, out.V2
				d.Contact = 0
				return d
			},
		}).
		OnExit(CollisionColliding,
			phased.Transition[string, carts]{
				To:    CollisionMerged,
				When:  func(carts, float64) bool { return kind == collision.PerfectlyInelastic },
				Enter: finish,
			},
			phased.Transition[string, carts]{To: CollisionSeparating, Enter: finish},
		).
		OnExit(CollisionJoined, phased.Transition[string, carts]{
			To: CollisionExploding,
			Enter: func(d carts) carts {
				res := collision.Explode(m1, m2, c.get("energy"), d.V1)
				d.Outcome = collision.Outcome{
					V1:             res.V1,
					V2:             res.V2,
					MomentumBefore: res.Momentum,
					MomentumAfter:  m1*res.V1 + m2*res.V2,
					KEBefore:       res.KEBefore,
					KEAfter:        res.KEAfter,
				}
				d.From1, d.From2 = d.V1, d.V2
				d.To1, d.To2 = res.V1, res.V2
				d.Contact = 0
				return d
			},
		}).
		OnExit(CollisionExploding, phased.Transition[string, carts]{To: CollisionSeparating, Enter: finish})
	c.machine = m

	x1, x2 := c.get("x1"), c.get("x2")
	u1, u2 := c.get("u1"), c.get("u2")
	if kind == collision.Explosion {
		x2 = x1 + w
		c.initial = phased.Start(CollisionJoined, carts{X1: x1, X2: x2, V1: u1, V2: u1})
		c.meet = explosionDelay
	} else if a, ok := collision.ApproachTime(x1, x2, u1, u2, w, w); ok {
		c.initial = phased.Start(CollisionApproaching, carts{X1: x1, X2: x2, V1: u1, V2: u2})
		c.meet = a.Time
	} else {
		c.initial = phased.Start(CollisionNeverMeet, carts{X1: x1, X2: x2, V1: u1, V2: u2})
		c.meet = math.Inf(1)
	}
	c.state = c.initial
}

// MeetTime is when the carts touch, or +Inf if they never do.
func (c *Collision) MeetTime() float64 { return c.meet }

func (c *Collision) Duration() float64 {
	if math.IsInf(c.meet, 1) {
		return neverMeetTime
	}
	return c.meet + c.get("contact_time") + collisionTail
}

func (c *Collision) Tick(delta, total float64) bool {
	if delta == 0 || total < c.state.Time {
		c.state = c.machine.Run(c.initial, total)
	} else {
		c.state = c.machine.Run(c.state, total)
	}
	return total < c.Duration()
}

// Phase is the current machine phase.
func (c *Collision) Phase() string { return c.state.Phase }

func (c *Collision) Snapshot() dynamo.Snapshot {
	m1, m2 := c.get("m1"), c.get("m2")
	w := c.get("width")
	contact := c.get("contact_time")
	s := c.state
	d := s.Data

	var progress, collisionProgress, accel float64
	switch s.Phase {
	case CollisionApproaching:
		if c.meet > 0 {
			progress = dynamo.Clamp(s.Time/c.meet, 0, 1)
		}
	case CollisionJoined:
		progress = dynamo.Clamp(s.Elapsed/explosionDelay, 0, 1)
	case CollisionColliding, CollisionExploding:
		collisionProgress = dynamo.Clamp(s.Elapsed/contact, 0, 1)
		progress = collisionProgress
		accel = (d.To1 - d.From1) / contact
	case CollisionSeparating, CollisionMerged:
		collisionProgress = 1
		progress = dynamo.Clamp(s.Elapsed/collisionTail, 0, 1)
	case CollisionNeverMeet:
		progress = dynamo.Clamp(s.Time/neverMeetTime, 0, 1)
	}

	p := collision.Momentum(m1, d.V1) + collision.Momentum(m2, d.V2)
	ke := collision.KineticEnergy(m1, d.V1) + collision.KineticEnergy(m2, d.V2)
	return dynamo.Snapshot{
		Scene:             c.Name(),
		Time:              s.Time,
		Phase:             s.Phase,
		Progress:          progress,
		Position:          d.X1,
		Velocity:          d.V1,
		Acceleration:      accel,
		CollisionProgress: collisionProgress,
		Bodies: []dynamo.Body{
			{Label: "cart1", X: d.X1, Velocity: d.V1, Width: w},
			{Label: "cart2", X: d.X2, Velocity: d.V2, Width: w},
		},
		Quantities: map[string]float64{
			"v1":               d.V1,
			"v2":               d.V2,
			"momentum":         p,
			"kinetic_energy":   ke,
			"momentum_before":  d.Outcome.MomentumBefore,
			"momentum_after":   d.Outcome.MomentumAfter,
			"energy_before":    d.Outcome.KEBefore,
			"energy_after":     d.Outcome.KEAfter,
			"energy_lost":      d.Outcome.EnergyLost,
			"relative_speed":   math.Abs(d.V2 - d.V1),
			"restitution_used": c.get("restitution"),
		},
	}
}
