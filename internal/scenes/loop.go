package scenes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/phased"
	"github.com/san-kum/kinelab/internal/scenario"
)

// Loop phases.
const (
	LoopRiding   = "riding"
	LoopDetached = "detached"
	LoopLanded   = "landed"
	LoopComplete = "complete"
)

const (
	loopTail = 1.0
	// reentryStep is the scan step used to find where a detached body
	// meets the track again.
	reentryStep  = 1e-3
	maxAirborne  = 10.0
	twoPi        = 2 * math.Pi
	detachMargin = 1e-12
)

type rider struct {
	Theta  float64
	Pos    mgl64.Vec2
	Vel    mgl64.Vec2
	Flight float64
}

// Loop sends a cart round the inside of a vertical loop at constant speed.
// Below the minimum top speed the cart leaves the track and flies as a
// projectile until it meets the track again.
type Loop struct {
	params
	machine  *phased.Machine[string, rider]
	initial  phased.State[string, rider]
	state    phased.State[string, rider]
	detach   float64
	detaches bool
	end      float64
}

// NewLoop returns the loop scene at t=0.
func NewLoop() *Loop {
	l := &Loop{params: newParams("loop",
		ParamSpec{Name: "mass", Label: "Mass", Unit: "kg", Default: 70, Min: 1, Max: 500},
		ParamSpec{Name: "gravity", Label: "Gravity", Unit: "m/s²", Default: 9.8, Min: 0.1, Max: 30},
		ParamSpec{Name: "radius", Label: "Radius", Unit: "m", Default: 10, Min: 1, Max: 50},
		ParamSpec{Name: "speed", Label: "Speed", Unit: "m/s", Default: 12, Min: 0.5, Max: 60},
	)}
	l.rebuild()
	return l
}

func (l *Loop) Name() string { return "loop" }

func (l *Loop) SetParam(name string, value float64) error {
	if err := l.set(name, value); err != nil {
		return err
	}
	l.rebuild()
	return nil
}

func (l *Loop) loopParams() scenario.LoopParams {
	return scenario.LoopParams{
		Mass:    l.get("mass"),
		Gravity: l.get("gravity"),
		Radius:  l.get("radius"),
		Speed:   l.get("speed"),
	}
}

func (l *Loop) rebuild() {
	p := l.loopParams()
	g := p.Gravity
	r := p.Radius
	omega := p.AngularSpeed()

	l.detach, l.detaches = scenario.DetachAngle(p)
	target := twoPi
	if l.detaches {
		target = l.detach
	}

	gravity := mgl64.Vec2{0, -g}
	fly := func(d rider, dt float64) rider {
		d.Pos = d.Pos.Add(d.Vel.Mul(dt)).Add(gravity.Mul(0.5 * dt * dt))
		d.Vel = d.Vel.Add(gravity.Mul(dt))
		return d
	}

	l.machine = phased.New[string, rider]().
		Phase(LoopRiding, phased.Phase[rider]{
			Integrate: func(d rider, dt float64) rider {
				d.Theta += omega * dt
				st := scenario.CircularMotionState(d.Theta, p)
				d.Pos, d.Vel = st.Position, st.Velocity
				return d
			},
			Remaining: func(d rider, _ float64) float64 { return (target - d.Theta) / omega },
		}).
		Phase(LoopDetached, phased.Phase[rider]{
			Integrate: fly,
			Remaining: func(d rider, elapsed float64) float64 { return d.Flight - elapsed },
		}).
		Phase(LoopLanded, phased.Phase[rider]{}).
		Phase(LoopComplete, phased.Phase[rider]{}).
		OnExit(LoopRiding,
			phased.Transition[string, rider]{
				To:   LoopDetached,
				When: func(rider, float64) bool { return l.detaches },
				Enter: func(d rider) rider {
					d.Theta = target
					st := scenario.CircularMotionState(target, p)
					d.Pos, d.Vel = st.Position, st.Velocity
					d.Flight = reentry(d.Pos, d.Vel, g, r)
					return d
				},
			},
			phased.Transition[string, rider]{
				To: LoopComplete,
				Enter: func(d rider) rider {
					d.Theta = twoPi
					d.Pos = scenario.LoopPoint(0, r)
					return d
				},
			},
		).
		OnExit(LoopDetached, phased.Transition[string, rider]{
			To: LoopLanded,
			Enter: func(d rider) rider {
				d.Vel = mgl64.Vec2{}
				return d
			},
		})

	st := scenario.CircularMotionState(0, p)
	l.initial = phased.Start(LoopRiding, rider{Pos: st.Position, Vel: st.Velocity})
	l.state = l.initial

	l.end = target / omega
	if l.detaches {
		start := scenario.CircularMotionState(target, p)
		l.end += reentry(start.Position, start.Velocity, g, r)
	}
}

// reentry finds how long a body launched from the track at pos with
// velocity vel stays in the air before it crosses the circle again, or
// reaches the floor if it never does.
func reentry(pos, vel mgl64.Vec2, g, r float64) float64 {
	centre := mgl64.Vec2{0, r}
	outside := func(t float64) float64 {
		q := pos.Add(vel.Mul(t)).Add(mgl64.Vec2{0, -0.5 * g * t * t}).Sub(centre)
		return q.Dot(q) - r*r
	}

	inside := false
	for t := reentryStep; t < maxAirborne; t += reentryStep {
		f := outside(t)
		if f < -detachMargin*r*r {
			inside = true
			continue
		}
		if !inside {
			continue
		}
		lo, hi := t-reentryStep, t
		for i := 0; i < 60; i++ {
			mid := (lo + hi) / 2
			if outside(mid) < 0 {
				lo = mid
			} else {
				hi = mid
			}
		}
		return hi
	}

	// fall back to the floor
	return (vel.Y() + math.Sqrt(math.Max(0, vel.Y()*vel.Y()+2*g*pos.Y()))) / g
}

// DetachAngle is the angle where the cart leaves the track, if it does.
func (l *Loop) DetachAngle() (float64, bool) { return l.detach, l.detaches }

func (l *Loop) Duration() float64 { return l.end + loopTail }

func (l *Loop) Tick(delta, total float64) bool {
	if delta == 0 || total < l.state.Time {
		l.state = l.machine.Run(l.initial, total)
	} else {
		l.state = l.machine.Run(l.state, total)
	}
	return total < l.Duration()
}

// Phase is the current machine phase.
func (l *Loop) Phase() string { return l.state.Phase }

func (l *Loop) Snapshot() dynamo.Snapshot {
	p := l.loopParams()
	s := l.state
	d := s.Data

	var (
		weight   scenario.ApparentWeight
		normal   float64
		accel    float64
		progress float64
	)
	switch s.Phase {
	case LoopRiding:
		st := scenario.CircularMotionState(d.Theta, p)
		weight, normal, accel = st.Weight, st.NormalForce, st.CentripetalAccel
		progress = dynamo.Clamp(d.Theta/twoPi, 0, 1)
	case LoopDetached:
		weight = scenario.ApparentWeightOf(p.Mass, p.Gravity, -p.Gravity)
		// projectile: straight down, same sign as freefall
		accel = -p.Gravity
		if d.Flight > 0 {
			progress = dynamo.Clamp(s.Elapsed/d.Flight, 0, 1)
		}
	default:
		weight = scenario.ApparentWeightOf(p.Mass, p.Gravity, 0)
		normal = weight.Real
		progress = 1
	}

	speed := d.Vel.Len()
	return dynamo.Snapshot{
		Scene:          l.Name(),
		Time:           s.Time,
		Phase:          s.Phase,
		Progress:       progress,
		Position:       d.Pos.Y(),
		Velocity:       speed,
		Acceleration:   accel,
		ApparentWeight: weight.Apparent,
		GForce:         weight.GForce,
		WeightState:    weight.State.String(),
		Bodies: []dynamo.Body{
			{Label: "cart", X: d.Pos.X(), Y: d.Pos.Y(), Velocity: speed, Width: 0.5},
		},
		Quantities: map[string]float64{
			"theta":            d.Theta,
			"x":                d.Pos.X(),
			"y":                d.Pos.Y(),
			"vx":               d.Vel.X(),
			"vy":               d.Vel.Y(),
			"normal_force":     normal,
			"real_weight":      weight.Real,
			"centripetal":      p.CentripetalAccel(),
			"min_top_speed":    scenario.MinTopSpeed(p.Gravity, p.Radius),
			"kinetic_energy":   0.5 * p.Mass * speed * speed,
			"potential_energy": p.Mass * p.Gravity * d.Pos.Y(),
		},
	}
}
