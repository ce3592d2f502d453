package scenes

import (
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/scenario"
	"github.com/san-kum/kinelab/internal/timeline"
)

// Elevator is a person standing on a scale in a lift.
type Elevator struct {
	params
	tl  timeline.Timeline
	now timeline.Kinematics
}

// NewElevator returns the elevator scene at t=0.
func NewElevator() *Elevator {
	d := timeline.DefaultElevator()
	e := &Elevator{params: newParams("elevator",
		ParamSpec{Name: "mass", Label: "Mass", Unit: "kg", Default: 70, Min: 1, Max: 200},
		ParamSpec{Name: "gravity", Label: "Gravity", Unit: "m/s²", Default: 9.8, Min: 0.1, Max: 30},
		ParamSpec{Name: "accel", Label: "Acceleration", Unit: "m/s²", Default: d.Accel, Min: 0, Max: 30},
		ParamSpec{Name: "direction", Label: "Direction (0 up, 1 down)", Default: 0, Min: 0, Max: 1, Step: 1},
		ParamSpec{Name: "accel_time", Label: "Speed-up time", Unit: "s", Default: d.AccelTime, Min: 0.1, Max: 10},
		ParamSpec{Name: "cruise_time", Label: "Cruise time", Unit: "s", Default: d.CruiseTime, Min: 0, Max: 20},
		ParamSpec{Name: "decel_time", Label: "Slow-down time", Unit: "s", Default: d.DecelTime, Min: 0.1, Max: 10},
	)}
	e.rebuild()
	return e
}

func (e *Elevator) Name() string { return "elevator" }

// SetParam clamps and applies a value, then rebuilds the ride.
func (e *Elevator) SetParam(name string, value float64) error {
	if err := e.set(name, value); err != nil {
		return err
	}
	e.rebuild()
	return nil
}

func (e *Elevator) rebuild() {
	p := timeline.DefaultElevator()
	p.Accel = e.get("accel")
	p.AccelTime = e.get("accel_time")
	p.CruiseTime = e.get("cruise_time")
	p.DecelTime = e.get("decel_time")
	if e.get("direction") >= 0.5 {
		p.Direction = timeline.Down
	}
	tl, err := timeline.Elevator(p)
	if err != nil {
		// clamped sliders always give positive ramps; keep the last good ride
		return
	}
	e.tl = tl
	e.now = tl.Evaluate(0)
}

// Timeline exposes the current ride.
func (e *Elevator) Timeline() timeline.Timeline { return e.tl }

func (e *Elevator) Duration() float64 { return e.tl.Duration() }

// Tick evaluates the ride at total; the timeline is stateless so delta is
// irrelevant.
func (e *Elevator) Tick(delta, total float64) bool {
	e.now = e.tl.Evaluate(total)
	return total < e.tl.Duration()
}

func (e *Elevator) Snapshot() dynamo.Snapshot {
	mass, g := e.get("mass"), e.get("gravity")
	k := e.now
	w := scenario.ApparentWeightOf(mass, g, k.Acceleration)

	return dynamo.Snapshot{
		Scene:          e.Name(),
		Time:           k.Time,
		Phase:          string(k.Phase.ID),
		Progress:       k.Progress,
		Position:       k.Position,
		Velocity:       k.Velocity,
		Acceleration:   k.Acceleration,
		ApparentWeight: w.Apparent,
		GForce:         w.GForce,
		WeightState:    w.State.String(),
		Bodies: []dynamo.Body{
			{Label: "car", Y: k.Position, Velocity: k.Velocity, Width: 2},
		},
		Quantities: map[string]float64{
			"real_weight":    w.Real,
			"normal_force":   w.Apparent,
			"net_force":      mass * k.Acceleration,
			"momentum":       mass * k.Velocity,
			"kinetic_energy": 0.5 * mass * k.Velocity * k.Velocity,
			"phase_index":    float64(k.PhaseIndex),
		},
	}
}
