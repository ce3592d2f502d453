package scenes

import (
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/scenario"
)

// FreeFall drops a person standing on a scale.
type FreeFall struct {
	params
	t   float64
	now scenario.FallState
}

// NewFreeFall returns the drop scene at t=0.
func NewFreeFall() *FreeFall {
	f := &FreeFall{params: newParams("freefall",
		ParamSpec{Name: "mass", Label: "Mass", Unit: "kg", Default: 70, Min: 1, Max: 200},
		ParamSpec{Name: "gravity", Label: "Gravity", Unit: "m/s²", Default: 9.8, Min: 0.1, Max: 30},
		ParamSpec{Name: "height", Label: "Drop height", Unit: "m", Default: 5, Min: 0.1, Max: 100},
		ParamSpec{Name: "impact_duration", Label: "Impact duration", Unit: "s", Default: scenario.DefaultImpactDuration, Min: 0.01, Max: 1},
		ParamSpec{Name: "hold_time", Label: "Hold time", Unit: "s", Default: scenario.DefaultHoldTime, Min: 0, Max: 5},
	)}
	f.Tick(0, 0)
	return f
}

func (f *FreeFall) Name() string { return "freefall" }

func (f *FreeFall) SetParam(name string, value float64) error {
	if err := f.set(name, value); err != nil {
		return err
	}
	f.Tick(0, 0)
	return nil
}

func (f *FreeFall) fallParams() scenario.FallParams {
	return scenario.FallParams{
		Mass:           f.get("mass"),
		Gravity:        f.get("gravity"),
		DropHeight:     f.get("height"),
		ImpactDuration: f.get("impact_duration"),
		HoldTime:       f.get("hold_time"),
	}
}

func (f *FreeFall) Duration() float64 { return f.fallParams().Duration() }

func (f *FreeFall) Tick(delta, total float64) bool {
	f.t = total
	f.now = scenario.FreeFallState(total, f.fallParams())
	return total < f.Duration()
}

func (f *FreeFall) Snapshot() dynamo.Snapshot {
	mass, g := f.get("mass"), f.get("gravity")
	s := f.now
	return dynamo.Snapshot{
		Scene:          f.Name(),
		Time:           f.t,
		Phase:          s.Phase.String(),
		Progress:       s.Progress,
		Position:       s.Height,
		Velocity:       s.Velocity,
		Acceleration:   s.FrameAccel,
		ApparentWeight: s.Weight.Apparent,
		GForce:         s.Weight.GForce,
		WeightState:    s.Weight.State.String(),
		Bodies: []dynamo.Body{
			{Label: "person", Y: s.Height, Velocity: s.Velocity, Width: 0.5},
		},
		Quantities: map[string]float64{
			"real_weight":      s.Weight.Real,
			"scale_reading":    s.Weight.Apparent,
			"kinetic_energy":   0.5 * mass * s.Velocity * s.Velocity,
			"potential_energy": mass * g * s.Height,
			"impact_speed":     f.fallParams().ImpactSpeed(),
			"fall_time":        f.fallParams().FallTime(),
		},
	}
}
