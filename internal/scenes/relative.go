package scenes

import (
	"math"

	"github.com/san-kum/kinelab/internal/collision"
	"github.com/san-kum/kinelab/internal/dynamo"
)

// Relative phases.
const (
	RelativeClosing   = "closing"
	RelativePassing   = "passing"
	RelativePassed    = "passed"
	RelativeNeverMeet = "never_meet"
)

const (
	relativeTail   = 2.0
	relativeNoMeet = 10.0
	frameGround    = 0
	frameFirstCar  = 1
	frameSecondCar = 2
)

// Relative drives two cars along a straight road and shows their motion
// from the ground or from either car.
type Relative struct {
	params
	t float64
}

// NewRelative returns the two-car scene at t=0.
func NewRelative() *Relative {
	return &Relative{params: newParams("relative",
		ParamSpec{Name: "x1", Label: "Start A", Unit: "m", Default: 0, Min: -200, Max: 200},
		ParamSpec{Name: "x2", Label: "Start B", Unit: "m", Default: 120, Min: -200, Max: 200},
		ParamSpec{Name: "u1", Label: "Velocity A", Unit: "m/s", Default: 20, Min: -50, Max: 50},
		ParamSpec{Name: "u2", Label: "Velocity B", Unit: "m/s", Default: -10, Min: -50, Max: 50},
		ParamSpec{Name: "length", Label: "Car length", Unit: "m", Default: 4, Min: 1, Max: 20},
		ParamSpec{Name: "frame", Label: "Frame (0 ground, 1 car A, 2 car B)", Default: frameGround, Min: 0, Max: 2, Step: 1},
	)}
}

func (r *Relative) Name() string { return "relative" }

func (r *Relative) SetParam(name string, value float64) error {
	return r.set(name, value)
}

// Meeting returns when and where the cars first touch.
func (r *Relative) Meeting() (collision.Approach, bool) {
	w := r.get("length")
	return collision.ApproachTime(r.get("x1"), r.get("x2"), r.get("u1"), r.get("u2"), w, w)
}

// passTime is how long the cars overlap while passing.
func (r *Relative) passTime() float64 {
	closing := math.Abs(r.get("u1") - r.get("u2"))
	if closing < dynamo.Tolerance {
		return 0
	}
	return 2 * r.get("length") / closing
}

func (r *Relative) Duration() float64 {
	a, ok := r.Meeting()
	if !ok {
		return relativeNoMeet
	}
	return a.Time + r.passTime() + relativeTail
}

func (r *Relative) Tick(delta, total float64) bool {
	r.t = total
	return total < r.Duration()
}

func (r *Relative) frameVelocity() float64 {
	switch int(math.Round(r.get("frame"))) {
	case frameFirstCar:
		return r.get("u1")
	case frameSecondCar:
		return r.get("u2")
	}
	return 0
}

func (r *Relative) frameOrigin() float64 {
	switch int(math.Round(r.get("frame"))) {
	case frameFirstCar:
		return r.get("x1")
	case frameSecondCar:
		return r.get("x2")
	}
	return 0
}

func (r *Relative) Snapshot() dynamo.Snapshot {
	t := r.t
	u1, u2 := r.get("u1"), r.get("u2")
	w := r.get("length")
	x1 := r.get("x1") + u1*t
	x2 := r.get("x2") + u2*t

	// shift into the observer's frame
	fv := r.frameVelocity()
	fx := r.frameOrigin() + fv*t
	v1, v2 := u1-fv, u2-fv

	phase := RelativeNeverMeet
	progress := dynamo.Clamp(t/relativeNoMeet, 0, 1)
	a, meets := r.Meeting()
	if meets {
		pass := r.passTime()
		switch {
		case t < a.Time:
			phase = RelativeClosing
			if a.Time > 0 {
				progress = t / a.Time
			}
		case t < a.Time+pass:
			phase = RelativePassing
			progress = (t - a.Time) / pass
		default:
			phase = RelativePassed
			progress = 1
		}
	}

	q := map[string]float64{
		"relative_velocity": u2 - u1,
		"closing_speed":     u1 - u2,
		"gap":               math.Abs(x2-x1) - w,
		"frame_velocity":    fv,
	}
	if meets {
		q["meet_time"] = a.Time
		q["meet_position"] = a.Position
	}
	return dynamo.Snapshot{
		Scene:    r.Name(),
		Time:     t,
		Phase:    phase,
		Progress: dynamo.Clamp(progress, 0, 1),
		Position: x2 - x1,
		Velocity: u2 - u1,
		Bodies: []dynamo.Body{
			{Label: "car_a", X: x1 - fx, Velocity: v1, Width: w},
			{Label: "car_b", X: x2 - fx, Velocity: v2, Width: w},
		},
		Quantities: q,
	}
}
