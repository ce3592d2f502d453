package scenes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/kinelab/internal/dynamo"
)

// River phases.
const (
	RiverCrossing = "crossing"
	RiverLanded   = "landed"
	RiverAdrift   = "adrift"
)

const (
	riverTail     = 1.0
	riverMaxDrift = 30.0
)

// River steers a boat across a current. The heading is measured from
// straight across, positive upstream.
type River struct {
	params
	t float64
}

// NewRiver returns the crossing scene at t=0.
func NewRiver() *River {
	return &River{params: newParams("river",
		ParamSpec{Name: "width", Label: "River width", Unit: "m", Default: 60, Min: 5, Max: 500},
		ParamSpec{Name: "boat_speed", Label: "Boat speed", Unit: "m/s", Default: 4, Min: 0.1, Max: 20},
		ParamSpec{Name: "current", Label: "Current", Unit: "m/s", Default: 2, Min: 0, Max: 20},
		ParamSpec{Name: "heading", Label: "Heading", Unit: "deg", Default: 0, Min: -89, Max: 89},
	)}
}

func (r *River) Name() string { return "river" }

func (r *River) SetParam(name string, value float64) error {
	return r.set(name, value)
}

// velocities returns the boat's velocity relative to the water and to the
// bank. x runs downstream, y across.
func (r *River) velocities() (water, ground mgl64.Vec2) {
	h := mgl64.DegToRad(r.get("heading"))
	vb := r.get("boat_speed")
	water = mgl64.Vec2{-vb * math.Sin(h), vb * math.Cos(h)}
	ground = water.Add(mgl64.Vec2{r.get("current"), 0})
	return water, ground
}

// CrossingTime is how long the boat takes to reach the far bank, or false
// if it never does.
func (r *River) CrossingTime() (float64, bool) {
	_, ground := r.velocities()
	if ground.Y() < dynamo.Tolerance {
		return 0, false
	}
	return r.get("width") / ground.Y(), true
}

// ZeroDriftHeading is the upstream heading, in degrees, that lands the boat
// straight across. It reports false when the current is faster than the
// boat.
func (r *River) ZeroDriftHeading() (float64, bool) {
	ratio := r.get("current") / r.get("boat_speed")
	if ratio >= 1 {
		return 0, false
	}
	return mgl64.RadToDeg(math.Asin(ratio)), true
}

func (r *River) Duration() float64 {
	ct, ok := r.CrossingTime()
	if !ok {
		return riverMaxDrift
	}
	return math.Min(ct, riverMaxDrift) + riverTail
}

func (r *River) Tick(delta, total float64) bool {
	r.t = total
	return total < r.Duration()
}

func (r *River) Snapshot() dynamo.Snapshot {
	water, ground := r.velocities()
	width := r.get("width")

	phase := RiverAdrift
	t := r.t
	progress := dynamo.Clamp(t/riverMaxDrift, 0, 1)
	ct, ok := r.CrossingTime()
	if ok {
		phase = RiverCrossing
		progress = dynamo.Clamp(t/ct, 0, 1)
		if t >= ct {
			phase = RiverLanded
			t = ct
		}
	}

	pos := ground.Mul(t)
	vel := ground
	if phase == RiverLanded {
		vel = mgl64.Vec2{}
	}
	q := map[string]float64{
		"x":            pos.X(),
		"y":            pos.Y(),
		"ground_speed": ground.Len(),
		"water_speed":  water.Len(),
		"remaining":    math.Max(0, width-pos.Y()),
	}
	if ok {
		q["drift"] = ground.X() * ct
		q["crossing_time"] = ct
	}

	return dynamo.Snapshot{
		Scene:    r.Name(),
		Time:     r.t,
		Phase:    phase,
		Progress: progress,
		Position: pos.Y(),
		Velocity: vel.Len(),
		Bodies: []dynamo.Body{
			{Label: "boat", X: pos.X(), Y: pos.Y(), Velocity: vel.Len(), Width: 2},
		},
		Quantities: q,
	}
}
