package dynamo

import "math"

// Epsilon is the floor applied to quantities that must stay strictly positive.
const Epsilon = 1e-9

// Tolerance is the comparison slack for floating-point physics checks.
const Tolerance = 1e-9

// Floor returns v, or min when v is below min or NaN.
func Floor(v, min float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	return v
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Body is one drawable object in a snapshot, in world units (metres).
type Body struct {
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Velocity float64 `json:"velocity"`
	Width    float64 `json:"width"`
}

// Snapshot is the flat per-frame state a renderer draws from.
type Snapshot struct {
	Scene             string             `json:"scene"`
	Time              float64            `json:"time"`
	Phase             string             `json:"phase"`
	Progress          float64            `json:"progress"`
	Position          float64            `json:"position"`
	Velocity          float64            `json:"velocity"`
	Acceleration      float64            `json:"acceleration"`
	ApparentWeight    float64            `json:"apparentWeight"`
	GForce            float64            `json:"gForce"`
	WeightState       string             `json:"weightState"`
	CollisionProgress float64            `json:"collisionProgress"`
	Bodies            []Body             `json:"bodies,omitempty"`
	Quantities        map[string]float64 `json:"quantities,omitempty"`
}

// Clone returns a deep copy so renderers can keep snapshots across frames.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Bodies != nil {
		c.Bodies = make([]Body, len(s.Bodies))
		copy(c.Bodies, s.Bodies)
	}
	if s.Quantities != nil {
		c.Quantities = make(map[string]float64, len(s.Quantities))
		for k, v := range s.Quantities {
			c.Quantities[k] = v
		}
	}
	return c
}

// IsValid reports whether every numeric field is finite.
func (s Snapshot) IsValid() bool {
	vals := []float64{s.Time, s.Progress, s.Position, s.Velocity, s.Acceleration,
		s.ApparentWeight, s.GForce, s.CollisionProgress}
	for _, b := range s.Bodies {
		vals = append(vals, b.X, b.Y, b.Velocity)
	}
	for _, v := range s.Quantities {
		vals = append(vals, v)
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Quantity returns a named scalar, falling back to the fixed fields.
func (s Snapshot) Quantity(name string) (float64, bool) {
	switch name {
	case "position":
		return s.Position, true
	case "velocity":
		return s.Velocity, true
	case "acceleration":
		return s.Acceleration, true
	case "apparent_weight":
		return s.ApparentWeight, true
	case "gforce":
		return s.GForce, true
	case "progress":
		return s.Progress, true
	case "collision_progress":
		return s.CollisionProgress, true
	}
	v, ok := s.Quantities[name]
	return v, ok
}

// Configurable exposes scenario parameters to input collaborators.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Scene is a tick orchestrator for one demonstration.
//
// Tick is called by the animation loop. A zero delta means "snap to total"
// and must be idempotent: calling it twice with the same total leaves the
// scene in the same state.
type Scene interface {
	Configurable
	Name() string
	Duration() float64
	Tick(delta, total float64) bool
	Snapshot() Snapshot
}
