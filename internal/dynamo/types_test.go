package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func TestFloor(t *testing.T) {
	tests := []struct {
		name     string
		v, min   float64
		expected float64
	}{
		{"above", 2, 1, 2},
		{"equal", 1, 1, 1},
		{"below", 0, 1, 1},
		{"negative", -5, Epsilon, Epsilon},
		{"nan", math.NaN(), 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Floor(tt.v, tt.min); got != tt.expected {
				t.Errorf("Floor(%v, %v) = %v, want %v", tt.v, tt.min, got, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp above = %v", got)
	}
	if got := Clamp(-0.2, 0, 1); got != 0 {
		t.Errorf("Clamp below = %v", got)
	}
	if got := Clamp(0.3, 0, 1); got != 0.3 {
		t.Errorf("Clamp inside = %v", got)
	}
	if got := Clamp(math.NaN(), 0, 1); got != 0 {
		t.Errorf("Clamp NaN = %v", got)
	}
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := Snapshot{
		Bodies:     []Body{{Label: "a", X: 1}},
		Quantities: map[string]float64{"force": 10},
	}
	c := s.Clone()
	c.Bodies[0].X = 99
	c.Quantities["force"] = -1

	if s.Bodies[0].X != 1 {
		t.Error("Clone shares bodies slice")
	}
	if s.Quantities["force"] != 10 {
		t.Error("Clone shares quantities map")
	}
}

func TestSnapshot_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		snap  Snapshot
		valid bool
	}{
		{"zero", Snapshot{}, true},
		{"nan velocity", Snapshot{Velocity: math.NaN()}, false},
		{"inf body", Snapshot{Bodies: []Body{{X: math.Inf(1)}}}, false},
		{"nan quantity", Snapshot{Quantities: map[string]float64{"q": math.NaN()}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestSnapshot_Quantity(t *testing.T) {
	s := Snapshot{GForce: 1.5, Quantities: map[string]float64{"impulse": 3}}

	if v, ok := s.Quantity("gforce"); !ok || v != 1.5 {
		t.Errorf("gforce = %v, %v", v, ok)
	}
	if v, ok := s.Quantity("impulse"); !ok || v != 3 {
		t.Errorf("impulse = %v, %v", v, ok)
	}
	if _, ok := s.Quantity("missing"); ok {
		t.Error("expected missing quantity to report false")
	}
}

func TestParamError(t *testing.T) {
	err := &ParamError{Scene: "elevator", Name: "accel", Value: -1, Wrapped: ErrParameterBounds}
	if !errors.Is(err, ErrParameterBounds) {
		t.Error("ParamError does not unwrap to its cause")
	}
	expected := "elevator.accel=-1: dynamo: parameter out of valid bounds"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error"}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		seen := make([]int32, n)
		ParallelFor(n, 4, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}
