package scenes

import "testing"

func TestElevator_Phases(t *testing.T) {
	e := NewElevator()
	if got := e.Duration(); !near(got, 9) {
		t.Fatalf("Duration = %g, want 9", got)
	}

	tests := []struct {
		at     float64
		phase  string
		gforce float64
		state  string
	}{
		{0.5, "at_rest", 1, "normal"},
		{2, "speeding_up", (9.8 + 2) / 9.8, "heavier"},
		{4, "cruising", 1, "normal"},
		{7, "slowing_down", (9.8 - 2) / 9.8, "lighter"},
		{8.5, "stopped", 1, "normal"},
	}
	for _, tt := range tests {
		e.Tick(0, tt.at)
		s := e.Snapshot()
		if s.Phase != tt.phase {
			t.Errorf("t=%g phase = %q, want %q", tt.at, s.Phase, tt.phase)
		}
		if !near(s.GForce, tt.gforce) {
			t.Errorf("t=%g gforce = %g, want %g", tt.at, s.GForce, tt.gforce)
		}
		if s.WeightState != tt.state {
			t.Errorf("t=%g weight state = %q, want %q", tt.at, s.WeightState, tt.state)
		}
	}
}

func TestElevator_ReturnsToRest(t *testing.T) {
	e := NewElevator()
	e.Tick(0, e.Duration())
	s := e.Snapshot()
	if !near(s.Velocity, 0) {
		t.Errorf("final velocity = %g", s.Velocity)
	}
	// 2 m/s² for 2 s, cruise 3 s at 4 m/s, brake 2 s: 4 + 12 + 4
	if !near(s.Position, 20) {
		t.Errorf("final position = %g, want 20", s.Position)
	}
}

func TestElevator_StoppedMeansAtRest(t *testing.T) {
	for _, ramps := range [][2]float64{{2, 0.5}, {0.5, 2}, {3, 3}, {1, 7}} {
		e := NewElevator()
		if err := e.SetParam("accel_time", ramps[0]); err != nil {
			t.Fatal(err)
		}
		if err := e.SetParam("decel_time", ramps[1]); err != nil {
			t.Fatal(err)
		}
		e.Tick(0, e.Duration())
		s := e.Snapshot()
		if s.Phase != "stopped" {
			t.Errorf("ramps %v: phase = %q, want stopped", ramps, s.Phase)
		}
		if !near(s.Velocity, 0) {
			t.Errorf("ramps %v: stopped car moving at %g m/s", ramps, s.Velocity)
		}
		if s.WeightState != "normal" {
			t.Errorf("ramps %v: weight state %q at rest", ramps, s.WeightState)
		}
	}
}

func TestElevator_DownIsMirrored(t *testing.T) {
	up, down := NewElevator(), NewElevator()
	if err := down.SetParam("direction", 1); err != nil {
		t.Fatal(err)
	}
	up.Tick(0, 5)
	down.Tick(0, 5)
	if !near(up.Snapshot().Position, -down.Snapshot().Position) {
		t.Errorf("up %g, down %g", up.Snapshot().Position, down.Snapshot().Position)
	}
	down.Tick(0, 2)
	if down.Snapshot().WeightState != "lighter" {
		t.Errorf("accelerating down should feel lighter, got %q", down.Snapshot().WeightState)
	}
}

func TestElevator_SetParamRebuilds(t *testing.T) {
	e := NewElevator()
	if err := e.SetParam("cruise_time", 10); err != nil {
		t.Fatal(err)
	}
	if got := e.Duration(); !near(got, 16) {
		t.Errorf("Duration = %g, want 16", got)
	}
}
