package scenes

import "testing"

func TestRiver_Crossing(t *testing.T) {
	r := NewRiver()
	ct, ok := r.CrossingTime()
	if !ok || !near(ct, 15) {
		t.Fatalf("CrossingTime = %g, %v; want 15", ct, ok)
	}

	r.Tick(0, 7.5)
	s := r.Snapshot()
	if s.Phase != RiverCrossing {
		t.Errorf("phase = %q", s.Phase)
	}
	if !near(s.Quantities["y"], 30) || !near(s.Quantities["x"], 15) {
		t.Errorf("midway at (%g, %g), want (15, 30)", s.Quantities["x"], s.Quantities["y"])
	}

	r.Tick(0, r.Duration())
	s = r.Snapshot()
	if s.Phase != RiverLanded || s.Velocity != 0 {
		t.Errorf("phase %q velocity %g", s.Phase, s.Velocity)
	}
	if !near(s.Quantities["drift"], 30) {
		t.Errorf("drift = %g, want 30", s.Quantities["drift"])
	}
}

func TestRiver_ZeroDriftHeading(t *testing.T) {
	r := NewRiver()
	h, ok := r.ZeroDriftHeading()
	if !ok || !near(h, 30) {
		t.Fatalf("ZeroDriftHeading = %g, %v; want 30", h, ok)
	}
	if err := r.SetParam("heading", h); err != nil {
		t.Fatal(err)
	}
	r.Tick(0, r.Duration())
	if got := r.Snapshot().Quantities["drift"]; !near(got, 0) {
		t.Errorf("drift = %g, want 0", got)
	}
}

func TestRiver_CurrentTooStrong(t *testing.T) {
	r := NewRiver()
	if err := r.SetParam("current", 5); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.ZeroDriftHeading(); ok {
		t.Error("no heading beats a current faster than the boat")
	}
	if err := r.SetParam("heading", 89); err != nil {
		t.Fatal(err)
	}
	// 4 m/s at 89° upstream barely crosses; still lands eventually
	if _, ok := r.CrossingTime(); !ok {
		t.Error("boat with a cross-stream component should land")
	}
}
