package scenes

import "testing"

func TestRelative_Meeting(t *testing.T) {
	r := NewRelative()
	a, ok := r.Meeting()
	if !ok {
		t.Fatal("head-on cars should meet")
	}
	// 116 m of gap closed at 30 m/s
	if want := 116.0 / 30; !near(a.Time, want) {
		t.Errorf("meet time = %g, want %g", a.Time, want)
	}

	tests := []struct {
		at    float64
		phase string
	}{
		{1, RelativeClosing},
		{a.Time + 0.1, RelativePassing},
		{a.Time + 1, RelativePassed},
	}
	for _, tt := range tests {
		r.Tick(0, tt.at)
		if got := r.Snapshot().Phase; got != tt.phase {
			t.Errorf("t=%g phase = %q, want %q", tt.at, got, tt.phase)
		}
	}
}

func TestRelative_FrameShift(t *testing.T) {
	r := NewRelative()
	if err := r.SetParam("frame", 1); err != nil {
		t.Fatal(err)
	}
	r.Tick(0, 2)
	s := r.Snapshot()
	if a := s.Bodies[0]; !near(a.X, 0) || !near(a.Velocity, 0) {
		t.Errorf("observer car at x=%g v=%g, want at rest at the origin", a.X, a.Velocity)
	}
	if b := s.Bodies[1]; !near(b.Velocity, -30) {
		t.Errorf("other car velocity = %g, want -30", b.Velocity)
	}
	if !near(s.Quantities["relative_velocity"], -30) {
		t.Errorf("relative_velocity = %g", s.Quantities["relative_velocity"])
	}
}

func TestRelative_NeverMeetOmitsMeeting(t *testing.T) {
	r := NewRelative()
	if err := r.SetParam("u2", 20); err != nil {
		t.Fatal(err)
	}
	r.Tick(0, 1)
	s := r.Snapshot()
	if s.Phase != RelativeNeverMeet {
		t.Errorf("phase = %q", s.Phase)
	}
	if _, ok := s.Quantities["meet_time"]; ok {
		t.Error("meet_time reported for cars that never meet")
	}
	if r.Duration() != relativeNoMeet {
		t.Errorf("Duration = %g", r.Duration())
	}
}

func TestRelative_OverlappingCarsMovingApart(t *testing.T) {
	r := NewRelative()
	for name, v := range map[string]float64{"x1": 0, "x2": 2, "u1": -10, "u2": 10} {
		if err := r.SetParam(name, v); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := r.Meeting(); ok {
		t.Fatal("cars moving apart reported a meeting")
	}
	r.Tick(0, 0.5)
	s := r.Snapshot()
	if s.Phase != RelativeNeverMeet {
		t.Errorf("phase = %q, want never_meet", s.Phase)
	}
	if _, ok := s.Quantities["meet_time"]; ok {
		t.Error("meet_time reported for cars moving apart")
	}
}
