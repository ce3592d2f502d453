package scenes

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/san-kum/kinelab/internal/dynamo"
)

const tol = 1e-9

func all() []dynamo.Scene {
	return []dynamo.Scene{
		NewElevator(), NewFreeFall(), NewBounce(), NewCollision(),
		NewLoop(), NewRelative(), NewRiver(),
	}
}

// play ticks s from zero to until in frames of dt, landing exactly on until.
func play(s dynamo.Scene, dt, until float64) dynamo.Snapshot {
	s.Tick(0, 0)
	t := 0.0
	for t < until {
		next := math.Min(t+dt, until)
		s.Tick(next-t, next)
		t = next
	}
	return s.Snapshot()
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestScenes_SeekMatchesPlayback(t *testing.T) {
	for _, s := range all() {
		t.Run(s.Name(), func(t *testing.T) {
			d := s.Duration()
			for _, at := range []float64{0, d / 7, d / 3, d / 2, 0.9 * d, d} {
				played := play(s, 1.0/60, at)
				s.Tick(0, at)
				seeked := s.Snapshot()
				if diff := cmp.Diff(played, seeked, approx); diff != "" {
					t.Errorf("t=%g seek differs from playback (-played +seeked):\n%s", at, diff)
				}
			}
		})
	}
}

func TestScenes_SnapIdempotent(t *testing.T) {
	for _, s := range all() {
		t.Run(s.Name(), func(t *testing.T) {
			at := s.Duration() * 0.6
			s.Tick(0, at)
			first := s.Snapshot()
			s.Tick(0, at)
			if diff := cmp.Diff(first, s.Snapshot(), approx); diff != "" {
				t.Errorf("second snap differs:\n%s", diff)
			}
		})
	}
}

func TestScenes_SnapshotsValid(t *testing.T) {
	for _, s := range all() {
		t.Run(s.Name(), func(t *testing.T) {
			d := s.Duration()
			if d <= 0 || math.IsInf(d, 0) || math.IsNaN(d) {
				t.Fatalf("Duration = %g", d)
			}
			for i := 0; i <= 100; i++ {
				at := d * float64(i) / 100
				s.Tick(0, at)
				snap := s.Snapshot()
				if !snap.IsValid() {
					t.Fatalf("invalid snapshot at t=%g: %+v", at, snap)
				}
				if snap.Scene != s.Name() {
					t.Errorf("Scene = %q", snap.Scene)
				}
				if snap.Phase == "" {
					t.Errorf("empty phase at t=%g", at)
				}
			}
		})
	}
}

func TestScenes_TickReportsEnd(t *testing.T) {
	for _, s := range all() {
		t.Run(s.Name(), func(t *testing.T) {
			if !s.Tick(0, 0) {
				t.Error("Tick at t=0 should want more frames")
			}
			if s.Tick(0, s.Duration()+1) {
				t.Error("Tick past the end should stop")
			}
		})
	}
}

func TestScenes_UnknownParam(t *testing.T) {
	for _, s := range all() {
		err := s.SetParam("no_such_param", 1)
		if !errors.Is(err, dynamo.ErrUnknownParam) {
			t.Errorf("%s: err = %v, want ErrUnknownParam", s.Name(), err)
		}
		var pe *dynamo.ParamError
		if !errors.As(err, &pe) || pe.Name != "no_such_param" {
			t.Errorf("%s: err = %#v, want *ParamError", s.Name(), err)
		}
	}
}

func TestScenes_SlidersClampAndDescribe(t *testing.T) {
	for _, s := range all() {
		d, ok := s.(Describer)
		if !ok {
			t.Fatalf("%s does not describe its sliders", s.Name())
		}
		specs := d.Specs()
		if len(specs) != len(s.GetParams()) {
			t.Errorf("%s: %d specs for %d params", s.Name(), len(specs), len(s.GetParams()))
		}
		for _, spec := range specs {
			if got := s.GetParams()[spec.Name]; got != spec.Default {
				t.Errorf("%s.%s = %g, want default %g", s.Name(), spec.Name, got, spec.Default)
			}
			if l, ok := s.(Locker); ok && l.Locked(spec.Name) {
				continue
			}
			if err := s.SetParam(spec.Name, spec.Max+1000); err != nil {
				t.Fatal(err)
			}
			if got := s.GetParams()[spec.Name]; got != spec.Max {
				t.Errorf("%s.%s not clamped to max: %g", s.Name(), spec.Name, got)
			}
			if err := s.SetParam(spec.Name, spec.Min-1000); err != nil {
				t.Fatal(err)
			}
			if got := s.GetParams()[spec.Name]; got != spec.Min {
				t.Errorf("%s.%s not clamped to min: %g", s.Name(), spec.Name, got)
			}
			if err := s.SetParam(spec.Name, spec.Default); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestParamSpec_Increment(t *testing.T) {
	tests := []struct {
		spec ParamSpec
		want float64
	}{
		{ParamSpec{Min: 0, Max: 20}, 1},
		{ParamSpec{Min: 0, Max: 1}, 0.05},
		{ParamSpec{Min: 0, Max: 3, Step: 1}, 1},
	}
	for _, tt := range tests {
		if got := tt.spec.Increment(); !near(got, tt.want) {
			t.Errorf("Increment(%+v) = %g, want %g", tt.spec, got, tt.want)
		}
	}
}

func TestFormatParams(t *testing.T) {
	got := FormatParams(map[string]float64{"b": 2, "a": 0.5})
	if got != "a=0.5 b=2" {
		t.Errorf("FormatParams = %q", got)
	}
}
