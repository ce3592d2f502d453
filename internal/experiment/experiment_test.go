package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kinelab/internal/dynamo"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	want := []string{"bounce", "collision", "elevator", "freefall", "loop", "relative", "river"}
	got := reg.ListScenes()
	if len(got) != len(want) {
		t.Fatalf("ListScenes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListScenes = %v, want %v", got, want)
		}
		scene, err := reg.GetScene(want[i])
		if err != nil {
			t.Fatalf("GetScene(%s): %v", want[i], err)
		}
		if scene.Name() != want[i] {
			t.Errorf("GetScene(%s).Name() = %s", want[i], scene.Name())
		}
		if len(reg.DefaultMetrics(want[i])) == 0 {
			t.Errorf("%s has no default metrics", want[i])
		}
	}

	if _, err := reg.GetScene("trampoline"); !errors.Is(err, dynamo.ErrUnknownScene) {
		t.Errorf("unknown scene error = %v", err)
	}
}

func TestRegistry_FreshScenes(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.GetScene("bounce")
	if err := a.SetParam("height", 12); err != nil {
		t.Fatal(err)
	}
	b, _ := reg.GetScene("bounce")
	if b.GetParams()["height"] == 12 {
		t.Error("GetScene returned a shared instance")
	}
}

func TestRunScene_Elevator(t *testing.T) {
	res, err := RunScene(context.Background(), NewRegistry(), Config{Scene: "elevator", FPS: 50})
	if err != nil {
		t.Fatalf("RunScene: %v", err)
	}
	if len(res.Snapshots) == 0 || res.Frames == 0 {
		t.Fatalf("empty run: %d snapshots, %d frames", len(res.Snapshots), res.Frames)
	}
	last := res.Snapshots[len(res.Snapshots)-1]
	if math.Abs(last.Time-res.Duration) > 1e-9 {
		t.Errorf("last snapshot at %v, want %v", last.Time, res.Duration)
	}
	if last.Phase != "stopped" {
		t.Errorf("final phase = %s, want stopped", last.Phase)
	}
	if peak := res.Metrics["peak_gforce"]; peak <= 1 {
		t.Errorf("peak_gforce = %v, want > 1", peak)
	}

	times := res.Times()
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			t.Fatalf("time went backwards at %d: %v -> %v", i, times[i-1], times[i])
		}
	}
	if v := res.Series("velocity"); len(v) != len(times) {
		t.Errorf("series length %d, want %d", len(v), len(times))
	}
}

func TestRunScene_Until(t *testing.T) {
	res, err := RunScene(context.Background(), NewRegistry(), Config{Scene: "freefall", Until: 0.5})
	if err != nil {
		t.Fatalf("RunScene: %v", err)
	}
	last := res.Snapshots[len(res.Snapshots)-1]
	if math.Abs(last.Time-0.5) > 1e-9 {
		t.Errorf("run stopped at %v, want 0.5", last.Time)
	}
}

func TestSetup_UnknownParam(t *testing.T) {
	reg := NewRegistry()
	scene, _ := reg.GetScene("elevator")
	exp := New(Config{Scene: "elevator", Params: map[string]float64{"warp": 9}})
	err := exp.Setup(scene, nil)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("Setup error = %v, want ErrUnknownParam", err)
	}
}

func TestRun_NotSetup(t *testing.T) {
	if _, err := New(Config{}).Run(context.Background()); err == nil {
		t.Error("Run without Setup should fail")
	}
}

func TestRun_Cancelled(t *testing.T) {
	reg := NewRegistry()
	scene, _ := reg.GetScene("elevator")
	exp := New(Config{Scene: "elevator"})
	if err := exp.Setup(scene, nil); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := exp.Run(ctx)
	var simErr dynamo.SimError
	if !errors.As(err, &simErr) || !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want SimError wrapping context.Canceled", err)
	}
}
