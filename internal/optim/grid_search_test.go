package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/experiment"
)

func bounceBuilder(reg *experiment.Registry) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		scene, err := reg.GetScene("bounce")
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Scene: "bounce", Params: params, FPS: 120})
		if err := exp.Setup(scene, reg.DefaultMetrics("bounce")); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Linspace = %v, want %v", got, want)
		}
	}
	if one := Linspace(3, 9, 1); len(one) != 1 || one[0] != 3 {
		t.Errorf("single point should be lo, got %v", one)
	}
}

func TestPointsOrder(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("expected 6 points, got %d", len(pts))
	}
	if pts[0]["a"] != 1 || pts[0]["b"] != 10 || pts[1]["b"] != 20 || pts[3]["a"] != 2 {
		t.Errorf("unexpected order %v", pts)
	}
}

func TestSweepMismatchedGrid(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1}})
	if _, err := g.Sweep(context.Background(), nil); err == nil {
		t.Error("expected an error for mismatched names and ranges")
	}
}

func TestSearchFewestBounces(t *testing.T) {
	reg := experiment.NewRegistry()
	g := NewGridSearch([]string{"restitution"}, [][]float64{{0.3, 0.6, 0.9}})

	best, val, err := g.Search(context.Background(), bounceBuilder(reg), "peak_bounces")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["restitution"] != 0.3 {
		t.Errorf("expected restitution 0.3 to settle first, got %v (%f)", best, val)
	}
	if val != 3 {
		t.Errorf("expected 3 bounces, got %f", val)
	}
}

func TestSweepReportsBuildErrors(t *testing.T) {
	reg := experiment.NewRegistry()
	g := NewGridSearch([]string{"spin"}, [][]float64{{1, 2}})

	points, err := g.Sweep(context.Background(), bounceBuilder(reg))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	for _, p := range points {
		if !errors.Is(p.Err, dynamo.ErrUnknownParam) {
			t.Errorf("expected ErrUnknownParam, got %v", p.Err)
		}
	}
	if ranked := Rank(points, "peak_bounces"); len(ranked) != 0 {
		t.Errorf("failed points must not rank, got %d", len(ranked))
	}
}

func TestRank(t *testing.T) {
	points := []Point{
		{Params: map[string]float64{"x": 1}, Metrics: map[string]float64{"m": 3}},
		{Params: map[string]float64{"x": 2}, Metrics: map[string]float64{"m": 1}},
		{Params: map[string]float64{"x": 3}, Err: errors.New("boom")},
		{Params: map[string]float64{"x": 4}, Metrics: map[string]float64{"m": 2}},
	}
	ranked := Rank(points, "m")
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked points, got %d", len(ranked))
	}
	if ranked[0].Params["x"] != 2 || ranked[2].Params["x"] != 1 {
		t.Errorf("unexpected order %+v", ranked)
	}
}
