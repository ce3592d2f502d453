package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/kinelab/internal/scenes"
)

func TestCanvasSetAndLit(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.PixelWidth() != 8 || c.PixelHeight() != 8 {
		t.Fatalf("pixel size = %dx%d, want 8x8", c.PixelWidth(), c.PixelHeight())
	}
	c.Set(3, 5)
	c.Set(-1, 0)
	c.Set(100, 100)
	if !c.Lit(3, 5) {
		t.Error("pixel (3,5) not lit")
	}
	if c.Lit(2, 5) {
		t.Error("pixel (2,5) lit")
	}
	c.Clear()
	if c.Lit(3, 5) {
		t.Error("pixel survived Clear")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if l != "⠀⠀⠀" {
			t.Errorf("blank row = %q", l)
		}
	}
}

func TestDrawRect(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawRect(2, 2, 8, 10)
	for _, p := range [][2]int{{2, 2}, {8, 2}, {8, 10}, {2, 10}, {5, 2}, {2, 6}} {
		if !c.Lit(p[0], p[1]) {
			t.Errorf("rect edge %v not lit", p)
		}
	}
	if c.Lit(5, 6) {
		t.Error("rect interior lit")
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := FitViewport(-5, 5, 0, 10, 120, 80, 0)
	tests := []struct{ x, y float64 }{{-5, 0}, {0, 5}, {5, 10}, {2.5, 7.5}}
	for _, tt := range tests {
		px, py := v.ToPixel(tt.x, tt.y)
		x, y := v.ToWorld(px, py)
		tol := 1 / v.Scale
		if abs(x-tt.x) > tol || abs(y-tt.y) > tol {
			t.Errorf("round trip (%g,%g) -> (%d,%d) -> (%g,%g)", tt.x, tt.y, px, py, x, y)
		}
	}
}

func TestViewportYUp(t *testing.T) {
	v := FitViewport(0, 10, 0, 10, 40, 40, 0.1)
	_, low := v.ToPixel(0, 0)
	_, high := v.ToPixel(0, 10)
	if high >= low {
		t.Errorf("y=10 at row %d should be above y=0 at row %d", high, low)
	}
}

func TestFrameDrawsBodies(t *testing.T) {
	scene := scenes.NewBounce()
	c := Frame(scene, 0, 30, 10)
	lit := 0
	for y := 0; y < c.PixelHeight(); y++ {
		for x := 0; x < c.PixelWidth(); x++ {
			if c.Lit(x, y) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("frame is blank")
	}
	if got := scene.Snapshot().Time; got != 0 {
		t.Errorf("scene left at t=%g, want 0", got)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
