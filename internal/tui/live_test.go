package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/kinelab/internal/dynamo"
)

func snap(t float64) dynamo.Snapshot {
	return dynamo.Snapshot{
		Scene: "bounce",
		Time:  t,
		Phase: "falling",
		Bodies: []dynamo.Body{
			{Label: "ball", Y: 2 - t, Width: 0.2},
		},
	}
}

func TestRenderThrottlesBySimTime(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 10)

	r.Render(snap(0))
	r.Render(snap(0.05))
	r.Render(snap(0.1))
	if got := strings.Count(buf.String(), clearScreen); got != 2 {
		t.Errorf("frames drawn = %d, want 2", got)
	}

	// seeking backwards always redraws
	r.Render(snap(0.02))
	if got := strings.Count(buf.String(), clearScreen); got != 3 {
		t.Errorf("frames drawn after seek = %d, want 3", got)
	}
}

func TestRenderContents(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 30)
	r.Render(snap(0.5))
	out := buf.String()
	for _, want := range []string{"bounce", "t=0.50s", "falling", "B", "="} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q", want)
		}
	}
}
