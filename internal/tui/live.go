// Package tui prints plain ANSI frames for non-interactive watching.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/kinelab/internal/dynamo"
)

const (
	width       = 70
	height      = 16
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws snapshots as character frames. Its Render method is a
// session.RenderFunc.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastTime  float64
	drawn     bool
	canvas    [][]rune
	minX      float64
	maxX      float64
	minY      float64
	maxY      float64
	trail     []struct{ x, y int }
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:       out,
		frameRate: frameRate,
		canvas:    canvas,
		minX:      -1, maxX: 1, minY: 0, maxY: 1,
		trail: make([]struct{ x, y int }, 0, 50),
	}
}

// Render draws s unless less than one frame of simulation time has passed
// since the previous drawing. A jump backwards always redraws.
func (r *LiveRenderer) Render(s dynamo.Snapshot) {
	dt := s.Time - r.lastTime
	if r.drawn && dt >= 0 && dt < 1/float64(r.frameRate) {
		return
	}
	if dt < 0 {
		r.trail = r.trail[:0]
	}
	r.lastTime, r.drawn = s.Time, true

	r.clear()
	r.grow(s.Bodies)
	r.drawGround()
	for _, b := range s.Bodies {
		x, y := r.cell(b.X, b.Y)
		r.trail = append(r.trail, struct{ x, y int }{x, y})
	}
	if len(r.trail) > 40 {
		r.trail = r.trail[len(r.trail)-40:]
	}
	for _, pt := range r.trail {
		r.set(pt.x, pt.y, '.')
	}
	for _, b := range s.Bodies {
		r.drawBody(b)
	}
	r.render(s)
}

// grow widens the world box so every body seen so far stays on screen.
func (r *LiveRenderer) grow(bodies []dynamo.Body) {
	for _, b := range bodies {
		r.minX = math.Min(r.minX, b.X-b.Width/2)
		r.maxX = math.Max(r.maxX, b.X+b.Width/2)
		r.minY = math.Min(r.minY, b.Y)
		r.maxY = math.Max(r.maxY, b.Y+b.Width)
	}
}

func (r *LiveRenderer) cell(x, y float64) (int, int) {
	cx := int(math.Round((x - r.minX) / (r.maxX - r.minX) * float64(width-3)))
	cy := height - 2 - int(math.Round((y-r.minY)/(r.maxY-r.minY)*float64(height-3)))
	return cx + 1, cy
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) drawGround() {
	if r.minY > 0 {
		return
	}
	_, gy := r.cell(0, 0)
	r.line(0, gy+1, width-1, gy+1, '=')
}

func (r *LiveRenderer) drawBody(b dynamo.Body) {
	x0, y0 := r.cell(b.X-b.Width/2, b.Y+b.Width)
	x1, y1 := r.cell(b.X+b.Width/2, b.Y)
	mark := 'O'
	if b.Label != "" {
		mark = []rune(strings.ToUpper(b.Label))[0]
	}
	if x1-x0 < 2 && y1-y0 < 1 {
		r.set(x0, y1, mark)
		return
	}
	for y := y0; y <= y1; y++ {
		r.line(x0, y, x1, y, '#')
	}
	r.set((x0+x1)/2, (y0+y1)/2, mark)
}

func (r *LiveRenderer) render(s dynamo.Snapshot) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs  %s\n", s.Scene, s.Time, s.Phase))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  x=%.2fm v=%.2fm/s a=%.2fm/s²  %.2fg %s\n",
		s.Position, s.Velocity, s.Acceleration, s.GForce, s.WeightState))
	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
