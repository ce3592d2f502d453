package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a grid of braille cells, each holding 2x4 sub-pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelWidth is the canvas width in sub-pixels.
func (c *Canvas) PixelWidth() int { return c.Width * 2 }

// PixelHeight is the canvas height in sub-pixels.
func (c *Canvas) PixelHeight() int { return c.Height * 4 }

// Set lights the sub-pixel (x, y); y grows downwards. Out-of-range pixels
// are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRect outlines the box spanned by two corners.
func (c *Canvas) DrawRect(x0, y0, x1, y1 int) {
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

// DrawCircle draws a circle outline with the midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	x, y := r, 0
	err := 1 - r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps world metres onto canvas sub-pixels with one uniform scale,
// y up in the world and down on screen.
type Viewport struct {
	MinX, MinY float64
	Scale      float64
	OffX, OffY int
	PixelH     int
}

// FitViewport centres the world box on a canvas of pw x ph sub-pixels,
// leaving a margin of pad (a fraction of the span) on every side.
func FitViewport(minX, maxX, minY, maxY float64, pw, ph int, pad float64) Viewport {
	spanX := math.Max(maxX-minX, 1)
	spanY := math.Max(maxY-minY, 1)
	minX -= spanX * pad
	minY -= spanY * pad
	spanX *= 1 + 2*pad
	spanY *= 1 + 2*pad

	scale := math.Min(float64(pw-1)/spanX, float64(ph-1)/spanY)
	return Viewport{
		MinX:   minX,
		MinY:   minY,
		Scale:  scale,
		OffX:   int((float64(pw-1) - spanX*scale) / 2),
		OffY:   int((float64(ph-1) - spanY*scale) / 2),
		PixelH: ph,
	}
}

// ToPixel maps a world point to a sub-pixel.
func (v Viewport) ToPixel(x, y float64) (int, int) {
	px := v.OffX + int(math.Round((x-v.MinX)*v.Scale))
	py := v.PixelH - 1 - v.OffY - int(math.Round((y-v.MinY)*v.Scale))
	return px, py
}

// ToWorld is the inverse of ToPixel, up to rounding.
func (v Viewport) ToWorld(px, py int) (float64, float64) {
	x := float64(px-v.OffX)/v.Scale + v.MinX
	y := float64(v.PixelH-1-v.OffY-py)/v.Scale + v.MinY
	return x, y
}

// Length converts a world distance to sub-pixels.
func (v Viewport) Length(d float64) int {
	return int(math.Round(d * v.Scale))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Lit reports whether the sub-pixel (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}
