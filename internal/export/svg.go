// Package export writes scene frames and recorded traces as SVG.
package export

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/viz"
)

// Point is one vertex of a path in world or plot units.
type Point struct {
	X, Y float64
}

// Palette colours successive paths.
var Palette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff8844"}

// CanvasSVG writes a braille canvas as one circle per lit sub-pixel.
func CanvasSVG(w io.Writer, canvas *viz.Canvas, scale float64) error {
	if canvas == nil {
		return fmt.Errorf("export: nil canvas")
	}
	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for py := 0; py < canvas.PixelHeight(); py++ {
		for px := 0; px < canvas.PixelWidth(); px++ {
			if !canvas.Lit(px, py) {
				continue
			}
			fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(px)*scale+scale/2, float64(py)*scale+scale/2, dotRadius)
		}
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// PathsSVG writes each series as a polyline. All paths share one scale so
// they can be compared directly. Series with fewer than two points are
// skipped.
func PathsSVG(w io.Writer, series [][]Point, width, height int) error {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	n := 0
	for _, pts := range series {
		for _, p := range pts {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			n++
		}
	}
	if n < 2 {
		return fmt.Errorf("export: need at least two points, got %d", n)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, pts := range series {
		if len(pts) < 2 {
			continue
		}
		fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, Palette[i%len(Palette)])
		for j, p := range pts {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			}
		}
		bw.WriteString("\"/>\n")
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// Series extracts quantity against time.
func Series(snaps []dynamo.Snapshot, quantity string) []Point {
	pts := make([]Point, 0, len(snaps))
	for _, s := range snaps {
		if v, ok := s.Quantity(quantity); ok {
			pts = append(pts, Point{X: s.Time, Y: v})
		}
	}
	return pts
}

// BodyPaths returns the world path of every body, in snapshot body order.
func BodyPaths(snaps []dynamo.Snapshot) [][]Point {
	var paths [][]Point
	for _, s := range snaps {
		for i, b := range s.Bodies {
			for len(paths) <= i {
				paths = append(paths, nil)
			}
			paths[i] = append(paths[i], Point{X: b.X, Y: b.Y})
		}
	}
	return paths
}
