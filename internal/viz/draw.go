package viz

import (
	"math"

	"github.com/san-kum/kinelab/internal/dynamo"
)

const boundSamples = 120

type bounds struct {
	minX, maxX, minY, maxY float64
}

func emptyBounds() bounds {
	return bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
}

func (b *bounds) add(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

func (b *bounds) addBody(body dynamo.Body) {
	b.add(body.X-body.Width/2, body.Y)
	b.add(body.X+body.Width/2, body.Y+body.Width)
}

// sceneBounds samples the whole run and returns the box every body stays
// inside. The scene is snapped back to resume afterwards.
func sceneBounds(scene dynamo.Scene, resume float64) bounds {
	b := emptyBounds()
	b.add(0, 0)
	d := scene.Duration()
	for i := 0; i <= boundSamples; i++ {
		scene.Tick(0, d*float64(i)/boundSamples)
		for _, body := range scene.Snapshot().Bodies {
			b.addBody(body)
		}
	}
	scene.Tick(0, resume)

	p := scene.GetParams()
	switch scene.Name() {
	case "loop":
		r := p["radius"]
		b.add(-r, 0)
		b.add(r, 2*r)
	case "river":
		b.add(0, p["width"])
	}
	return b
}

// drawScene renders the snapshot bodies plus the fixed scenery for its scene.
func drawScene(c *Canvas, v Viewport, b bounds, params map[string]float64, s dynamo.Snapshot) {
	c.Clear()

	switch s.Scene {
	case "loop":
		r := params["radius"]
		cx, cy := v.ToPixel(0, r)
		c.DrawCircle(cx, cy, v.Length(r))
		drawHLine(c, v, b, 0)
	case "river":
		drawHLine(c, v, b, 0)
		drawHLine(c, v, b, params["width"])
	case "elevator":
		x0, _ := v.ToPixel(-1.5, 0)
		x1, _ := v.ToPixel(1.5, 0)
		_, top := v.ToPixel(0, b.maxY)
		_, bottom := v.ToPixel(0, b.minY)
		c.DrawLine(x0, top, x0, bottom)
		c.DrawLine(x1, top, x1, bottom)
	default:
		drawHLine(c, v, b, 0)
	}

	for _, body := range s.Bodies {
		x0, y0 := v.ToPixel(body.X-body.Width/2, body.Y)
		x1, y1 := v.ToPixel(body.X+body.Width/2, body.Y+body.Width)
		if x1-x0 < 2 {
			cx, cy := v.ToPixel(body.X, body.Y)
			c.DrawCircle(cx, cy, 1)
			continue
		}
		c.DrawRect(x0, y0, x1, y1)
	}
}

func drawHLine(c *Canvas, v Viewport, b bounds, y float64) {
	x0, py := v.ToPixel(b.minX, y)
	x1, _ := v.ToPixel(b.maxX, y)
	c.DrawLine(x0, py, x1, py)
}

// Frame draws scene at time t on a fresh w x h cell canvas. The scene is
// left snapped to t.
func Frame(scene dynamo.Scene, t float64, w, h int) *Canvas {
	c := NewCanvas(w, h)
	b := sceneBounds(scene, t)
	v := FitViewport(b.minX, b.maxX, b.minY, b.maxY, c.PixelWidth(), c.PixelHeight(), 0.08)
	drawScene(c, v, b, scene.GetParams(), scene.Snapshot())
	return c
}
