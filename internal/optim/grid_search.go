// Package optim sweeps scene parameters over a grid and ranks the points by
// one metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/experiment"
)

// Builder returns a ready-to-run experiment for one grid point.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Point is one evaluated grid combination.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
	Err     error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}

// Points expands the grid in row-major order, last parameter fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.expand(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.expand(depth+1, current, out)
	}
	delete(current, name)
}

// Sweep runs every grid point. Each point builds its own scene and loop, so
// points run in parallel; results keep grid order.
func (g *GridSearch) Sweep(ctx context.Context, build Builder) ([]Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("grid has %d names but %d ranges", len(g.paramNames), len(g.ranges))
	}

	grid := g.Points()
	points := make([]Point, len(grid))

	var mu sync.Mutex
	var firstErr error
	dynamo.ParallelFor(len(grid), 1, func(start, end int) {
		for i := start; i < end; i++ {
			points[i] = runPoint(ctx, build, grid[i])
			if err := ctx.Err(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
		}
	})
	return points, firstErr
}

func runPoint(ctx context.Context, build Builder, params map[string]float64) Point {
	p := Point{Params: params}
	exp, err := build(params)
	if err != nil {
		p.Err = err
		return p
	}
	result, err := exp.Run(ctx)
	if result != nil {
		p.Metrics = result.Metrics
	}
	p.Err = err
	return p
}

// Search sweeps the grid and returns the point minimising metricName.
// Failed points are skipped.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	points, err := g.Sweep(ctx, build)
	if err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		val, ok := p.Metrics[metricName]
		if !ok {
			continue
		}
		if val < best {
			best = val
			bestParams = p.Params
		}
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no grid point produced %q", metricName)
	}
	return bestParams, best, nil
}

// Rank sorts successful points by metricName, ascending.
func Rank(points []Point, metricName string) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Err == nil {
			if _, ok := p.Metrics[metricName]; ok {
				out = append(out, p)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Metrics[metricName] < out[j].Metrics[metricName]
	})
	return out
}
