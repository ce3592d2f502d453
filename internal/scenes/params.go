package scenes

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/kinelab/internal/dynamo"
)

// ParamSpec describes one slider.
type ParamSpec struct {
	Name    string
	Label   string
	Unit    string
	Default float64
	Min     float64
	Max     float64
	// Step is the increment of a discrete selector; zero means continuous.
	Step float64
}

// Increment is the slider nudge: Step, or a twentieth of the range.
func (s ParamSpec) Increment() float64 {
	if s.Step > 0 {
		return s.Step
	}
	return (s.Max - s.Min) / 20
}

type params struct {
	scene  string
	specs  map[string]ParamSpec
	order  []string
	values map[string]float64
}

func newParams(scene string, specs ...ParamSpec) params {
	p := params{
		scene:  scene,
		specs:  make(map[string]ParamSpec, len(specs)),
		values: make(map[string]float64, len(specs)),
	}
	for _, s := range specs {
		p.specs[s.Name] = s
		p.order = append(p.order, s.Name)
		p.values[s.Name] = s.Default
	}
	return p
}

func (p *params) get(name string) float64 { return p.values[name] }

// GetParams returns a copy of the current values.
func (p *params) GetParams() map[string]float64 {
	out := make(map[string]float64, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Specs lists the sliders in declaration order.
func (p *params) Specs() []ParamSpec {
	out := make([]ParamSpec, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.specs[name])
	}
	return out
}

// set clamps value into the slider range. Only unknown names fail.
func (p *params) set(name string, value float64) error {
	spec, ok := p.specs[name]
	if !ok {
		return &dynamo.ParamError{Scene: p.scene, Name: name, Value: value, Wrapped: dynamo.ErrUnknownParam}
	}
	if math.IsNaN(value) {
		value = spec.Default
	}
	p.values[name] = dynamo.Clamp(value, spec.Min, spec.Max)
	return nil
}

// Describer is implemented by scenes that publish slider metadata.
type Describer interface {
	Specs() []ParamSpec
}

// Locker is implemented by scenes that hold some sliders at a value implied
// by another slider.
type Locker interface {
	Locked(name string) bool
}

// FormatParams renders values as "a=1 b=2" in name order.
func FormatParams(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%g", k, values[k])
	}
	return b.String()
}
