package metrics

import (
	"math"

	"github.com/san-kum/kinelab/internal/dynamo"
)

// Peak tracks the largest absolute value of a quantity.
type Peak struct {
	name     string
	quantity string
	peak     float64
	at       float64
	samples  int
}

func NewPeak(quantity string) *Peak {
	return &Peak{
		name:     "peak_" + quantity,
		quantity: quantity,
	}
}

func (p *Peak) Name() string {
	return p.name
}

func (p *Peak) Observe(s dynamo.Snapshot) {
	v, ok := s.Quantity(p.quantity)
	if !ok {
		return
	}
	if p.samples == 0 || math.Abs(v) > p.peak {
		p.peak = math.Abs(v)
		p.at = s.Time
	}
	p.samples++
}

func (p *Peak) Value() float64 {
	return p.peak
}

// At is the simulation time of the peak.
func (p *Peak) At() float64 {
	return p.at
}

func (p *Peak) Reset() {
	p.peak = 0
	p.at = 0
	p.samples = 0
}
