package metrics

import (
	"github.com/san-kum/kinelab/internal/dynamo"
)

// Mean averages a quantity over the observed snapshots.
type Mean struct {
	name     string
	quantity string
	sum      float64
	samples  int
}

func NewMean(quantity string) *Mean {
	return &Mean{
		name:     "mean_" + quantity,
		quantity: quantity,
	}
}

func (m *Mean) Name() string {
	return m.name
}

func (m *Mean) Observe(s dynamo.Snapshot) {
	v, ok := s.Quantity(m.quantity)
	if !ok {
		return
	}
	m.sum += v
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}
