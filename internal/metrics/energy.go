package metrics

import (
	"math"

	"github.com/san-kum/kinelab/internal/dynamo"
)

// EnergyLoss is the fraction of the first observed energy missing at the
// last observation. A gain reads as a negative loss.
type EnergyLoss struct {
	name     string
	quantity string
	initial  float64
	current  float64
	samples  int
}

func NewEnergyLoss(quantity string) *EnergyLoss {
	return &EnergyLoss{
		name:     "energy_loss",
		quantity: quantity,
	}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(s dynamo.Snapshot) {
	v, ok := s.Quantity(e.quantity)
	if !ok {
		return
	}
	if e.samples == 0 {
		e.initial = v
	}
	e.current = v
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.samples == 0 || e.initial == 0 {
		return 0
	}
	return (e.initial - e.current) / math.Abs(e.initial)
}

func (e *EnergyLoss) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}

// MomentumDrift is the largest relative departure of a conserved quantity
// from its first observed value. When that value is zero the absolute
// departure is reported instead.
type MomentumDrift struct {
	name     string
	quantity string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift(quantity string) *MomentumDrift {
	return &MomentumDrift{
		name:     "momentum_drift",
		quantity: quantity,
	}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s dynamo.Snapshot) {
	v, ok := s.Quantity(m.quantity)
	if !ok {
		return
	}
	if m.samples == 0 {
		m.initial = v
	}
	m.samples++

	drift := math.Abs(v - m.initial)
	if math.Abs(m.initial) > dynamo.Epsilon {
		drift /= math.Abs(m.initial)
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
