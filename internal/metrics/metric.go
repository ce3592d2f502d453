// Package metrics reduces a run's snapshots to scalar figures.
package metrics

import "github.com/san-kum/kinelab/internal/dynamo"

// Metric observes every snapshot of a run.
type Metric interface {
	Name() string
	Observe(s dynamo.Snapshot)
	Value() float64
	Reset()
}
