package timeline

// Builder appends phases back to back, so every timeline it produces is
// contiguous by construction.
type Builder struct {
	phases []Phase
	t      float64
	err    error
}

// NewBuilder starts an empty timeline at t=0.
func NewBuilder() *Builder {
	return &Builder{}
}

// Then appends a phase lasting duration seconds. Phases with a non-positive
// duration are skipped so that a slider at zero simply removes the stage.
func (b *Builder) Then(id PhaseID, label string, duration, accel float64, description string) *Builder {
	if !(duration > 0) {
		return b
	}
	end := b.t + duration
	b.phases = append(b.phases, Phase{
		ID:           id,
		Label:        label,
		Start:        b.t,
		End:          end,
		Acceleration: accel,
		Description:  description,
	})
	b.t = end
	return b
}

// Build validates and returns the timeline.
func (b *Builder) Build() (Timeline, error) {
	return New(b.phases...)
}
