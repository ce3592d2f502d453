package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/metrics"
	"github.com/san-kum/kinelab/internal/scenes"
)

type Registry struct {
	scenes map[string]func() dynamo.Scene
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]func() dynamo.Scene)}

	r.scenes["elevator"] = func() dynamo.Scene { return scenes.NewElevator() }
	r.scenes["freefall"] = func() dynamo.Scene { return scenes.NewFreeFall() }
	r.scenes["bounce"] = func() dynamo.Scene { return scenes.NewBounce() }
	r.scenes["collision"] = func() dynamo.Scene { return scenes.NewCollision() }
	r.scenes["loop"] = func() dynamo.Scene { return scenes.NewLoop() }
	r.scenes["relative"] = func() dynamo.Scene { return scenes.NewRelative() }
	r.scenes["river"] = func() dynamo.Scene { return scenes.NewRiver() }

	return r
}

// GetScene builds a fresh scene at t=0 with default parameters.
func (r *Registry) GetScene(name string) (dynamo.Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownScene, name)
	}
	return fn(), nil
}

// ListScenes returns the registered names in sorted order.
func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics picks the observers worth reporting for a scene.
func (r *Registry) DefaultMetrics(scene string) []metrics.Metric {
	switch scene {
	case "elevator", "freefall", "loop":
		return []metrics.Metric{
			metrics.NewPeak("gforce"),
			metrics.NewPeak("apparent_weight"),
			metrics.NewMean("gforce"),
		}
	case "bounce":
		return []metrics.Metric{
			metrics.NewPeak("peak_force"),
			metrics.NewPeak("bounces"),
			metrics.NewEnergyLoss("mechanical_energy"),
		}
	case "collision":
		return []metrics.Metric{
			metrics.NewMomentumDrift("momentum"),
			metrics.NewEnergyLoss("kinetic_energy"),
			metrics.NewPeak("relative_speed"),
		}
	default:
		return []metrics.Metric{
			metrics.NewPeak("velocity"),
			metrics.NewMean("velocity"),
		}
	}
}
