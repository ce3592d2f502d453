package config

import "sort"

var Presets = map[string]map[string]*Config{
	"elevator": {
		"gentle": {
			Scene: "elevator", Speed: 1,
			Params: map[string]float64{"accel": 1, "accel_time": 3, "cruise_time": 4, "decel_time": 3},
		},
		"express": {
			Scene: "elevator", Speed: 1,
			Params: map[string]float64{"accel": 4, "accel_time": 2, "cruise_time": 2, "decel_time": 2},
		},
		"plunge": {
			Scene: "elevator", Speed: 1,
			Params: map[string]float64{"accel": 9.8, "direction": 1, "accel_time": 1, "cruise_time": 1, "decel_time": 1},
		},
	},
	"freefall": {
		"chair": {
			Scene: "freefall", Speed: 1,
			Params: map[string]float64{"height": 0.5, "impact_duration": 0.2},
		},
		"tower": {
			Scene: "freefall", Speed: 0.5,
			Params: map[string]float64{"height": 30, "impact_duration": 0.3},
		},
		"moon": {
			Scene: "freefall", Speed: 1,
			Params: map[string]float64{"gravity": 1.62, "height": 5},
		},
	},
	"bounce": {
		"superball": {
			Scene: "bounce", Speed: 1,
			Params: map[string]float64{"restitution": 0.9, "contact_time": 0.01},
		},
		"clay": {
			Scene: "bounce", Speed: 1,
			Params: map[string]float64{"restitution": 0.1, "contact_time": 0.2},
		},
	},
	"collision": {
		"elastic": {
			Scene: "collision", Speed: 1,
			Params: map[string]float64{"kind": 0, "m1": 1, "m2": 1, "u1": 2, "u2": 0},
		},
		"coupling": {
			Scene: "collision", Speed: 1,
			Params: map[string]float64{"kind": 2, "m1": 3, "m2": 1, "u1": 2, "u2": -2},
		},
		"explosion": {
			Scene: "collision", Speed: 0.5,
			Params: map[string]float64{"kind": 3, "m1": 2, "m2": 1, "energy": 30},
		},
	},
	"loop": {
		"safe": {
			Scene: "loop", Speed: 1,
			Params: map[string]float64{"radius": 10, "speed": 14},
		},
		"stall": {
			Scene: "loop", Speed: 0.5,
			Params: map[string]float64{"radius": 10, "speed": 8},
		},
	},
	"relative": {
		"head_on": {
			Scene: "relative", Speed: 1,
			Params: map[string]float64{"u1": 20, "u2": -20, "x2": 200},
		},
		"overtake": {
			Scene: "relative", Speed: 1,
			Params: map[string]float64{"u1": 30, "u2": 25, "x2": 40, "frame": 2},
		},
	},
	"river": {
		"straight": {
			Scene: "river", Speed: 1,
			Params: map[string]float64{"heading": 0},
		},
		"no_drift": {
			Scene: "river", Speed: 1,
			Params: map[string]float64{"boat_speed": 4, "current": 2, "heading": 30},
		},
	},
}

// GetPreset returns a copy of a preset filled with the default timing
// settings, or nil.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	p, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Scene = p.Scene
	if p.Speed > 0 {
		cfg.Speed = p.Speed
	}
	return cfg.WithParams(p.Params)
}

// ListPresets returns the preset names of a scene in sorted order.
func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
