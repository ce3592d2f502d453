package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != "elevator" {
		t.Errorf("expected scene elevator, got %s", cfg.Scene)
	}
	if cfg.Speed <= 0 {
		t.Error("speed should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("freefall", "moon")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params["gravity"] != 1.62 {
		t.Errorf("expected gravity 1.62, got %f", cfg.Params["gravity"])
	}
	if cfg.FPS != DefaultFPS {
		t.Errorf("preset should carry default fps, got %d", cfg.FPS)
	}

	// callers may edit the copy freely
	cfg.Params["gravity"] = 99
	if GetPreset("freefall", "moon").Params["gravity"] != 1.62 {
		t.Error("preset table was mutated through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("freefall", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "moon"); cfg != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("collision")
	want := []string{"coupling", "elastic", "explosion"}
	if strings.Join(presets, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, presets)
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestPresetsNameTheirScene(t *testing.T) {
	for scene, presets := range Presets {
		for name, p := range presets {
			if p.Scene != scene {
				t.Errorf("preset %s/%s names scene %q", scene, name, p.Scene)
			}
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig().WithParams(map[string]float64{"mass": 80})
	cfg.Scene = "loop"
	cfg.Speed = 0.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Scene != "loop" || got.Speed != 0.5 || got.Params["mass"] != 80 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("scene: bounce\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scene != "bounce" || cfg.FPS != DefaultFPS || cfg.Speed != DefaultSpeed {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadSpeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("speed: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for negative speed")
	}
}

func TestLoopOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDeltaMS = 20
	cfg.Speed = 2
	opts := cfg.LoopOptions()
	if opts.MaxDelta != 20*time.Millisecond || opts.Speed != 2 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestSchemaJSON(t *testing.T) {
	data, err := SchemaJSON()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	for _, field := range []string{"scene", "speed", "publish_interval_ms", "params"} {
		if !strings.Contains(string(data), `"`+field+`"`) {
			t.Errorf("schema missing %s", field)
		}
	}
}
