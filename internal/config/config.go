package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinelab/internal/animation"
)

const (
	DefaultScene           = "elevator"
	DefaultSpeed           = 1.0
	DefaultFPS             = 60
	DefaultMaxDeltaMS      = 50
	DefaultPublishInterval = 50
	DefaultDataDir         = "runs"
)

type Config struct {
	Scene             string             `yaml:"scene" json:"scene" jsonschema:"title=Scene,description=Registered scene name,enum=elevator,enum=freefall,enum=bounce,enum=collision,enum=loop,enum=relative,enum=river"`
	Speed             float64            `yaml:"speed" json:"speed" jsonschema:"title=Playback speed,description=Must be positive,default=1"`
	FPS               int                `yaml:"fps" json:"fps" jsonschema:"title=Frame rate,description=Host frame rate for live and headless runs,minimum=1,default=60"`
	MaxDeltaMS        int                `yaml:"max_delta_ms" json:"max_delta_ms" jsonschema:"title=Max frame delta (ms),minimum=1,default=50"`
	PublishIntervalMS int                `yaml:"publish_interval_ms" json:"publish_interval_ms" jsonschema:"title=Status publish interval (ms),minimum=1,default=50"`
	DataDir           string             `yaml:"data_dir" json:"data_dir" jsonschema:"title=Run storage directory"`
	Params            map[string]float64 `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"title=Scene parameters,description=Slider values applied before the run; out-of-range values are clamped"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:             DefaultScene,
		Speed:             DefaultSpeed,
		FPS:               DefaultFPS,
		MaxDeltaMS:        DefaultMaxDeltaMS,
		PublishIntervalMS: DefaultPublishInterval,
		DataDir:           DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the loop cannot run with.
func (c *Config) Validate() error {
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.MaxDeltaMS <= 0 || c.PublishIntervalMS <= 0 {
		return fmt.Errorf("max_delta_ms and publish_interval_ms must be positive")
	}
	return nil
}

// LoopOptions converts the timing settings for animation.New.
func (c *Config) LoopOptions() animation.Options {
	opts := animation.DefaultOptions()
	opts.Speed = c.Speed
	opts.MaxDelta = time.Duration(c.MaxDeltaMS) * time.Millisecond
	opts.PublishInterval = time.Duration(c.PublishIntervalMS) * time.Millisecond
	return opts
}

// WithParams returns a copy whose params are overlaid by extra.
func (c *Config) WithParams(extra map[string]float64) *Config {
	out := *c
	out.Params = make(map[string]float64, len(c.Params)+len(extra))
	for k, v := range c.Params {
		out.Params[k] = v
	}
	for k, v := range extra {
		out.Params[k] = v
	}
	return &out
}

// Schema describes the config file for editors and validators.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(Config))
	schema.Title = "kinelab run configuration"
	schema.Description = "Scene, timing and slider values for kinelab run, live and serve"
	return schema
}

// SchemaJSON is Schema marshalled with indentation.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
