// Package experiment runs scenes headless: the registry builds scenes by
// name and an Experiment drives one through an animation loop at a
// synthetic frame rate, recording every snapshot.
package experiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/kinelab/internal/animation"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/metrics"
	"github.com/san-kum/kinelab/internal/session"
)

// DefaultFPS is the synthetic frame rate of a headless run.
const DefaultFPS = 60

type Config struct {
	Scene  string
	Params map[string]float64
	FPS    int
	Speed  float64
	// Until stops the run early; zero runs to the scene's end.
	Until  float64
	Logger *zap.Logger
}

// Result is the recorded trace of a run.
type Result struct {
	Scene     string
	Params    map[string]float64
	Duration  float64
	Frames    int
	Snapshots []dynamo.Snapshot
	Metrics   map[string]float64
}

// Times returns the snapshot times.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Time
	}
	return out
}

// Series returns one quantity across the trace.
func (r *Result) Series(name string) []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i], _ = s.Quantity(name)
	}
	return out
}

type Experiment struct {
	cfg     Config
	scene   dynamo.Scene
	metrics []metrics.Metric
}

func New(cfg Config) *Experiment {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.Speed <= 0 {
		cfg.Speed = animation.DefaultSpeed
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(scene dynamo.Scene, ms []metrics.Metric) error {
	names := make([]string, 0, len(e.cfg.Params))
	for name := range e.cfg.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := scene.SetParam(name, e.cfg.Params[name]); err != nil {
			return fmt.Errorf("setup %s: %w", scene.Name(), err)
		}
	}
	e.scene = scene
	e.metrics = ms
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.scene == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	result := &Result{
		Scene:    e.scene.Name(),
		Params:   e.scene.GetParams(),
		Duration: e.scene.Duration(),
		Metrics:  make(map[string]float64),
	}
	invalid := -1.0
	record := func(s dynamo.Snapshot) {
		if invalid < 0 && !s.IsValid() {
			invalid = s.Time
		}
		result.Snapshots = append(result.Snapshots, s.Clone())
		for _, m := range e.metrics {
			m.Observe(s)
		}
	}

	q := animation.NewFrameQueue()
	opts := animation.DefaultOptions()
	opts.Speed = e.cfg.Speed
	opts.Logger = e.cfg.Logger
	sess := session.New(e.scene, q, opts, record)
	if e.cfg.Until > 0 && e.cfg.Until < sess.Loop().MaxTime() {
		sess.Loop().SetMaxTime(e.cfg.Until)
	}

	e.cfg.Logger.Debug("experiment start",
		zap.String("scene", result.Scene),
		zap.Float64("duration", result.Duration),
		zap.Int("fps", e.cfg.FPS))

	sess.Play()
	frames, err := animation.Drive(ctx, q, e.cfg.FPS, time.Unix(0, 0))
	result.Frames = frames
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if err != nil {
		return result, dynamo.SimError{Time: sess.Loop().SimTime(), Step: frames, Err: err}
	}
	if invalid >= 0 {
		return result, dynamo.SimError{Time: invalid, Step: frames, Err: dynamo.ErrInvalidState}
	}
	return result, nil
}

// Scene is the scene set up for the run.
func (e *Experiment) Scene() dynamo.Scene {
	return e.scene
}

// RunScene is the common path: look the scene up, attach its default
// metrics and run it.
func RunScene(ctx context.Context, reg *Registry, cfg Config) (*Result, error) {
	scene, err := reg.GetScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	exp := New(cfg)
	if err := exp.Setup(scene, reg.DefaultMetrics(cfg.Scene)); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
