// Package session binds one scene to an animation loop and a renderer.
//
// A Session is what an input collaborator talks to: play, pause, seek,
// speed and parameter edits all go through it, and every tick ends with a
// call to the RenderFunc carrying a fresh snapshot. Like the loop, a
// Session is not safe for concurrent use.
package session

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/kinelab/internal/animation"
	"github.com/san-kum/kinelab/internal/dynamo"
)

// RenderFunc receives the scene snapshot after every tick.
type RenderFunc func(dynamo.Snapshot)

// Session owns a loop driving one scene.
type Session struct {
	scene  dynamo.Scene
	loop   *animation.Loop
	render RenderFunc
	log    *zap.Logger
	last   dynamo.Snapshot
}

// New binds scene to a loop on scheduler. opts.MaxTime is replaced by the
// scene's duration. render may be nil.
func New(scene dynamo.Scene, scheduler animation.Scheduler, opts animation.Options, render RenderFunc) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{scene: scene, render: render, log: log.With(zap.String("scene", scene.Name()))}
	opts.MaxTime = scene.Duration()
	opts.Logger = s.log
	s.loop = animation.New(s.tick, scheduler, opts)
	s.loop.Reset()
	return s
}

func (s *Session) tick(delta, total float64) bool {
	more := s.scene.Tick(delta, total)
	s.last = s.scene.Snapshot()
	if s.render != nil {
		s.render(s.last)
	}
	return more
}

// Scene is the bound scene.
func (s *Session) Scene() dynamo.Scene { return s.scene }

// Loop exposes the clock for zero-latency reads.
func (s *Session) Loop() *animation.Loop { return s.loop }

// Snapshot is the state rendered by the last tick.
func (s *Session) Snapshot() dynamo.Snapshot { return s.last }

func (s *Session) Play()            { s.loop.Play() }
func (s *Session) Pause()           { s.loop.Pause() }
func (s *Session) Toggle()          { s.loop.Toggle() }
func (s *Session) Reset()           { s.loop.Reset() }
func (s *Session) SkipTo(t float64) { s.loop.SkipTo(t) }

// SetSpeed forwards to the loop; speed must be positive.
func (s *Session) SetSpeed(speed float64) { s.loop.SetSpeed(speed) }

// SetParam edits a scene parameter. The scene rebuilds its state, the loop
// bound follows the new duration and the clock rewinds to zero.
func (s *Session) SetParam(name string, value float64) error {
	if err := s.scene.SetParam(name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	s.log.Debug("param changed", zap.String("param", name), zap.Float64("value", value))
	s.loop.SetMaxTime(s.scene.Duration())
	s.loop.Reset()
	return nil
}

// ApplyParams sets several parameters in name order and resets once. It
// stops at the first unknown name.
func (s *Session) ApplyParams(params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.scene.SetParam(name, params[name]); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	s.loop.SetMaxTime(s.scene.Duration())
	s.loop.Reset()
	return nil
}

// SwitchScene replaces the scene and rewinds.
func (s *Session) SwitchScene(scene dynamo.Scene) {
	s.loop.Pause()
	s.scene = scene
	s.log.Debug("scene switched", zap.String("to", scene.Name()))
	s.loop.SetMaxTime(scene.Duration())
	s.loop.Reset()
}
