// Package dynamo holds the types shared by every part of the demo engine.
//
// The engine is split along the data flow of a single frame:
//
//   - [Scene]: a tick orchestrator that owns the mutable state of one demo
//   - [Snapshot]: the flat per-frame view handed to renderers
//   - [Configurable]: parameter access used by input collaborators
//
// Scenes are driven by the animation loop and never talk to a renderer
// directly; they only answer Tick and Snapshot.
//
// # Degenerate input
//
// Physical quantities arrive from sliders and may momentarily be zero or
// negative. [Floor] and [Clamp] map them into the valid domain instead of
// failing, so a scene never errors mid-drag.
//
// # Thread Safety
//
// Scenes are NOT thread-safe. Headless sweeps give every goroutine its own
// scene via [ParallelFor].
package dynamo
