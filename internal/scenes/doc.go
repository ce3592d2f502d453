// Package scenes holds the tick orchestrators for each demonstration.
//
// Every scene implements [dynamo.Scene]. Closed-form scenes (elevator, free
// fall, loop, relative motion, river) evaluate their physics directly at the
// loop's total time. Scenes with discrete events (bounce, collision) keep a
// [phased.State] and advance it with a [phased.Machine]; a zero delta
// replays from the initial state so seeking is deterministic.
//
// Changing a parameter rebuilds the scene's derived data and returns it to
// t=0. Out-of-range values are clamped, not rejected.
package scenes
