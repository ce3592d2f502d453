// Package animation owns simulation time for an interactive demo.
//
// A [Loop] advances a simulation clock from host frame signals. Each frame
// the wall-clock delta is clamped, scaled by the playback speed and handed to
// a [TickFunc]. The host decides when frames happen through a [Scheduler];
// [FrameQueue] is the single-threaded implementation used by the terminal
// renderer, the websocket feed and the tests.
//
// # Live clock and published status
//
// The loop keeps one authoritative clock, read through [Loop.SimTime],
// [Loop.Running] and [Loop.Speed]; these are always current. Observers
// registered with [Loop.Subscribe] receive a [Status] at most once per
// PublishInterval of wall time, plus once for every explicit state change.
// Renderers that need per-frame precision read the live clock; renderers
// that only need to know when to redraw subscribe.
//
// # Thread Safety
//
// A Loop is NOT thread-safe. All calls, including frame callbacks, must
// come from one goroutine.
package animation
