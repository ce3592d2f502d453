// Package viz renders scenes in the terminal with Bubble Tea.
//
//   - [App]: scene menu, slider configuration, then the live view
//   - [Model]: live view of one scene; tea.Tick drives the animation loop
//     through an [animation.FrameQueue]
//   - [Canvas] and [Viewport]: braille sub-pixel drawing in world metres
//
// # Key Bindings
//
//	Space - Play/Pause
//	R     - Reset to t=0
//	[ ]   - Seek 0.5s back/forward
//	+ -   - Playback speed
//	Tab   - Select parameter, Up/Down to adjust
//	G     - Cycle the plotted quantity
//	T     - Cycle color themes
//	?     - Help overlay
package viz
