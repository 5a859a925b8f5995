// Package viz renders the rod sphere in the terminal.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: live view of one engine, sampled once per display frame
//   - [Picker]: preset menu that launches a live view
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Camera]: perspective look-at camera that follows the orbit pose
//   - [Sparkline]: drive curve with a sweeping cursor
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	T     - Cycle color themes
//	+/-   - Zoom
//	?     - Show help overlay
//	Q     - Quit
package viz
