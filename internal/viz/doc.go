// Package viz is the terminal scene driver. [Player] implements
// scene.Driver with a Bubble Tea program drawing onto a braille [Canvas]
// through a spherical [Camera].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the reveal
//	←/→   - Rotate about z
//	↑/↓   - Tilt
//	+/-   - Zoom
//	Q     - Quit
package viz
