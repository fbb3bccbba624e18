// Package viz is the interactive terminal view of an SIR run.
//
// Three sliders drive the computation: transmission rate, recovery rate and
// the number of steps. Every change starts a fresh computation; results that
// arrive for an older slider position are discarded.
//
// # Key Bindings
//
//	j/k, up/down       - Select slider
//	h/l, left/right    - Fine adjust
//	H/L, shift+arrows  - Coarse adjust
//	pgup/pgdown        - Larger adjust
//	r                  - Reset sliders
//	q, ctrl+c          - Quit
package viz
