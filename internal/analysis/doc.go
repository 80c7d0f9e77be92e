// Package analysis provides chaos and dynamics analysis tools.
//
// Most functions work on already sampled trajectories, so stored runs can
// be analysed without integrating again:
//
//   - [Separation], [Diverge]: distance between two members over time
//   - [SeparationRate]: Lyapunov estimate from the growth of a separation
//   - [LyapunovExponent]: largest exponent via renormalised twin runs
//   - [Bounds]: per-coordinate extent of a trajectory
//   - [PowerSpectrum], [DominantFrequency]: FFT of one coordinate
//   - [PhasePortrait], [PoincareSection], [LorenzMap]: 2D views of a run
//   - [BifurcationDiagram]: z maxima while sweeping ρ
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(dyn, integ, x0, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
