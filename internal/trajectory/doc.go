// Package trajectory integrates a [dynamo.System] from one initial state
// and reports the solution on a fixed output grid.
//
// The grid is half-open: samples sit at 0, Dt, 2Dt, ... strictly below the
// horizon, so a run has ceil(Horizon/Dt) samples. With an
// [dynamo.AdaptiveIntegrator] the solver picks its own internal steps and
// grid values come from cubic Hermite interpolation between accepted steps;
// a plain [dynamo.Integrator] steps exactly Dt per sample.
//
// Sampling is a pure function of its inputs: the same system, integrator
// configuration and initial state always produce the same samples.
package trajectory
