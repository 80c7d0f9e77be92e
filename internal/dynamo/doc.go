// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types shared by the
// models, integrators and samplers:
//
//   - [State]: vector representing a point in phase space
//   - [System]: interface for autonomous or time-dependent ODEs (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [AdaptiveIntegrator]: integrator with error-controlled step size
//   - [Tolerance]: accuracy bounds for adaptive stepping
//
// # Errors
//
// Invalid caller input is reported as [ErrInvalidParameter]. Numerical
// failures wrap [ErrIntegration]; use errors.Is to classify them and
// errors.As with [*IntegrationError] to recover the step and state at which
// the solver gave up.
//
// # Example
//
//	dyn, _ := physics.NewLorenz(physics.DefaultParams())
//	integ := integrators.NewRK45()
//	traj, err := trajectory.Sample(ctx, dyn, integ, dyn.DefaultState(), trajectory.DefaultConfig())
package dynamo
