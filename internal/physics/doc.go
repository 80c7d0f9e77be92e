// Package physics provides dynamical system models for simulation.
//
// Each model implements the [dynamo.System] interface, defining the
// differential equations governing the system's evolution:
//
//   - [Lorenz]: butterfly attractor
//
// Models also implement [dynamo.Configurable] so their parameters can be
// recorded alongside stored runs.
package physics
