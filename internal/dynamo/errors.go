package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates caller input outside the valid domain
	// (non-positive horizon or step, non-finite parameters or state).
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrIntegration indicates the numerical solver could not reach the horizon.
	ErrIntegration = errors.New("dynamo: integration failed")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = fmt.Errorf("%w: adaptive timestep below minimum", ErrIntegration)

	// ErrDiverged indicates the state left the finite numbers.
	ErrDiverged = fmt.Errorf("%w: state diverged (NaN or Inf detected)", ErrIntegration)

	// ErrStepLimit indicates the solver exhausted its step budget.
	ErrStepLimit = fmt.Errorf("%w: step limit exceeded", ErrIntegration)
)

// InvalidParameter returns an error wrapping ErrInvalidParameter.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// IntegrationError wraps an integration failure with solver context.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
