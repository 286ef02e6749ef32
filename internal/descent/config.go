package descent

import (
	"fmt"
	"math"
)

// Config holds the hyperparameters of a backtracking gradient descent run.
type Config struct {
	// Alpha is the Armijo sufficient-decrease coefficient, in (0, 1).
	Alpha float64 `json:"alpha"`

	// Beta shrinks the trial step after each rejected candidate, in (0, 1).
	Beta float64 `json:"beta"`

	// Tol stops the run once ‖∇f(x)‖₂ < Tol.
	Tol float64 `json:"tol"`

	// MaxIter caps the number of outer iterations. Zero records only the start point.
	MaxIter int `json:"maxIter"`

	// MinStep is the floor below which the line search gives up.
	MinStep float64 `json:"minStep,omitempty"`
}

// DefaultConfig returns the parameters used by the visualization surfaces.
func DefaultConfig() Config {
	return Config{
		Alpha:   0.01,
		Beta:    0.8,
		Tol:     1e-6,
		MaxIter: 2000,
		MinStep: 1e-10,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return &ConfigError{Field: "Alpha", Reason: fmt.Sprintf("must be in (0, 1), got %g", c.Alpha)}
	}
	if !(c.Beta > 0 && c.Beta < 1) {
		return &ConfigError{Field: "Beta", Reason: fmt.Sprintf("must be in (0, 1), got %g", c.Beta)}
	}
	if !(c.Tol > 0) || math.IsInf(c.Tol, 1) {
		return &ConfigError{Field: "Tol", Reason: fmt.Sprintf("must be positive and finite, got %g", c.Tol)}
	}
	if c.MaxIter < 0 {
		return &ConfigError{Field: "MaxIter", Reason: fmt.Sprintf("cannot be negative, got %d", c.MaxIter)}
	}
	if !(c.MinStep > 0) {
		return &ConfigError{Field: "MinStep", Reason: fmt.Sprintf("must be positive, got %g", c.MinStep)}
	}
	return nil
}

// ErrInvalidConfig matches any *ConfigError.
var ErrInvalidConfig = &ConfigError{}

// ConfigError describes a rejected hyperparameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid descent config"
	}
	return "invalid descent config: " + e.Field + " " + e.Reason
}

func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}
