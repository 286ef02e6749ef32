package surface

import (
	"fmt"
	"math"
)

// Domain is the rectangle and sample counts a surface is built over.
type Domain struct {
	XMin   float64 `json:"xMin"`
	XMax   float64 `json:"xMax"`
	XSteps int     `json:"xSteps"`
	YMin   float64 `json:"yMin"`
	YMax   float64 `json:"yMax"`
	YSteps int     `json:"ySteps"`
}

// Validate checks that both axes have at least two samples over a finite,
// non-empty interval.
func (d Domain) Validate() error {
	if err := validateAxis("x", d.XMin, d.XMax, d.XSteps); err != nil {
		return err
	}
	return validateAxis("y", d.YMin, d.YMax, d.YSteps)
}

// Size returns the number of grid points, XSteps·YSteps.
func (d Domain) Size() int {
	return d.XSteps * d.YSteps
}

func validateAxis(axis string, lo, hi float64, steps int) error {
	if steps < 2 {
		return &InvalidDomainError{Axis: axis, Reason: fmt.Sprintf("needs at least 2 samples, got %d", steps)}
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &InvalidDomainError{Axis: axis, Reason: "bounds must be finite"}
	}
	if lo >= hi {
		return &InvalidDomainError{Axis: axis, Reason: fmt.Sprintf("min %g must be less than max %g", lo, hi)}
	}
	if math.IsInf(hi-lo, 0) {
		return &InvalidDomainError{Axis: axis, Reason: "interval width overflows"}
	}
	return nil
}

// ErrInvalidDomain matches any *InvalidDomainError.
var ErrInvalidDomain = &InvalidDomainError{}

// InvalidDomainError reports a degenerate sampling domain or start point.
type InvalidDomainError struct {
	Axis   string
	Reason string
}

func (e *InvalidDomainError) Error() string {
	if e.Axis == "" {
		if e.Reason == "" {
			return "invalid domain"
		}
		return "invalid domain: " + e.Reason
	}
	return "invalid domain: " + e.Axis + " axis " + e.Reason
}

func (e *InvalidDomainError) Is(target error) bool {
	_, ok := target.(*InvalidDomainError)
	return ok
}
