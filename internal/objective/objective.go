// Package objective defines the scalar functions the descent engine minimizes
// and the surface sampler evaluates.
package objective

import "fmt"

// Function is a scalar objective with an analytic gradient.
//
// Implementations are immutable and safe for concurrent use. Apply and
// Gradient must agree: Gradient is the exact derivative of Apply. Both return
// a *DimensionMismatchError when len(x) != Dim().
type Function interface {
	// Dim is the length of every point the function accepts.
	Dim() int

	// Apply returns f(x).
	Apply(x []float64) (float64, error)

	// Gradient returns a freshly allocated ∇f(x) of length Dim().
	Gradient(x []float64) ([]float64, error)
}

// ErrDimensionMismatch matches any *DimensionMismatchError.
// Use errors.Is(err, ErrDimensionMismatch) to check for it.
var ErrDimensionMismatch = &DimensionMismatchError{}

// DimensionMismatchError reports a point or parameter whose length does not
// match the dimension a function was built for.
type DimensionMismatchError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	if e.What == "" {
		return "dimension mismatch"
	}
	return fmt.Sprintf("dimension mismatch: %s has length %d, want %d", e.What, e.Got, e.Want)
}

func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)
	return ok
}

func checkDim(x []float64, n int) error {
	if len(x) != n {
		return &DimensionMismatchError{What: "point", Want: n, Got: len(x)}
	}
	return nil
}
