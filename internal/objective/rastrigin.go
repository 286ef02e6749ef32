package objective

import "math"

// Rastrigin is the multimodal function
//
//	f(x) = 10n + Σ (xᵢ² − 10·cos(2πxᵢ))
//
// with local minima near every integer lattice point and its global minimum
// f(0) = 0. For n = 2 this is 20 + x² − 10cos(2πx) + y² − 10cos(2πy).
type Rastrigin struct {
	n int
}

// NewRastrigin returns the n-dimensional Rastrigin function.
func NewRastrigin(n int) *Rastrigin {
	return &Rastrigin{n: n}
}

func (r *Rastrigin) Dim() int { return r.n }

func (r *Rastrigin) Apply(x []float64) (float64, error) {
	if err := checkDim(x, r.n); err != nil {
		return 0, err
	}
	sum := 10 * float64(r.n)
	for _, xi := range x {
		sum += xi*xi - 10*math.Cos(2*math.Pi*xi)
	}
	return sum, nil
}

func (r *Rastrigin) Gradient(x []float64) ([]float64, error) {
	if err := checkDim(x, r.n); err != nil {
		return nil, err
	}
	grad := make([]float64, r.n)
	for i, xi := range x {
		grad[i] = 2*xi + 20*math.Pi*math.Sin(2*math.Pi*xi)
	}
	return grad, nil
}
