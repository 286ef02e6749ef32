package objective

// Rosenbrock is the banana-shaped valley f(x, y) = (1−x)² + 100(y−x²)².
// Its global minimum is 0 at (1, 1); the curved floor makes plain gradient
// descent crawl, which is useful for comparing against the other surfaces.
type Rosenbrock struct{}

// NewRosenbrock returns the 2-D Rosenbrock function.
func NewRosenbrock() *Rosenbrock {
	return &Rosenbrock{}
}

func (Rosenbrock) Dim() int { return 2 }

func (Rosenbrock) Apply(x []float64) (float64, error) {
	if err := checkDim(x, 2); err != nil {
		return 0, err
	}
	t0 := x[1] - x[0]*x[0]
	t1 := 1 - x[0]
	return t1*t1 + 100*t0*t0, nil
}

func (Rosenbrock) Gradient(x []float64) ([]float64, error) {
	if err := checkDim(x, 2); err != nil {
		return nil, err
	}
	t0 := x[1] - x[0]*x[0]
	t1 := 1 - x[0]
	return []float64{-400*t0*x[0] - 2*t1, 200 * t0}, nil
}
