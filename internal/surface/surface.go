// Package surface samples a 2-D objective on a regular grid and runs descent
// on the same function instance. A Surface is the unit a visualization host
// holds per session.
package surface

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/objective"
	"gonum.org/v1/gonum/floats"
)

// Surface owns sampled axes, the height field and the function that produced
// them. It is read-only after construction and safe for concurrent readers.
type Surface struct {
	domain Domain
	x      []float64
	y      []float64
	z      []float64
	f      objective.Function
	engine *descent.Engine
}

type options struct {
	descent descent.Config
}

// Option customizes a Surface.
type Option func(*options)

// WithDescentConfig sets the hyperparameters Minimize uses. The config is
// validated as given; start from descent.DefaultConfig to override a field.
func WithDescentConfig(cfg descent.Config) Option {
	return func(o *options) {
		o.descent = cfg
	}
}

// New samples f over d. f must be two-dimensional.
//
// Axis values are evenly spaced and include both endpoints. Heights are laid
// out row-major with y outer and x inner: z[iy*XSteps+ix] = f(x[ix], y[iy]).
func New(d Domain, f objective.Function, opts ...Option) (*Surface, error) {
	if f == nil {
		return nil, fmt.Errorf("surface: nil objective")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if f.Dim() != 2 {
		return nil, &objective.DimensionMismatchError{What: "surface objective", Want: 2, Got: f.Dim()}
	}

	o := options{descent: descent.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	engine, err := descent.New(f, o.descent)
	if err != nil {
		return nil, err
	}

	x, err := axis("x", d.XMin, d.XMax, d.XSteps)
	if err != nil {
		return nil, err
	}
	y, err := axis("y", d.YMin, d.YMax, d.YSteps)
	if err != nil {
		return nil, err
	}

	z := make([]float64, 0, d.Size())
	p := make([]float64, 2)
	for _, yi := range y {
		for _, xi := range x {
			p[0], p[1] = xi, yi
			v, err := f.Apply(p)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate surface at (%g, %g): %w", xi, yi, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InvalidDomainError{Reason: fmt.Sprintf("f(%g, %g) is not finite", xi, yi)}
			}
			z = append(z, v)
		}
	}

	slog.Debug("Surface sampled",
		"x_steps", d.XSteps,
		"y_steps", d.YSteps,
		"points", len(z),
	)

	return &Surface{
		domain: d,
		x:      x,
		y:      y,
		z:      z,
		f:      f,
		engine: engine,
	}, nil
}

// Build is the host-facing constructor: it resolves sel in the objective
// registry and samples it.
func Build(xMin, xMax float64, xSteps int, yMin, yMax float64, ySteps int, sel objective.Selector, opts ...Option) (*Surface, error) {
	f, err := objective.New(sel)
	if err != nil {
		return nil, err
	}
	d := Domain{
		XMin: xMin, XMax: xMax, XSteps: xSteps,
		YMin: yMin, YMax: yMax, YSteps: ySteps,
	}
	return New(d, f, opts...)
}

// axis returns steps evenly spaced values covering [lo, hi].
func axis(name string, lo, hi float64, steps int) ([]float64, error) {
	vals := floats.Span(make([]float64, steps), lo, hi)
	for i := 1; i < len(vals); i++ {
		if !(vals[i] > vals[i-1]) {
			return nil, &InvalidDomainError{Axis: name, Reason: "sample spacing underflows"}
		}
	}
	return vals, nil
}

// X returns a copy of the x-axis samples.
func (s *Surface) X() []float64 {
	return append([]float64(nil), s.x...)
}

// Y returns a copy of the y-axis samples.
func (s *Surface) Y() []float64 {
	return append([]float64(nil), s.y...)
}

// Z returns a copy of the flattened height grid.
func (s *Surface) Z() []float64 {
	return append([]float64(nil), s.z...)
}

// At returns the height at grid index (ix, iy). It panics if either index is
// out of range, like a slice access.
func (s *Surface) At(ix, iy int) float64 {
	if ix < 0 || ix >= len(s.x) || iy < 0 || iy >= len(s.y) {
		panic(fmt.Sprintf("surface: index (%d, %d) out of range [%d, %d)", ix, iy, len(s.x), len(s.y)))
	}
	return s.z[iy*len(s.x)+ix]
}

// Domain returns the parameters the surface was sampled with.
func (s *Surface) Domain() Domain {
	return s.domain
}

// Function returns the owned objective.
func (s *Surface) Function() objective.Function {
	return s.f
}

// DescentConfig returns the hyperparameters Minimize uses.
func (s *Surface) DescentConfig() descent.Config {
	return s.engine.Config()
}

// Range returns the smallest and largest sampled heights.
func (s *Surface) Range() (lo, hi float64) {
	return floats.Min(s.z), floats.Max(s.z)
}

// Descend runs descent from (x, y) and returns the structured trajectory.
// The start point does not need to lie inside the sampled domain.
func (s *Surface) Descend(x, y float64) (*descent.Trajectory, error) {
	if err := s.checkStart(x, y); err != nil {
		return nil, err
	}
	return s.engine.Minimize([]float64{x, y})
}

// Start begins a lazy descent from (x, y), for hosts that stream steps.
func (s *Surface) Start(x, y float64) (*descent.Run, error) {
	if err := s.checkStart(x, y); err != nil {
		return nil, err
	}
	return s.engine.Start([]float64{x, y})
}

// Minimize runs descent from (x, y) and returns the trajectory flattened to
// consecutive (x, y, f) triples, starting with the start point.
func (s *Surface) Minimize(x, y float64) ([]float64, error) {
	traj, err := s.Descend(x, y)
	if err != nil {
		return nil, err
	}
	return traj.Flatten2D(), nil
}

// checkStart rejects start points that are not finite or where f overflows.
// Accepted steps never increase f, so f(x0) bounds every trajectory value.
func (s *Surface) checkStart(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return &InvalidDomainError{Reason: fmt.Sprintf("start point (%g, %g) must be finite", x, y)}
	}
	v, err := s.f.Apply([]float64{x, y})
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidDomainError{Reason: fmt.Sprintf("f(%g, %g) is not finite", x, y)}
	}
	return nil
}
