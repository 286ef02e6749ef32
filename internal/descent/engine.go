// Package descent minimizes an objective.Function with steepest descent and a
// backtracking (Armijo) line search.
//
// The engine works in any dimension. A run starts at x0 and, on every outer
// iteration, stops if ‖∇f‖₂ < Tol, otherwise tries x − t∇f for t = 1, β, β², …
// and accepts the first candidate with
//
//	f(x − t∇f) ≤ f(x) − α·t·‖∇f‖₂²
//
// Accepted points are monotonically non-increasing in f.
package descent

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/surfacedescent/internal/objective"
	"gonum.org/v1/gonum/floats"
)

// Engine runs descent against a single function with fixed hyperparameters.
// It holds no per-run state and may be shared between goroutines.
type Engine struct {
	f   objective.Function
	cfg Config
}

// New validates cfg and binds it to f.
func New(f objective.Function, cfg Config) (*Engine, error) {
	if f == nil {
		return nil, fmt.Errorf("descent: nil objective")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{f: f, cfg: cfg}, nil
}

// Config returns the engine's hyperparameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Start begins a lazy run at x0. The start point is evaluated immediately so
// a wrong-length x0 is reported here rather than mid-run.
func (e *Engine) Start(x0 []float64) (*Run, error) {
	x := append([]float64(nil), x0...)
	fx, err := e.f.Apply(x)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate start point: %w", err)
	}
	return &Run{
		f:    e.f,
		cfg:  e.cfg,
		x:    x,
		fx:   fx,
		cand: make([]float64, len(x)),
	}, nil
}

// Minimize runs to completion and returns the full trajectory.
func (e *Engine) Minimize(x0 []float64) (*Trajectory, error) {
	run, err := e.Start(x0)
	if err != nil {
		return nil, err
	}

	capHint := e.cfg.MaxIter + 1
	if capHint > 256 {
		capHint = 256
	}
	traj := &Trajectory{Steps: make([]Step, 0, capHint)}
	for run.Next() {
		traj.Steps = append(traj.Steps, run.Step())
	}
	if err := run.Err(); err != nil {
		return nil, err
	}
	traj.Reason = run.Reason()
	traj.Iterations = run.Iterations()
	return traj, nil
}

// Minimize is shorthand for New(f, cfg) followed by Engine.Minimize(x0).
func Minimize(f objective.Function, x0 []float64, cfg Config) (*Trajectory, error) {
	e, err := New(f, cfg)
	if err != nil {
		return nil, err
	}
	return e.Minimize(x0)
}

// Run is a single descent in progress. Call Next until it returns false, then
// inspect Reason. A Run is not safe for concurrent use and cannot be restarted.
type Run struct {
	f   objective.Function
	cfg Config

	x    []float64
	fx   float64
	cand []float64

	started bool
	iter    int
	reason  Reason
	current Step
	err     error
}

// Next advances to the next accepted point. The first call yields the start
// point.
func (r *Run) Next() bool {
	if !r.started {
		r.started = true
		r.current = Step{X: append([]float64(nil), r.x...), F: r.fx}
		return true
	}
	if r.reason != ReasonRunning {
		return false
	}

	for r.iter < r.cfg.MaxIter {
		r.iter++

		grad, err := r.f.Gradient(r.x)
		if err != nil {
			r.fail(fmt.Errorf("failed to evaluate gradient: %w", err))
			return false
		}
		if floats.Norm(grad, 2) < r.cfg.Tol {
			r.finish(ReasonConverged)
			return false
		}

		t, fNew, ok, err := r.lineSearch(grad)
		if err != nil {
			r.fail(err)
			return false
		}
		if !ok {
			r.finish(ReasonStalled)
			return false
		}

		r.x, r.cand = r.cand, r.x
		r.fx = fNew
		r.current = Step{
			Iteration: r.iter,
			X:         append([]float64(nil), r.x...),
			F:         fNew,
			StepSize:  t,
		}
		return true
	}

	r.finish(ReasonMaxIterations)
	return false
}

// lineSearch backtracks from t = 1 until the Armijo condition holds. The
// accepted candidate is left in r.cand.
func (r *Run) lineSearch(grad []float64) (t, fNew float64, ok bool, err error) {
	gg := floats.Dot(grad, grad)
	for t = 1.0; t > r.cfg.MinStep; t *= r.cfg.Beta {
		floats.AddScaledTo(r.cand, r.x, -t, grad)
		fNew, err = r.f.Apply(r.cand)
		if err != nil {
			return 0, 0, false, fmt.Errorf("failed to evaluate candidate: %w", err)
		}
		if fNew <= r.fx-r.cfg.Alpha*t*gg {
			return t, fNew, true, nil
		}
	}
	return t, r.fx, false, nil
}

func (r *Run) finish(reason Reason) {
	r.reason = reason
	slog.Debug("Descent finished",
		"reason", reason.String(),
		"iterations", r.iter,
		"f", r.fx,
	)
}

func (r *Run) fail(err error) {
	r.err = err
	r.reason = ReasonStalled
}

// Step returns the point produced by the latest successful Next.
func (r *Run) Step() Step {
	return r.current
}

// Reason reports why the run stopped, or ReasonRunning while it is live.
func (r *Run) Reason() Reason {
	return r.reason
}

// Iterations returns the number of outer iterations started so far.
func (r *Run) Iterations() int {
	return r.iter
}

// Err returns the evaluation error that ended the run, if any. Functions
// honouring their dimension never produce one once Start succeeded.
func (r *Run) Err() error {
	return r.err
}
