package descent

import "fmt"

// Reason records why a run stopped.
type Reason int

const (
	// ReasonRunning is reported while steps are still being produced.
	ReasonRunning Reason = iota
	// ReasonConverged means the gradient norm dropped below Tol.
	ReasonConverged
	// ReasonMaxIterations means the iteration budget ran out.
	ReasonMaxIterations
	// ReasonStalled means the line search hit MinStep without finding a
	// decrease. Re-evaluating from the same point would fail identically.
	ReasonStalled
)

var reasonNames = [...]string{
	ReasonRunning:       "running",
	ReasonConverged:     "converged",
	ReasonMaxIterations: "max_iterations",
	ReasonStalled:       "stalled",
}

func (r Reason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Reason) UnmarshalText(text []byte) error {
	for i, name := range reasonNames {
		if name == string(text) {
			*r = Reason(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stop reason: %q", text)
}

// Step is one accepted point of a descent run.
type Step struct {
	// Iteration is the outer iteration that produced the point; 0 is the start.
	Iteration int `json:"iteration"`

	// X is the full point. It is owned by the Step.
	X []float64 `json:"x"`

	// F is the objective value at X.
	F float64 `json:"f"`

	// StepSize is the accepted line-search step t; 0 for the start point.
	StepSize float64 `json:"stepSize,omitempty"`
}

// Trajectory is the complete record of a descent run in chronological order.
type Trajectory struct {
	Steps      []Step `json:"steps"`
	Reason     Reason `json:"reason"`
	Iterations int    `json:"iterations"`
}

// Len returns the number of recorded points, including the start.
func (t *Trajectory) Len() int {
	return len(t.Steps)
}

// Final returns the last recorded point.
func (t *Trajectory) Final() Step {
	return t.Steps[len(t.Steps)-1]
}

// Values returns f at every recorded point.
func (t *Trajectory) Values() []float64 {
	out := make([]float64, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.F
	}
	return out
}

// Flatten2D packs the trajectory as consecutive (x, y, f) triples, the layout
// plotting hosts consume. Only the first two coordinates of each point are
// kept; a 1-D point reports y = 0.
func (t *Trajectory) Flatten2D() []float64 {
	out := make([]float64, 0, 3*len(t.Steps))
	for _, s := range t.Steps {
		var x, y float64
		if len(s.X) > 0 {
			x = s.X[0]
		}
		if len(s.X) > 1 {
			y = s.X[1]
		}
		out = append(out, x, y, s.F)
	}
	return out
}
