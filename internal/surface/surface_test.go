package surface

import (
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/objective"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAxes(t *testing.T) {
	s, err := Build(-1, 1, 3, -2, 2, 5, objective.SelectQuadratic)
	require.NoError(t, err)

	assert.Equal(t, []float64{-1, 0, 1}, s.X())
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, s.Y())
	assert.Len(t, s.Z(), 15)
}

func TestHeightsAreRowMajorAndExact(t *testing.T) {
	sizes := [][2]int{{2, 2}, {3, 7}, {11, 4}, {25, 25}}

	for _, sel := range objective.Selectors() {
		for _, sz := range sizes {
			s, err := Build(-3.5, 2.25, sz[0], -1.5, 4, sz[1], sel)
			require.NoError(t, err)

			x, y, z := s.X(), s.Y(), s.Z()
			require.Len(t, x, sz[0])
			require.Len(t, y, sz[1])
			require.Len(t, z, sz[0]*sz[1])

			f := s.Function()
			for iy := range y {
				for ix := range x {
					want, err := f.Apply([]float64{x[ix], y[iy]})
					require.NoError(t, err)
					require.Equal(t, want, z[iy*len(x)+ix], "%s at (%d, %d)", sel, ix, iy)
					require.Equal(t, want, s.At(ix, iy))
				}
			}
		}
	}
}

func TestAxesEvenlySpacedAndIncreasing(t *testing.T) {
	s, err := Build(-5.12, 5.12, 101, -5.12, 5.12, 64, objective.SelectRastrigin)
	require.NoError(t, err)

	for _, vals := range [][]float64{s.X(), s.Y()} {
		assert.Equal(t, -5.12, vals[0])
		assert.InDelta(t, 5.12, vals[len(vals)-1], 1e-12)
		step := vals[1] - vals[0]
		for i := 1; i < len(vals); i++ {
			require.Greater(t, vals[i], vals[i-1])
			assert.InDelta(t, step, vals[i]-vals[i-1], 1e-12)
		}
	}
}

func TestInvalidDomain(t *testing.T) {
	tests := []struct {
		name string
		d    Domain
	}{
		{"x one step", Domain{XMin: -1, XMax: 1, XSteps: 1, YMin: -1, YMax: 1, YSteps: 3}},
		{"y zero steps", Domain{XMin: -1, XMax: 1, XSteps: 3, YMin: -1, YMax: 1, YSteps: 0}},
		{"x min equals max", Domain{XMin: 1, XMax: 1, XSteps: 3, YMin: -1, YMax: 1, YSteps: 3}},
		{"x min above max", Domain{XMin: 2, XMax: 1, XSteps: 3, YMin: -1, YMax: 1, YSteps: 3}},
		{"y reversed", Domain{XMin: -1, XMax: 1, XSteps: 3, YMin: 1, YMax: -1, YSteps: 3}},
		{"nan bound", Domain{XMin: math.NaN(), XMax: 1, XSteps: 3, YMin: -1, YMax: 1, YSteps: 3}},
		{"infinite bound", Domain{XMin: -1, XMax: math.Inf(1), XSteps: 3, YMin: -1, YMax: 1, YSteps: 3}},
		{"overflowing width", Domain{XMin: -math.MaxFloat64, XMax: math.MaxFloat64, XSteps: 3, YMin: -1, YMax: 1, YSteps: 3}},
		{"underflowing spacing", Domain{XMin: 0, XMax: 5e-324, XSteps: 4, YMin: -1, YMax: 1, YSteps: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.d, objective.NewRastrigin(2))
			require.ErrorIs(t, err, ErrInvalidDomain)
		})
	}
}

func TestBuildUnknownSelector(t *testing.T) {
	_, err := Build(-1, 1, 3, -1, 1, 3, objective.Selector(99))
	require.ErrorIs(t, err, objective.ErrUnknownSelector)
}

func TestNewRejectsNonPlanarFunction(t *testing.T) {
	d := Domain{XMin: -1, XMax: 1, XSteps: 3, YMin: -1, YMax: 1, YSteps: 3}
	_, err := New(d, objective.NewRastrigin(3))
	require.ErrorIs(t, err, objective.ErrDimensionMismatch)
}

func TestNewRejectsBadDescentConfig(t *testing.T) {
	d := Domain{XMin: -1, XMax: 1, XSteps: 3, YMin: -1, YMax: 1, YSteps: 3}
	_, err := New(d, objective.NewRastrigin(2), WithDescentConfig(descent.Config{Alpha: 2}))
	require.ErrorIs(t, err, descent.ErrInvalidConfig)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s, err := Build(-1, 1, 3, -1, 1, 3, objective.SelectQuadratic)
	require.NoError(t, err)

	x := s.X()
	x[0] = 42
	z := s.Z()
	z[0] = 42

	assert.Equal(t, -1.0, s.X()[0])
	assert.Equal(t, 2.0, s.Z()[0])
}

func TestRange(t *testing.T) {
	s, err := Build(-1, 1, 3, -1, 1, 3, objective.SelectQuadratic)
	require.NoError(t, err)

	lo, hi := s.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 2.0, hi)
}

func TestAtPanicsOutOfRange(t *testing.T) {
	s, err := Build(-1, 1, 3, -1, 1, 3, objective.SelectQuadratic)
	require.NoError(t, err)

	assert.Panics(t, func() { s.At(3, 0) })
	assert.Panics(t, func() { s.At(0, -1) })
}

func TestMinimizeFlattened(t *testing.T) {
	s, err := Build(-6, 6, 50, -6, 6, 50, objective.SelectQuadratic)
	require.NoError(t, err)

	path, err := s.Minimize(5, 5)
	require.NoError(t, err)
	require.Zero(t, len(path)%3)
	require.LessOrEqual(t, len(path)/3, s.DescentConfig().MaxIter+1)

	assert.Equal(t, []float64{5, 5, 50}, path[:3])
	n := len(path)
	assert.InDelta(t, 0, path[n-3], 1e-6)
	assert.InDelta(t, 0, path[n-2], 1e-6)
	for i := 5; i < n; i += 3 {
		require.LessOrEqual(t, path[i], path[i-3])
	}
}

func TestMinimizeAtStationaryPoint(t *testing.T) {
	s, err := Build(-5, 5, 20, -5, 5, 20, objective.SelectRastrigin)
	require.NoError(t, err)

	path, err := s.Minimize(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, path)
}

func TestMinimizeFreshTrajectories(t *testing.T) {
	s, err := Build(-5, 5, 20, -5, 5, 20, objective.SelectRastrigin)
	require.NoError(t, err)

	a, err := s.Minimize(2.3, -1.7)
	require.NoError(t, err)
	b, err := s.Minimize(2.3, -1.7)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	a[0] = 1000
	assert.NotEqual(t, a[0], b[0])
}

func TestMinimizeRejectsNonFiniteStart(t *testing.T) {
	s, err := Build(-1, 1, 3, -1, 1, 3, objective.SelectQuadratic)
	require.NoError(t, err)

	_, err = s.Minimize(math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	_, err = s.Start(0, math.Inf(-1))
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestWithDescentConfig(t *testing.T) {
	cfg := descent.DefaultConfig()
	cfg.Alpha = 0.001
	cfg.MaxIter = 5
	s, err := Build(-6, 6, 10, -6, 6, 10, objective.SelectQuadratic, WithDescentConfig(cfg))
	require.NoError(t, err)

	cfg = s.DescentConfig()
	assert.Equal(t, 0.001, cfg.Alpha)
	assert.Equal(t, 0.8, cfg.Beta)
	assert.Equal(t, 5, cfg.MaxIter)

	traj, err := s.Descend(5, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, traj.Len())
	assert.Equal(t, descent.ReasonMaxIterations, traj.Reason)
}

func TestWithDescentConfigKeepsZeroFields(t *testing.T) {
	_, err := Build(-1, 1, 3, -1, 1, 3, objective.SelectQuadratic,
		WithDescentConfig(descent.Config{Alpha: 0.001, MaxIter: 5}))
	require.ErrorIs(t, err, descent.ErrInvalidConfig)
}

func TestNewRejectsNonFiniteHeights(t *testing.T) {
	_, err := Build(-1e200, 1e200, 3, -1, 1, 3, objective.SelectQuadratic)
	require.ErrorIs(t, err, ErrInvalidDomain)
}

func TestStartRejectsNonFiniteValue(t *testing.T) {
	s, err := Build(-1, 1, 3, -1, 1, 3, objective.SelectQuadratic)
	require.NoError(t, err)

	_, err = s.Descend(1e200, 0)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	_, err = s.Minimize(0, -1e200)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	_, err = s.Start(1e200, 1e200)
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestConcurrentMinimize(t *testing.T) {
	s, err := Build(-5, 5, 30, -5, 5, 30, objective.SelectRastrigin)
	require.NoError(t, err)

	want, err := s.Minimize(1.7, -2.2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.Minimize(1.7, -2.2)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
