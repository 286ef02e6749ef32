package main

import (
	"github.com/cwbudde/surfacedescent/internal/objective"
	"github.com/cwbudde/surfacedescent/internal/surface"
	"github.com/spf13/cobra"
)

// gridFlags holds the function and sampling domain shared by surface and minimize.
type gridFlags struct {
	function string
	domain   surface.Domain
}

func (g *gridFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.function, "function", "rastrigin", "Objective function: quadratic, rastrigin, rosenbrock")
	cmd.Flags().Float64Var(&g.domain.XMin, "x-min", -5.12, "Lower x bound")
	cmd.Flags().Float64Var(&g.domain.XMax, "x-max", 5.12, "Upper x bound")
	cmd.Flags().IntVar(&g.domain.XSteps, "x-steps", 101, "Number of x samples (>= 2)")
	cmd.Flags().Float64Var(&g.domain.YMin, "y-min", -5.12, "Lower y bound")
	cmd.Flags().Float64Var(&g.domain.YMax, "y-max", 5.12, "Upper y bound")
	cmd.Flags().IntVar(&g.domain.YSteps, "y-steps", 101, "Number of y samples (>= 2)")
}

// build resolves the function and samples it.
func (g *gridFlags) build(opts ...surface.Option) (objective.Selector, *surface.Surface, error) {
	sel, err := objective.ParseSelector(g.function)
	if err != nil {
		return 0, nil, err
	}
	d := g.domain
	surf, err := surface.Build(d.XMin, d.XMax, d.XSteps, d.YMin, d.YMax, d.YSteps, sel, opts...)
	if err != nil {
		return 0, nil, err
	}
	return sel, surf, nil
}
