package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/store"
	"github.com/cwbudde/surfacedescent/internal/surface"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	minimizeGrid    gridFlags
	x0, y0          float64
	descentCfg      descent.Config
	minimizeFormat  string
	saveRun         bool
	minimizeDataDir string
)

var minimizeCmd = &cobra.Command{
	Use:   "minimize",
	Short: "Run gradient descent from a start point",
	Long: `Runs steepest descent with a backtracking (Armijo) line search on the
selected function, starting at (--x0, --y0). Prints every accepted point.
With --save the run and its trajectory are archived under --data-dir.`,
	RunE: runMinimize,
}

func init() {
	def := descent.DefaultConfig()

	minimizeGrid.register(minimizeCmd)
	minimizeCmd.Flags().Float64Var(&x0, "x0", 0, "Start x (required)")
	minimizeCmd.Flags().Float64Var(&y0, "y0", 0, "Start y (required)")
	minimizeCmd.Flags().Float64Var(&descentCfg.Alpha, "alpha", def.Alpha, "Armijo sufficient-decrease coefficient")
	minimizeCmd.Flags().Float64Var(&descentCfg.Beta, "beta", def.Beta, "Step shrink factor")
	minimizeCmd.Flags().Float64Var(&descentCfg.Tol, "tol", def.Tol, "Gradient-norm convergence tolerance")
	minimizeCmd.Flags().IntVar(&descentCfg.MaxIter, "max-iter", def.MaxIter, "Maximum outer iterations")
	minimizeCmd.Flags().Float64Var(&descentCfg.MinStep, "min-step", def.MinStep, "Line-search step floor")
	minimizeCmd.Flags().StringVar(&minimizeFormat, "format", "table", "Output format: table, csv, json")
	minimizeCmd.Flags().BoolVar(&saveRun, "save", false, "Archive the run")
	minimizeCmd.Flags().StringVar(&minimizeDataDir, "data-dir", "./data", "Base directory for archived runs")

	minimizeCmd.MarkFlagRequired("x0")
	minimizeCmd.MarkFlagRequired("y0")
	rootCmd.AddCommand(minimizeCmd)
}

func runMinimize(cmd *cobra.Command, args []string) error {
	if err := checkTrajectoryFormat(minimizeFormat); err != nil {
		return err
	}

	sel, surf, err := minimizeGrid.build(surface.WithDescentConfig(descentCfg))
	if err != nil {
		return fmt.Errorf("failed to build surface: %w", err)
	}

	slog.Info("Starting descent", "function", sel.String(), "x0", x0, "y0", y0, "max_iter", descentCfg.MaxIter)

	start := time.Now()
	traj, err := surf.Descend(x0, y0)
	if err != nil {
		return fmt.Errorf("descent failed: %w", err)
	}
	elapsed := time.Since(start)

	final := traj.Final()
	slog.Info("Descent complete",
		"reason", traj.Reason.String(),
		"steps", traj.Len(),
		"iterations", traj.Iterations,
		"initial_value", traj.Steps[0].F,
		"final_value", final.F,
		"elapsed", elapsed,
	)

	if saveRun {
		runStore, err := store.NewFSStore(minimizeDataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		run := store.NewRun(uuid.New().String(), store.RunConfig{
			Function: sel,
			Domain:   surf.Domain(),
			Descent:  surf.DescentConfig(),
			StartX:   x0,
			StartY:   y0,
		}, traj)
		if err := store.Archive(runStore, run, traj); err != nil {
			return fmt.Errorf("failed to archive run: %w", err)
		}
		slog.Info("Run archived", "run_id", run.ID, "path", runStore.RunDir(run.ID))
		fmt.Fprintf(os.Stderr, "Saved run %s\n", run.ID)
	}

	return writeTrajectory(cmd.OutOrStdout(), traj, minimizeFormat)
}

func checkTrajectoryFormat(format string) error {
	switch format {
	case "table", "csv", "json":
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeTrajectory(w io.Writer, traj *descent.Trajectory, format string) error {
	switch format {
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ITER\tX\tY\tF\tSTEP")
		for _, s := range traj.Steps {
			fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t%.6g\t%.3g\n", s.Iteration, s.X[0], s.X[1], s.F, s.StepSize)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\nStopped: %s after %d iteration(s), %d point(s)\n", traj.Reason, traj.Iterations, traj.Len())
		return err

	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"iteration", "x", "y", "f", "step"}); err != nil {
			return err
		}
		for _, s := range traj.Steps {
			row := []string{
				fmt.Sprint(s.Iteration),
				formatFloat(s.X[0]),
				formatFloat(s.X[1]),
				formatFloat(s.F),
				formatFloat(s.StepSize),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case "json":
		return json.NewEncoder(w).Encode(struct {
			Trajectory []float64      `json:"trajectory"`
			Reason     descent.Reason `json:"reason"`
			Iterations int            `json:"iterations"`
		}{traj.Flatten2D(), traj.Reason, traj.Iterations})

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
