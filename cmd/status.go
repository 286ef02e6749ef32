package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Query server status or a specific session",
	Long: `Queries the server for surface sessions.
If no session-id is provided, lists all sessions.
If session-id is provided, shows the surface and run details for that session.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

// sessionSummary mirrors the session listing returned by the server
type sessionSummary struct {
	ID     string `json:"id"`
	Config struct {
		Function string  `json:"function"`
		XMin     float64 `json:"xMin"`
		XMax     float64 `json:"xMax"`
		XSteps   int     `json:"xSteps"`
		YMin     float64 `json:"yMin"`
		YMax     float64 `json:"yMax"`
		YSteps   int     `json:"ySteps"`
	} `json:"config"`
	CreatedAt time.Time `json:"createdAt"`
	Runs      int       `json:"runs"`
	LastRunID string    `json:"lastRunId"`
}

// sessionDetail mirrors a single surface response
type sessionDetail struct {
	ID       string `json:"id"`
	Function string `json:"function"`
	Domain   struct {
		XMin   float64 `json:"xMin"`
		XMax   float64 `json:"xMax"`
		XSteps int     `json:"xSteps"`
		YMin   float64 `json:"yMin"`
		YMax   float64 `json:"yMax"`
		YSteps int     `json:"ySteps"`
	} `json:"domain"`
	Descent struct {
		Alpha   float64 `json:"alpha"`
		Beta    float64 `json:"beta"`
		Tol     float64 `json:"tol"`
		MaxIter int     `json:"maxIter"`
	} `json:"descent"`
	CreatedAt time.Time `json:"createdAt"`
	Runs      int       `json:"runs"`
	ZMin      float64   `json:"zMin"`
	ZMax      float64   `json:"zMax"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return listSessions(out, fmt.Sprintf("%s/api/v1/surfaces", serverURL))
	}
	sessionID := args[0]
	return getSessionStatus(out, fmt.Sprintf("%s/api/v1/surfaces/%s", serverURL, sessionID), sessionID)
}

func listSessions(out io.Writer, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var sessions []sessionSummary
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found")
		return nil
	}

	fmt.Fprintf(out, "Found %d session(s):\n\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(out, "Session ID: %s\n", s.ID)
		fmt.Fprintf(out, "  Function: %s\n", s.Config.Function)
		fmt.Fprintf(out, "  Grid: %dx%d over [%g, %g] x [%g, %g]\n",
			s.Config.XSteps, s.Config.YSteps, s.Config.XMin, s.Config.XMax, s.Config.YMin, s.Config.YMax)
		fmt.Fprintf(out, "  Runs: %d\n", s.Runs)
		if s.LastRunID != "" {
			fmt.Fprintf(out, "  Last run: %s\n", s.LastRunID)
		}
		fmt.Fprintln(out)
	}

	return nil
}

func getSessionStatus(out io.Writer, url, sessionID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var s sessionDetail
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Fprintf(out, "Session: %s\n", s.ID)
	fmt.Fprintf(out, "Function: %s\n", s.Function)
	fmt.Fprintf(out, "Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Surface:")
	fmt.Fprintf(out, "  X: [%g, %g], %d samples\n", s.Domain.XMin, s.Domain.XMax, s.Domain.XSteps)
	fmt.Fprintf(out, "  Y: [%g, %g], %d samples\n", s.Domain.YMin, s.Domain.YMax, s.Domain.YSteps)
	fmt.Fprintf(out, "  Z range: [%.6g, %.6g]\n", s.ZMin, s.ZMax)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Descent:")
	fmt.Fprintf(out, "  Alpha: %g\n", s.Descent.Alpha)
	fmt.Fprintf(out, "  Beta: %g\n", s.Descent.Beta)
	fmt.Fprintf(out, "  Tolerance: %g\n", s.Descent.Tol)
	fmt.Fprintf(out, "  Max iterations: %d\n", s.Descent.MaxIter)
	fmt.Fprintf(out, "  Runs: %d\n", s.Runs)

	return nil
}
