package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/surfacedescent/internal/server"
	"github.com/cwbudde/surfacedescent/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveDataDir   string
	serveNoArchive bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for visualization hosts",
	Long: `Starts the HTTP API. Clients create surface sessions, read the sampled
grid and request descent trajectories, either in one response or streamed
step by step over server-sent events.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for archived runs")
	serveCmd.Flags().BoolVar(&serveNoArchive, "no-archive", false, "Do not archive minimize results")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// A nil interface, not a nil *FSStore, disables archiving.
	var runStore store.Store
	if !serveNoArchive {
		fs, err := store.NewFSStore(serveDataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		runStore = fs
	}

	srv := server.NewServer(serveAddr, runStore)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
