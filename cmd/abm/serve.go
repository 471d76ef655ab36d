package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anythingbutmetric/abm/internal/api"
	"github.com/anythingbutmetric/abm/internal/config"
	"github.com/anythingbutmetric/abm/internal/graph"
	"github.com/anythingbutmetric/abm/internal/metrics"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/storage"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion API over HTTP",
	Long: `Serve the conversion graph as a small JSON API.

Endpoints:
  GET /v1/convert?from=ID&to=ID&amount=N&max_routes=N
  GET /v1/units
  GET /v1/islands
  GET /healthz
  GET /readyz
  GET /metrics

The data files are watched; edits to units.json or edges.json are
picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	repoRoot := mustFindRepository()

	loader, err := storage.NewLoader("live", config.UnitsPath(repoRoot), config.EdgesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "loading snapshot: %v", err)
	}

	cache := graph.NewCache()
	loader.OnSwap(func(old, new *snapshot.Snapshot) {
		cache.Evict(old)
		metrics.SnapshotReloads.Inc()
		slog.Info("snapshot reloaded",
			"units", len(new.Units),
			"edges", len(new.Edges))
	})

	stopWatch, err := loader.Watch(func(err error) {
		slog.Error("data watch error", "error", err)
	})
	if err != nil {
		exitWithError(ExitError, "watching data files: %v", err)
	}
	defer stopWatch()

	srv := &http.Server{
		Addr:         serveAddr,
		Handler:      api.New(loader, cache),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", serveAddr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitWithError(ExitError, "server: %v", err)
		}
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			exitWithError(ExitError, "shutdown: %v", err)
		}
	}
	return nil
}
