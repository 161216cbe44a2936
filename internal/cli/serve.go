package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sheetorders/internal/web"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API and optional scheduler",
		Long: `Start the HTTP API. POST /api/runs triggers a run; GET /api/runs lists
recent runs. When RUN_INTERVAL is set, runs also repeat on that interval.

Example:
  SHEET_ID=orders.xlsx RUN_INTERVAL=15m sheetorders serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	cfg, err := opts.setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, src, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	server := web.NewServer(svc, cfg)

	// Background jobs stop before the server does
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	go svc.StartScheduler(jobCtx, cfg.Run.Interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	// Stops scheduler ticks; a scheduled run in progress keeps going
	cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Wait for the active run so its markers are flushed
	if status := svc.RunStatus(); status.Running {
		slog.Info("waiting for run to complete", "since", status.Since)
		if err := svc.WaitForRuns(shutdownCtx); err != nil {
			slog.Warn("runs did not complete in time", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}
