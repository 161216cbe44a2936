package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sheetorders/internal/config"
	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/JonMunkholm/sheetorders/internal/sheet"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process the sheet once",
		Long: `Process every row of the configured worksheet once.

Each row is validated, rows with status "new" are staged as orders
(deduplicated by order id), and every examined row gets the run timestamp
in the processed_at column.

Example:
  SHEET_ID=orders.xlsx sheetorders run
  SHEET_BACKEND=csv SHEET_ID=orders.csv sheetorders run --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func runOnce(ctx context.Context, opts *RootOptions, w io.Writer) error {
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

	out := &OutputFormatter{Format: opts.Format, Writer: w}

	result, err := svc.Execute(core.ContextWithTrigger(ctx, core.TriggerCLI))
	if err != nil {
		runID := ""
		if result != nil {
			runID = result.RunID
		}
		out.Error(err, runID)
		return WrapExitError(ExitFailure, "run failed", err)
	}

	return out.Success(Summary{RunResult: result})
}

// newService wires the configured sheet source into a run service.
func newService(ctx context.Context, cfg *config.Config) (*core.Service, *sheet.Source, error) {
	src, err := sheet.NewSource(ctx, cfg)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open sheet source", err)
	}

	svc, err := core.NewService(src.Open, core.ServiceConfig{
		RunTimeout:  cfg.Run.Timeout,
		MaxWait:     cfg.Run.MaxWait,
		HistorySize: cfg.Run.HistorySize,
	})
	if err != nil {
		src.Close()
		return nil, nil, WrapExitError(ExitCommandError, "create service", err)
	}
	return svc, src, nil
}
