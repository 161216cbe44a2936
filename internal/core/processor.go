package core

// processor.go runs one sequential pass over a sheet.
//
// Order of operations:
//  1. Ensure the marker column (before any data row is read)
//  2. Fix the run timestamp
//  3. Read all rows once
//  4. Validate, mark, and stage each record in row order
//  5. Flush all markers in one batch
//
// A source failure in steps 1-3 aborts the run before any marker is
// written. Cancellation during step 4 also aborts without flushing.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ContextCheckInterval is how often (in rows) to check for cancellation.
var ContextCheckInterval = 100

// Processor executes runs against a Sheet.
type Processor struct {
	// Logger receives row and summary events. Defaults to slog.Default().
	Logger *slog.Logger

	// Now is the clock for the run timestamp and staging time.
	Now func() time.Time

	// NewRunID generates run identifiers. Defaults to uuid.NewString.
	NewRunID func() string
}

// NewProcessor creates a Processor with default clock, logger and ids.
func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Processor) runID() string {
	if p.NewRunID != nil {
		return p.NewRunID()
	}
	return uuid.NewString()
}

// Run performs one pass over the sheet. The returned result is never nil;
// on error it holds whatever was known when the run stopped.
func (p *Processor) Run(ctx context.Context, sheet Sheet) (*RunResult, error) {
	began := time.Now()
	result := &RunResult{
		RunID:     p.runID(),
		StartedAt: p.now(),
	}
	logger := p.logger().With("run_id", result.RunID)

	defer func() {
		result.Duration = time.Since(began)
	}()

	col, err := EnsureMarkerColumn(ctx, sheet)
	if err != nil {
		return result, sourceError(ctx, "ensure marker column", err)
	}
	result.MarkerColumn = col
	result.Timestamp = RunTimestamp(p.now())

	values, err := sheet.Values(ctx)
	if err != nil {
		return result, sourceError(ctx, "read rows", err)
	}
	idx, records := ReadRecords(values)

	logger.Debug("rows read", "rows", len(records), "marker_column", col, "headers", idx.Headers())

	stager := NewOrderStager(p.Now)
	markers := NewMarkerBatcher(col, result.Timestamp)

	for i, rec := range records {
		if i%ContextCheckInterval == 0 && ctx.Err() != nil {
			return result, fmt.Errorf("run cancelled after %d rows: %w", i, ctx.Err())
		}

		result.RowsExamined++
		outcome := ValidateRecord(rec)
		markers.Add(rec.Row())

		if !outcome.Valid() {
			result.RowErrors = append(result.RowErrors, RowError{Row: rec.Row(), Codes: outcome.Codes})
			logger.Warn("row invalid", "row", rec.Row(), "missing", outcome.String())
			logger.Debug("invalid row contents", "record", rec)
			continue
		}

		staged := stager.Stage(rec, outcome)
		switch staged.Status {
		case StageCreated:
			logger.Info("order staged",
				"row", rec.Row(),
				"order_id", staged.Key,
				"customer", staged.Payload.Customer,
				"total", staged.Payload.Total,
			)
		case StageDuplicate:
			result.Duplicates++
			logger.Info("duplicate order skipped", "row", rec.Row(), "order_id", staged.Key)
		case StageSkippedStatus:
			result.SkippedStatus++
			logger.Debug("status not new", "row", rec.Row(), "status", outcome.Status)
		}
	}

	result.Orders = stager.Orders()

	written, err := markers.Flush(ctx, sheet)
	if err != nil {
		return result, err
	}
	result.MarkersWritten = written

	logger.Info("run completed",
		"rows_examined", result.RowsExamined,
		"orders_staged", result.OrdersStaged(),
		"rows_with_errors", len(result.RowErrors),
		"duplicates", result.Duplicates,
		"markers_written", written,
	)

	return result, nil
}

// sourceError classifies a failed source call. When the run's own context
// has ended, that is reported instead of an unavailable source.
func sourceError(ctx context.Context, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", step, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, step, err)
}
