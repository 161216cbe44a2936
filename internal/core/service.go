package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultRunTimeout bounds a single run.
const DefaultRunTimeout = 10 * time.Minute

// SheetOpener opens the sheet for one run. The sheet is closed after the run
// when it implements io.Closer.
type SheetOpener func(ctx context.Context) (Sheet, error)

// ServiceConfig tunes a Service. Zero values take defaults.
type ServiceConfig struct {
	Processor   *Processor
	RunTimeout  time.Duration
	MaxWait     time.Duration
	HistorySize int
}

// Service runs the pipeline on demand and remembers recent runs. It is safe
// for concurrent use; overlapping requests queue on the run gate.
type Service struct {
	processor  *Processor
	gate       *RunGate
	history    *RunHistory
	open       SheetOpener
	runTimeout time.Duration
}

// NewService creates a Service that opens its sheet through open.
func NewService(open SheetOpener, cfg ServiceConfig) (*Service, error) {
	if open == nil {
		return nil, ErrSheetNotConfigured
	}

	p := cfg.Processor
	if p == nil {
		p = NewProcessor()
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}

	return &Service{
		processor:  p,
		gate:       NewRunGate(cfg.MaxWait),
		history:    NewRunHistory(cfg.HistorySize),
		open:       open,
		runTimeout: timeout,
	}, nil
}

// Execute performs one run. It waits for the run gate first and returns
// ErrRunInProgress if the gate does not open in time; such rejections are
// not recorded. Every run that starts is recorded in the history.
func (s *Service) Execute(ctx context.Context) (*RunResult, error) {
	if err := s.gate.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.Release()

	return s.execute(ctx)
}

// execute runs with the gate already held.
func (s *Service) execute(ctx context.Context) (*RunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	trigger := TriggerFromContext(ctx)
	logger := s.processor.logger().With("trigger", trigger)

	result, err := s.run(runCtx)
	rec := RunRecord{Result: result, Trigger: trigger}
	if err != nil {
		msg := MapError(err)
		rec.Error = err.Error()
		rec.Code = msg.Code
		logger.Error("run failed",
			"run_id", result.RunID,
			"code", msg.Code,
			"error", err,
		)
	}
	s.history.Add(rec)

	return result, err
}

func (s *Service) run(ctx context.Context) (*RunResult, error) {
	sheet, err := s.open(ctx)
	if err != nil {
		result := &RunResult{RunID: s.processor.runID(), StartedAt: s.processor.now()}
		if !errors.Is(err, ErrSourceUnavailable) && !errors.Is(err, ErrSheetNotConfigured) {
			err = sourceError(ctx, "open sheet", err)
		}
		return result, err
	}
	if c, ok := sheet.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				slog.Warn("close sheet", "error", cerr)
			}
		}()
	}

	return s.processor.Run(ctx, sheet)
}

// History returns up to limit recent runs, newest first.
func (s *Service) History(limit int) []RunRecord {
	return s.history.Recent(limit)
}

// Lookup returns a recorded run by id, or ErrRunNotFound.
func (s *Service) Lookup(runID string) (RunRecord, error) {
	rec, ok := s.history.Get(runID)
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return rec, nil
}

// RunStatus reports whether a run is active and how many callers wait.
func (s *Service) RunStatus() RunGateStatus {
	return s.gate.Status()
}

// WaitForRuns blocks until the active run finishes or ctx ends.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.gate.WaitIdle(ctx)
}
