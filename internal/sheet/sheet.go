// Package sheet provides the tabular sources a run reads orders from and
// writes processed markers back to.
//
// Backends:
//   - xlsx: a workbook on disk, one worksheet per run (excelize)
//   - csv: a single CSV file rewritten atomically on write
//   - postgres: rows stored as text arrays in sheet_rows (pgx)
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetorders/internal/config"
	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrWorksheetNotFound is returned when the configured tab does not exist.
var ErrWorksheetNotFound = errors.New("worksheet not found")

// Source opens the configured sheet once per run. For postgres the
// connection pool is shared across runs and released by Close.
type Source struct {
	cfg  config.SheetConfig
	pool *pgxpool.Pool
}

// NewSource validates the sheet settings and prepares shared resources.
func NewSource(ctx context.Context, cfg *config.Config) (*Source, error) {
	if strings.TrimSpace(cfg.Sheet.ID) == "" {
		return nil, core.ErrSheetNotConfigured
	}

	s := &Source{cfg: cfg.Sheet}

	switch strings.ToLower(cfg.Sheet.Backend) {
	case config.BackendXLSX, config.BackendCSV:
	case config.BackendPostgres:
		pool, err := NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrSourceUnavailable, err)
		}
		if err := EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%w: %w", core.ErrSourceUnavailable, err)
		}
		s.pool = pool
	default:
		return nil, fmt.Errorf("unknown sheet backend %q", cfg.Sheet.Backend)
	}

	return s, nil
}

// Open returns a Sheet for one run. Failures wrap core.ErrSourceUnavailable.
func (s *Source) Open(ctx context.Context) (core.Sheet, error) {
	var (
		sh  core.Sheet
		err error
	)

	switch strings.ToLower(s.cfg.Backend) {
	case config.BackendXLSX:
		sh, err = OpenXLSX(s.cfg.ID, s.cfg.Worksheet)
	case config.BackendCSV:
		sh, err = OpenCSV(s.cfg.ID)
	case config.BackendPostgres:
		sh = NewPostgres(s.pool, s.cfg.ID, s.cfg.Worksheet)
	default:
		err = fmt.Errorf("unknown sheet backend %q", s.cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open sheet: %w", core.ErrSourceUnavailable, err)
	}
	return sh, nil
}

// Close releases shared resources.
func (s *Source) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// setCell writes value at a 1-based column, padding the row with "".
func setCell(cells []string, col int, value string) []string {
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	return cells
}

// setGridCell writes value at a 1-based row and column, growing the grid.
func setGridCell(rows [][]string, row, col int, value string) [][]string {
	for len(rows) < row {
		rows = append(rows, nil)
	}
	rows[row-1] = setCell(rows[row-1], col, value)
	return rows
}

func checkPosition(row, col int) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell position row=%d col=%d", row, col)
	}
	return nil
}
