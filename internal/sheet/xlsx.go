package sheet

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/xuri/excelize/v2"
)

// XLSX is one worksheet of a workbook on disk. Writes are saved to the same
// path; a batch is saved once.
type XLSX struct {
	mu        sync.Mutex
	file      *excelize.File
	worksheet string
}

// OpenXLSX opens the workbook at path and selects worksheet.
func OpenXLSX(path, worksheet string) (*XLSX, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	idx, err := f.GetSheetIndex(worksheet)
	if err != nil || idx < 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrWorksheetNotFound, worksheet)
	}

	return &XLSX{file: f, worksheet: worksheet}, nil
}

// Headers returns the first row, or nil for an empty worksheet.
func (x *XLSX) Headers(ctx context.Context) ([]string, error) {
	rows, err := x.Values(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Values returns all rows. Trailing empty cells are not included.
func (x *XLSX) Values(ctx context.Context) ([][]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	rows, err := x.file.GetRows(x.worksheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", x.worksheet, err)
	}
	return rows, nil
}

// UpdateCell writes and saves a single cell.
func (x *XLSX) UpdateCell(ctx context.Context, row, col int, value string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.set(row, col, value); err != nil {
		return err
	}
	return x.file.Save()
}

// BatchUpdate writes every cell and saves the workbook once.
func (x *XLSX) BatchUpdate(ctx context.Context, batch core.BatchUpdate) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, w := range batch.Data {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := x.set(w.Row, w.Column, w.Value); err != nil {
			return err
		}
	}
	return x.file.Save()
}

func (x *XLSX) set(row, col int, value string) error {
	addr, err := core.CellAddress(row, col)
	if err != nil {
		return err
	}
	if err := x.file.SetCellStr(x.worksheet, addr, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", x.worksheet, addr, err)
	}
	return nil
}

// Close releases the workbook.
func (x *XLSX) Close() error {
	return x.file.Close()
}
