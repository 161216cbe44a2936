package core

// markers.go records which rows a run examined.
//
// Every examined row gets exactly one marker holding the run timestamp, so a
// later pass can pick out all rows touched by one run. Markers accumulate in
// memory and are written in a single batch at the end of the run.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

// MarkerColumnName is the normalized header of the marker column.
const MarkerColumnName HeaderKey = "processed_at"

// RunTimestampLayout is the 12-hour local format of the run timestamp,
// e.g. "09/25/2025 02:03:07 PM".
const RunTimestampLayout = "01/02/2006 03:04:05 PM"

// ValueInputRaw stores values as typed, without spreadsheet parsing.
const ValueInputRaw = "RAW"

// RunTimestamp formats the single timestamp shared by every marker of a run.
func RunTimestamp(t time.Time) string {
	return t.Local().Format(RunTimestampLayout)
}

// CellAddress converts a 1-based row and column to an A1 address.
func CellAddress(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col, row)
}

// EnsureMarkerColumn returns the 1-based marker column, creating the header
// when it is missing. A new column goes one past the widest row, so cells
// beyond the header row are never overwritten. An empty sheet gets the
// header in A1.
func EnsureMarkerColumn(ctx context.Context, sheet Sheet) (int, error) {
	headers, err := sheet.Headers(ctx)
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}

	if col, ok := NewHeaderIndex(headers).Column(MarkerColumnName); ok {
		return col, nil
	}

	values, err := sheet.Values(ctx)
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}

	col := max(len(headers), widestRow(values)) + 1
	if err := sheet.UpdateCell(ctx, 1, col, string(MarkerColumnName)); err != nil {
		return 0, fmt.Errorf("write marker header: %w", err)
	}
	return col, nil
}

// widestRow returns the cell count of the longest row, ignoring trailing
// empty cells.
func widestRow(rows [][]string) int {
	widest := 0
	for _, row := range rows {
		n := len(row)
		for n > 0 && row[n-1] == "" {
			n--
		}
		widest = max(widest, n)
	}
	return widest
}

// MarkerWrite is one queued marker.
type MarkerWrite struct {
	Row    int
	Column int
	Value  string
}

// MarkerBatcher collects markers for one run.
type MarkerBatcher struct {
	column int
	stamp  string

	mu     sync.Mutex
	writes []MarkerWrite
}

// NewMarkerBatcher creates a batcher writing stamp into column.
func NewMarkerBatcher(column int, stamp string) *MarkerBatcher {
	return &MarkerBatcher{column: column, stamp: stamp}
}

// Add queues the marker for a row.
func (b *MarkerBatcher) Add(row int) {
	b.mu.Lock()
	b.writes = append(b.writes, MarkerWrite{Row: row, Column: b.column, Value: b.stamp})
	b.mu.Unlock()
}

// Writes returns a copy of the queued markers.
func (b *MarkerBatcher) Writes() []MarkerWrite {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]MarkerWrite, len(b.writes))
	copy(out, b.writes)
	return out
}

// Batch renders the queued markers as one write request.
func (b *MarkerBatcher) Batch() (BatchUpdate, error) {
	writes := b.Writes()
	batch := BatchUpdate{
		ValueInputOption: ValueInputRaw,
		Data:             make([]CellWrite, 0, len(writes)),
	}
	for _, w := range writes {
		addr, err := CellAddress(w.Row, w.Column)
		if err != nil {
			return BatchUpdate{}, fmt.Errorf("marker for row %d: %w", w.Row, err)
		}
		batch.Data = append(batch.Data, CellWrite{
			Row:    w.Row,
			Column: w.Column,
			Range:  addr,
			Value:  w.Value,
		})
	}
	return batch, nil
}

// Flush submits every queued marker in one BatchUpdate call. Nothing is
// sent when no marker is queued. Returns the number of markers written.
func (b *MarkerBatcher) Flush(ctx context.Context, sheet Sheet) (int, error) {
	batch, err := b.Batch()
	if err != nil {
		return 0, err
	}
	if len(batch.Data) == 0 {
		return 0, nil
	}
	if err := sheet.BatchUpdate(ctx, batch); err != nil {
		return 0, fmt.Errorf("flush markers: %w", err)
	}
	return len(batch.Data), nil
}
