package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunTimestamp(t *testing.T) {
	ts := time.Date(2025, 9, 25, 14, 3, 7, 0, time.Local)
	if got := RunTimestamp(ts); got != "09/25/2025 02:03:07 PM" {
		t.Errorf("RunTimestamp() = %q", got)
	}
}

func TestCellAddress(t *testing.T) {
	tests := []struct {
		row, col int
		want     string
	}{
		{1, 1, "A1"},
		{2, 5, "E2"},
		{10, 27, "AA10"},
	}
	for _, tt := range tests {
		got, err := CellAddress(tt.row, tt.col)
		if err != nil || got != tt.want {
			t.Errorf("CellAddress(%d, %d) = %q, %v; want %q", tt.row, tt.col, got, err, tt.want)
		}
	}

	if _, err := CellAddress(0, 1); err == nil {
		t.Error("CellAddress(0, 1) should fail")
	}
}

func TestEnsureMarkerColumn(t *testing.T) {
	ctx := context.Background()

	t.Run("empty sheet gets header in A1", func(t *testing.T) {
		sheet := newFakeSheet()
		col, err := EnsureMarkerColumn(ctx, sheet)
		if err != nil || col != 1 {
			t.Fatalf("EnsureMarkerColumn() = %d, %v; want 1", col, err)
		}
		if len(sheet.cellUpdates) != 1 || sheet.cellUpdates[0] != (CellWrite{Row: 1, Column: 1, Value: "processed_at"}) {
			t.Errorf("cell updates = %+v", sheet.cellUpdates)
		}
	})

	t.Run("missing column is appended", func(t *testing.T) {
		sheet := newFakeSheet([]string{"Status", "Email"})
		col, err := EnsureMarkerColumn(ctx, sheet)
		if err != nil || col != 3 {
			t.Fatalf("EnsureMarkerColumn() = %d, %v; want 3", col, err)
		}
		if got := sheet.rows[0]; len(got) != 3 || got[2] != "processed_at" {
			t.Errorf("header row = %v", got)
		}
	})

	t.Run("existing column is reused without writes", func(t *testing.T) {
		sheet := newFakeSheet([]string{"Status", " Processed At ", "Email"})
		col, err := EnsureMarkerColumn(ctx, sheet)
		if err != nil || col != 2 {
			t.Fatalf("EnsureMarkerColumn() = %d, %v; want 2", col, err)
		}
		if len(sheet.cellUpdates) != 0 {
			t.Errorf("unexpected writes: %+v", sheet.cellUpdates)
		}
	})

	t.Run("second call is a no-op", func(t *testing.T) {
		sheet := newFakeSheet([]string{"Status"})
		first, _ := EnsureMarkerColumn(ctx, sheet)
		second, err := EnsureMarkerColumn(ctx, sheet)
		if err != nil || first != second {
			t.Fatalf("columns %d then %d (%v)", first, second, err)
		}
		if len(sheet.cellUpdates) != 1 {
			t.Errorf("got %d header writes, want 1", len(sheet.cellUpdates))
		}
	})

	t.Run("column goes past rows wider than the header", func(t *testing.T) {
		sheet := newFakeSheet(
			[]string{"Status", "Email"},
			[]string{"new", "ana@example.com", "note", "", ""},
			[]string{"new", "bob@example.com"},
		)
		col, err := EnsureMarkerColumn(ctx, sheet)
		if err != nil || col != 4 {
			t.Fatalf("EnsureMarkerColumn() = %d, %v; want 4", col, err)
		}
		if got := sheet.rows[1][2]; got != "note" {
			t.Errorf("row 2 column 3 = %q, want note", got)
		}
	})

	t.Run("duplicate marker headers use the last", func(t *testing.T) {
		sheet := newFakeSheet([]string{"processed_at", "Status", "Processed-At"})
		col, err := EnsureMarkerColumn(ctx, sheet)
		if err != nil || col != 3 {
			t.Fatalf("EnsureMarkerColumn() = %d, %v; want 3", col, err)
		}
	})

	t.Run("rows unreadable", func(t *testing.T) {
		sheet := newFakeSheet([]string{"Status"})
		sheet.valuesErr = errors.New("network down")
		if _, err := EnsureMarkerColumn(ctx, sheet); err == nil {
			t.Error("expected error")
		}
		if len(sheet.cellUpdates) != 0 {
			t.Errorf("unexpected writes: %+v", sheet.cellUpdates)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		sheet := newFakeSheet()
		sheet.headersErr = errors.New("quota exceeded")
		if _, err := EnsureMarkerColumn(ctx, sheet); err == nil {
			t.Error("expected error")
		}
	})
}

func TestMarkerBatcher_Flush(t *testing.T) {
	ctx := context.Background()
	b := NewMarkerBatcher(4, "09/25/2025 02:03:07 PM")
	for _, row := range []int{2, 3, 5} {
		b.Add(row)
	}

	sheet := newFakeSheet([]string{"a", "b", "c", "processed_at"})
	n, err := b.Flush(ctx, sheet)
	if err != nil || n != 3 {
		t.Fatalf("Flush() = %d, %v; want 3", n, err)
	}
	if len(sheet.batches) != 1 {
		t.Fatalf("got %d batch calls, want 1", len(sheet.batches))
	}

	batch := sheet.batches[0]
	if batch.ValueInputOption != ValueInputRaw {
		t.Errorf("ValueInputOption = %q", batch.ValueInputOption)
	}
	wantRanges := []string{"D2", "D3", "D5"}
	for i, w := range batch.Data {
		if w.Range != wantRanges[i] || w.Value != "09/25/2025 02:03:07 PM" {
			t.Errorf("write %d = %+v", i, w)
		}
	}
}

func TestMarkerBatcher_FlushEmpty(t *testing.T) {
	sheet := newFakeSheet([]string{"processed_at"})
	n, err := NewMarkerBatcher(1, "x").Flush(context.Background(), sheet)
	if err != nil || n != 0 {
		t.Fatalf("Flush() = %d, %v; want 0", n, err)
	}
	if len(sheet.batches) != 0 {
		t.Error("empty flush should not call BatchUpdate")
	}
}

func TestMarkerBatcher_FlushError(t *testing.T) {
	sheet := newFakeSheet([]string{"processed_at"})
	sheet.batchErr = errors.New("write denied")

	b := NewMarkerBatcher(1, "x")
	b.Add(2)
	_, err := b.Flush(context.Background(), sheet)
	if err == nil || !strings.Contains(err.Error(), "flush markers") {
		t.Errorf("Flush() error = %v, want flush markers error", err)
	}
}
