package core

import (
	"context"
	"sync"
)

// fakeSheet is an in-memory Sheet that records every write.
type fakeSheet struct {
	mu   sync.Mutex
	rows [][]string

	headersErr error
	valuesErr  error
	updateErr  error
	batchErr   error

	// onHeaders runs at the start of each Headers call.
	onHeaders func()

	cellUpdates []CellWrite
	batches     []BatchUpdate
}

func newFakeSheet(rows ...[]string) *fakeSheet {
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	return &fakeSheet{rows: copied}
}

func (f *fakeSheet) Headers(ctx context.Context) ([]string, error) {
	if f.onHeaders != nil {
		f.onHeaders()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headersErr != nil {
		return nil, f.headersErr
	}
	if len(f.rows) == 0 {
		return nil, nil
	}
	return append([]string(nil), f.rows[0]...), nil
}

func (f *fakeSheet) Values(ctx context.Context) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.valuesErr != nil {
		return nil, f.valuesErr
	}
	out := make([][]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (f *fakeSheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cellUpdates = append(f.cellUpdates, CellWrite{Row: row, Column: col, Value: value})
	f.set(row, col, value)
	return nil
}

func (f *fakeSheet) BatchUpdate(ctx context.Context, batch BatchUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, batch)
	for _, w := range batch.Data {
		f.set(w.Row, w.Column, w.Value)
	}
	return nil
}

func (f *fakeSheet) set(row, col int, value string) {
	for len(f.rows) < row {
		f.rows = append(f.rows, nil)
	}
	r := f.rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	f.rows[row-1] = r
}

func (f *fakeSheet) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}
