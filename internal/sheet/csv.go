package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/JonMunkholm/sheetorders/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cleanText drops a leading BOM and replaces each run of invalid UTF-8 with
// '?', so exports saved in a legacy code page still parse. The cleaned text
// is what gets written back.
func cleanText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, []byte("?"))
}

// CSV is a single-table sheet stored as a CSV file. Every write rewrites the
// file through a temp file and rename, so readers never see a partial file.
type CSV struct {
	mu   sync.Mutex
	path string
}

// OpenCSV checks that path is readable.
func OpenCSV(path string) (*CSV, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &CSV{path: path}, nil
}

// Headers returns the first record, or nil for an empty file.
func (c *CSV) Headers(ctx context.Context) ([]string, error) {
	rows, err := c.Values(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Values reads every record.
func (c *CSV) Values(ctx context.Context) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// UpdateCell rewrites the file with one changed cell.
func (c *CSV) UpdateCell(ctx context.Context, row, col int, value string) error {
	return c.BatchUpdate(ctx, core.BatchUpdate{
		ValueInputOption: core.ValueInputRaw,
		Data:             []core.CellWrite{{Row: row, Column: col, Value: value}},
	})
}

// BatchUpdate applies every write in memory and rewrites the file once.
func (c *CSV) BatchUpdate(ctx context.Context, batch core.BatchUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.load()
	if err != nil {
		return err
	}
	for _, w := range batch.Data {
		if err := checkPosition(w.Row, w.Column); err != nil {
			return err
		}
		rows = setGridCell(rows, w.Row, w.Column, w.Value)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.save(rows)
}

func (c *CSV) load() ([][]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	data = cleanText(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(c.path), err)
	}
	return rows, nil
}

func (c *CSV) save(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if info, err := os.Stat(c.path); err == nil {
		if err := tmp.Chmod(info.Mode().Perm()); err != nil {
			tmp.Close()
			return err
		}
	}

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(c.path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
