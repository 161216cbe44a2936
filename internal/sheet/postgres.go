package sheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/sheetorders/internal/config"
	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema stores each sheet row as a text array. Row numbers are 1-based
// and row 1 holds the headers.
const Schema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
    sheet_id   TEXT    NOT NULL,
    worksheet  TEXT    NOT NULL,
    row_num    INTEGER NOT NULL CHECK (row_num > 0),
    cells      TEXT[]  NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (sheet_id, worksheet, row_num)
)`

const (
	selectRowsSQL = `SELECT row_num, cells FROM sheet_rows
WHERE sheet_id = $1 AND worksheet = $2 ORDER BY row_num`

	selectHeaderSQL = `SELECT cells FROM sheet_rows
WHERE sheet_id = $1 AND worksheet = $2 AND row_num = 1`

	lockRowsSQL = `SELECT row_num, cells FROM sheet_rows
WHERE sheet_id = $1 AND worksheet = $2 AND row_num = ANY($3)
FOR UPDATE`

	upsertRowSQL = `INSERT INTO sheet_rows (sheet_id, worksheet, row_num, cells)
VALUES ($1, $2, $3, $4)
ON CONFLICT (sheet_id, worksheet, row_num)
DO UPDATE SET cells = EXCLUDED.cells, updated_at = now()`
)

// NewPool creates a pgx connection pool from the database settings.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the sheet_rows table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create sheet_rows: %w", err)
	}
	return nil
}

// Postgres is one worksheet stored in sheet_rows.
type Postgres struct {
	mu        sync.Mutex
	pool      *pgxpool.Pool
	sheetID   string
	worksheet string
}

// NewPostgres binds a worksheet to a pool. The pool is owned by the caller.
func NewPostgres(pool *pgxpool.Pool, sheetID, worksheet string) *Postgres {
	return &Postgres{pool: pool, sheetID: sheetID, worksheet: worksheet}
}

// Headers returns row 1, or nil when the worksheet has no header row.
func (p *Postgres) Headers(ctx context.Context) ([]string, error) {
	var cells []string
	err := p.pool.QueryRow(ctx, selectHeaderSQL, p.sheetID, p.worksheet).Scan(&cells)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	return cells, nil
}

// Values returns every row. Missing row numbers come back as empty rows so
// positions match row numbers.
func (p *Postgres) Values(ctx context.Context) ([][]string, error) {
	rows, err := p.pool.Query(ctx, selectRowsSQL, p.sheetID, p.worksheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	stored, err := collectRows(rows)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return denseRows(stored), nil
}

// UpdateCell writes one cell in its own transaction.
func (p *Postgres) UpdateCell(ctx context.Context, row, col int, value string) error {
	return p.BatchUpdate(ctx, core.BatchUpdate{
		ValueInputOption: core.ValueInputRaw,
		Data:             []core.CellWrite{{Row: row, Column: col, Value: value}},
	})
}

// BatchUpdate locks the touched rows, applies every write, and upserts the
// rows with one pgx.Batch inside one transaction.
func (p *Postgres) BatchUpdate(ctx context.Context, batch core.BatchUpdate) error {
	if len(batch.Data) == 0 {
		return nil
	}
	for _, w := range batch.Data {
		if err := checkPosition(w.Row, w.Column); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := tx.Query(ctx, lockRowsSQL, p.sheetID, p.worksheet, touchedRows(batch.Data))
	if err != nil {
		return fmt.Errorf("lock rows: %w", err)
	}
	current, err := collectRows(locked)
	if err != nil {
		return fmt.Errorf("lock rows: %w", err)
	}

	updated := applyWrites(current, batch.Data)

	b := &pgx.Batch{}
	for _, rowNum := range sortedRowNums(updated) {
		b.Queue(upsertRowSQL, p.sheetID, p.worksheet, rowNum, updated[rowNum])
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("upsert rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func collectRows(rows pgx.Rows) (map[int][]string, error) {
	out := make(map[int][]string)
	var (
		rowNum int32
		cells  []string
	)
	_, err := pgx.ForEachRow(rows, []any{&rowNum, &cells}, func() error {
		out[int(rowNum)] = append([]string(nil), cells...)
		return nil
	})
	return out, err
}

// touchedRows returns the distinct row numbers of a batch.
func touchedRows(writes []core.CellWrite) []int32 {
	seen := make(map[int]bool, len(writes))
	var out []int32
	for _, w := range writes {
		if !seen[w.Row] {
			seen[w.Row] = true
			out = append(out, int32(w.Row))
		}
	}
	return out
}

// applyWrites returns the touched rows after applying writes in order.
// Rows not present in current start empty.
func applyWrites(current map[int][]string, writes []core.CellWrite) map[int][]string {
	out := make(map[int][]string)
	for _, w := range writes {
		cells, ok := out[w.Row]
		if !ok {
			cells = append([]string(nil), current[w.Row]...)
		}
		out[w.Row] = setCell(cells, w.Column, w.Value)
	}
	return out
}

// denseRows lays stored rows out by row number.
func denseRows(stored map[int][]string) [][]string {
	nums := sortedRowNums(stored)
	if len(nums) == 0 {
		return nil
	}
	out := make([][]string, nums[len(nums)-1])
	for _, n := range nums {
		out[n-1] = stored[n]
	}
	return out
}

func sortedRowNums(rows map[int][]string) []int {
	nums := make([]int, 0, len(rows))
	for n := range rows {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
