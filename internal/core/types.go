package core

import (
	"context"
	"errors"
	"time"
)

// ErrSourceUnavailable marks failures to reach, open, or read the tabular
// source. A run that fails this way writes no markers.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrSheetNotConfigured is returned when no sheet identifier is available.
var ErrSheetNotConfigured = errors.New("sheet not configured")

// Sheet is the tabular store a run reads from and writes markers back to.
// Row and column numbers are 1-based; row 1 holds the headers.
type Sheet interface {
	// Headers returns the first row, or nil for an empty sheet.
	Headers(ctx context.Context) ([]string, error)

	// Values returns every row including the header row.
	Values(ctx context.Context) ([][]string, error)

	// UpdateCell writes a single cell immediately.
	UpdateCell(ctx context.Context, row, col int, value string) error

	// BatchUpdate applies all writes as one operation.
	BatchUpdate(ctx context.Context, batch BatchUpdate) error
}

// HeaderKey is the canonical form of a header cell.
type HeaderKey string

// SearchKey is a HeaderKey reduced to [a-z0-9_], used for tolerant lookups.
type SearchKey string

// FieldCode identifies a missing or invalid field on a record.
type FieldCode string

const (
	CodeStatus         FieldCode = "Status"
	CodeCustomerName   FieldCode = "Customer_name"
	CodeEmail          FieldCode = "Email"
	CodeEmailValid     FieldCode = "Email_valid"
	CodeTotal          FieldCode = "Total"
	CodeTotalParseable FieldCode = "Total_parseable"
	CodeTotalPositive  FieldCode = "Total_positive"
)

// CellWrite is one cell of a batch write.
type CellWrite struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Range  string `json:"range"` // A1 address of Row x Column
	Value  string `json:"value"`
}

// BatchUpdate describes a single write-back request.
type BatchUpdate struct {
	ValueInputOption string      `json:"valueInputOption"`
	Data             []CellWrite `json:"data"`
}

// RowError records the validation codes reported for one row.
type RowError struct {
	Row   int         `json:"row"`
	Codes []FieldCode `json:"missing"`
}

// RunResult summarizes one pass over the sheet.
type RunResult struct {
	RunID          string         `json:"runId"`
	StartedAt      time.Time      `json:"startedAt"`
	Timestamp      string         `json:"timestamp"`
	MarkerColumn   int            `json:"markerColumn"`
	RowsExamined   int            `json:"rowsExamined"`
	Orders         []OrderPayload `json:"orders"`
	Duplicates     int            `json:"duplicates"`
	SkippedStatus  int            `json:"skippedStatus"`
	RowErrors      []RowError     `json:"rowErrors"`
	MarkersWritten int            `json:"markersWritten"`
	Duration       time.Duration  `json:"duration"`
}

// OrdersStaged returns the number of staged orders.
func (r *RunResult) OrdersStaged() int {
	return len(r.Orders)
}

// RunRecord is a history entry for a finished run, successful or not.
type RunRecord struct {
	Result  *RunResult `json:"result"`
	Trigger string     `json:"trigger,omitempty"`
	Error   string     `json:"error,omitempty"`
	Code    string     `json:"code,omitempty"`
}
