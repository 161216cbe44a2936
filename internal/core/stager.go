package core

// stager.go builds synthetic order payloads and deduplicates them per run.
//
// Nothing is created externally; the staged payloads are the artifact of a
// run. The dedup set is guarded so concurrent callers can never stage the
// same identity twice.

import (
	"fmt"
	"sync"
	"time"
)

// CreatedAtLayout renders staging time: local wall clock, second precision.
const CreatedAtLayout = "2006-01-02T15:04:05"

// OrderPayload is a staged order.
type OrderPayload struct {
	ID        string `json:"id"`
	Customer  string `json:"customer"`
	Email     string `json:"email"`
	Product   string `json:"product"`
	Total     string `json:"total"`
	SourceRow int    `json:"source_row"`
	CreatedAt string `json:"created_at"`
}

// StageStatus describes what Stage did with a record.
type StageStatus int

const (
	StageCreated       StageStatus = iota // New payload staged
	StageDuplicate                        // Identity already staged this run
	StageSkippedStatus                    // Status is not "new"
	StageInvalid                          // Validation failed
)

func (s StageStatus) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageDuplicate:
		return "duplicate"
	case StageSkippedStatus:
		return "skipped_status"
	case StageInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// StageResult is returned for every Stage call.
type StageResult struct {
	Status  StageStatus
	Key     string
	Payload OrderPayload // Set only for StageCreated
}

// OrderStager holds the run-scoped set of staged order identities.
type OrderStager struct {
	now func() time.Time

	mu     sync.Mutex
	staged map[string]OrderPayload
	order  []string
}

// NewOrderStager creates an empty stager. A nil clock uses time.Now.
func NewOrderStager(now func() time.Time) *OrderStager {
	if now == nil {
		now = time.Now
	}
	return &OrderStager{
		now:    now,
		staged: make(map[string]OrderPayload),
	}
}

// OrderKey returns the identity of a record's order: the order_id field when
// present, otherwise "row-<n>".
func OrderKey(rec *Record) string {
	if id := rec.Field(OrderIDFields...); id != "" {
		return id
	}
	return fmt.Sprintf("row-%d", rec.Row())
}

// Stage builds and records a payload for a valid record whose status is
// "new". Duplicates and other statuses are skipped, never errors.
func (s *OrderStager) Stage(rec *Record, outcome ValidationOutcome) StageResult {
	if !outcome.Valid() {
		return StageResult{Status: StageInvalid}
	}
	if outcome.Status != "new" {
		return StageResult{Status: StageSkippedStatus}
	}

	key := OrderKey(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.staged[key]; exists {
		return StageResult{Status: StageDuplicate, Key: key}
	}

	payload := OrderPayload{
		ID:        key,
		Customer:  outcome.Customer,
		Email:     outcome.Email,
		Product:   rec.Field(ProductFields...),
		Total:     FormatAmount(outcome.Amount),
		SourceRow: rec.Row(),
		CreatedAt: s.now().Local().Truncate(time.Second).Format(CreatedAtLayout),
	}

	s.staged[key] = payload
	s.order = append(s.order, key)

	return StageResult{Status: StageCreated, Key: key, Payload: payload}
}

// Orders returns staged payloads in staging order.
func (s *OrderStager) Orders() []OrderPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]OrderPayload, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.staged[key])
	}
	return out
}
