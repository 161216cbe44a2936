package core

import "sync"

// DefaultHistorySize is how many finished runs are kept.
const DefaultHistorySize = 50

// RunHistory keeps the most recent run records in memory, oldest first.
type RunHistory struct {
	mu      sync.RWMutex
	size    int
	records []RunRecord
}

// NewRunHistory creates a history holding at most size records.
func NewRunHistory(size int) *RunHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &RunHistory{size: size}
}

// Add appends a record, evicting the oldest when full.
func (h *RunHistory) Add(rec RunRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)
	if over := len(h.records) - h.size; over > 0 {
		h.records = append([]RunRecord(nil), h.records[over:]...)
	}
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (h *RunHistory) Recent(limit int) []RunRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.records)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]RunRecord, 0, n)
	for i := len(h.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.records[i])
	}
	return out
}

// Get finds a record by run id.
func (h *RunHistory) Get(runID string) (RunRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.records) - 1; i >= 0; i-- {
		if r := h.records[i].Result; r != nil && r.RunID == runID {
			return h.records[i], true
		}
	}
	return RunRecord{}, false
}
