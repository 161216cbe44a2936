package core

// resolver.go provides tolerant header lookup and the Record type.
//
// A HeaderIndex is built once per read and shared read-only by every Record
// from that read. It has two levels:
//  1. HeaderKey -> column position (later duplicate headers win)
//  2. SearchKey -> HeaderKey (later duplicates win; iteration keeps the
//     order in which each SearchKey first appeared)

import (
	"log/slog"
	"strings"
)

// HeaderIndex maps normalized headers to columns and search keys to headers.
type HeaderIndex struct {
	headers  []HeaderKey
	position map[HeaderKey]int
	search   map[SearchKey]HeaderKey
	order    []SearchKey
}

// NewHeaderIndex builds the index for a raw header row.
func NewHeaderIndex(raw []string) *HeaderIndex {
	idx := &HeaderIndex{
		headers:  make([]HeaderKey, len(raw)),
		position: make(map[HeaderKey]int, len(raw)),
		search:   make(map[SearchKey]HeaderKey, len(raw)),
	}

	for i, h := range raw {
		key := NormalizeHeader(h)
		idx.headers[i] = key
		idx.position[key] = i

		sk := SearchKeyOf(key)
		if _, seen := idx.search[sk]; !seen {
			idx.order = append(idx.order, sk)
		}
		idx.search[sk] = key
	}

	return idx
}

// Headers returns the normalized header row in column order.
func (idx *HeaderIndex) Headers() []HeaderKey {
	out := make([]HeaderKey, len(idx.headers))
	copy(out, idx.headers)
	return out
}

// Column returns the 1-based column of a normalized header.
func (idx *HeaderIndex) Column(key HeaderKey) (int, bool) {
	pos, ok := idx.position[key]
	if !ok {
		return 0, false
	}
	return pos + 1, true
}

// Lookup resolves one logical field name to a HeaderKey: exact SearchKey
// match first, then the first indexed SearchKey having it as a prefix.
func (idx *HeaderIndex) Lookup(name string) (HeaderKey, bool) {
	sk := searchKeyFor(name)

	if key, ok := idx.search[sk]; ok {
		return key, true
	}

	for _, candidate := range idx.order {
		if strings.HasPrefix(string(candidate), string(sk)) {
			return idx.search[candidate], true
		}
	}

	return "", false
}

// Record is one data row keyed by HeaderKey.
type Record struct {
	row    int
	keys   []HeaderKey
	values map[HeaderKey]string
	index  *HeaderIndex
}

// NewRecord builds a record for a 1-based sheet row. Cells beyond the header
// width are ignored; missing trailing cells read as "".
func NewRecord(row int, cells []string, idx *HeaderIndex) *Record {
	rec := &Record{
		row:    row,
		values: make(map[HeaderKey]string, len(idx.headers)),
		index:  idx,
	}

	for i, key := range idx.headers {
		value := ""
		if i < len(cells) {
			value = strings.TrimSpace(cells[i])
		}
		if _, seen := rec.values[key]; !seen {
			rec.keys = append(rec.keys, key)
		}
		rec.values[key] = value
	}

	return rec
}

// Row returns the 1-based source row number.
func (r *Record) Row() int {
	return r.row
}

// Get returns the value stored under an exact HeaderKey.
func (r *Record) Get(key HeaderKey) string {
	return r.values[key]
}

// Fields returns the record's HeaderKeys in first-appearance order.
func (r *Record) Fields() []HeaderKey {
	out := make([]HeaderKey, len(r.keys))
	copy(out, r.keys)
	return out
}

// LogValue renders the record as a log group in header order.
func (r *Record) LogValue() slog.Value {
	keys := r.Fields()
	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.Int("row", r.row))
	for _, key := range keys {
		attrs = append(attrs, slog.String(string(key), r.Get(key)))
	}
	return slog.GroupValue(attrs...)
}

// Field resolves the first matching candidate name and returns its trimmed
// value. Absence is always "".
func (r *Record) Field(candidates ...string) string {
	for _, name := range candidates {
		if key, ok := r.index.Lookup(name); ok {
			return strings.TrimSpace(r.values[key])
		}
	}
	return ""
}

// ReadRecords turns raw sheet values into records. The first row is the
// header row; data rows are numbered from 2.
func ReadRecords(values [][]string) (*HeaderIndex, []*Record) {
	if len(values) == 0 {
		return NewHeaderIndex(nil), nil
	}

	idx := NewHeaderIndex(values[0])
	records := make([]*Record, 0, len(values)-1)
	for i, row := range values[1:] {
		records = append(records, NewRecord(i+2, row, idx))
	}
	return idx, records
}
