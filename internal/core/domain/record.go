package domain

import (
	"sort"
	"time"
)

// Fields maps field names to text values.
type Fields map[string]string

// Equal reports whether f and other hold the same value for every key in
// either map. A missing key is equivalent to an empty value.
func (f Fields) Equal(other Fields) bool {
	for k, v := range f {
		if other[k] != v {
			return false
		}
	}
	for k, v := range other {
		if f[k] != v {
			return false
		}
	}
	return true
}

// Clone returns a copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SourceRecord is the canonical form of one source row.
// Fields are keyed by target field name. Records are never mutated
// after normalisation and are not persisted between runs.
type SourceRecord struct {
	// ID is unique among the records of one run.
	ID string

	// Fields holds every mapped, trimmed field value.
	Fields Fields

	// ModifiedAt is informational; it only drives duplicate resolution.
	ModifiedAt time.Time
}

// Label returns a short human-readable name for the record: the value of
// labelField when present, otherwise the id.
func (r SourceRecord) Label(labelField string) string {
	if v := r.Fields[labelField]; v != "" {
		return v
	}
	return r.ID
}
