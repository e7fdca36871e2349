package domain

import (
	"fmt"
	"sort"
	"strings"
)

// FieldMapping enumerates the source columns lexisync recognises and the
// course field each one feeds. It is validated once at startup.
type FieldMapping struct {
	// Columns maps source column name to target field name.
	Columns map[string]string

	// Required lists target fields that must be non-empty.
	Required []string

	// DedupeOn names a target field whose case-folded value must be unique.
	// Empty disables term deduplication.
	DedupeOn string

	// StampField is the course column holding the stamped record id.
	StampField string
}

// DefaultFieldMapping returns the mapping of the reference vocabulary database.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		Columns: map[string]string{
			"French":     "term",
			"English":    "translation",
			"Définition": "notes",
		},
		Required:   []string{"term", "translation"},
		DedupeOn:   "term",
		StampField: "cell id",
	}
}

// Validate checks the mapping for internal consistency.
func (m FieldMapping) Validate() error {
	if len(m.Columns) == 0 {
		return fmt.Errorf("%w: no columns mapped", ErrInvalidMapping)
	}

	targets := make(map[string]string, len(m.Columns))
	for _, column := range m.SourceColumns() {
		target := m.Columns[column]
		if strings.TrimSpace(column) == "" || strings.TrimSpace(target) == "" {
			return fmt.Errorf("%w: empty column or field name", ErrInvalidMapping)
		}
		if prev, ok := targets[target]; ok {
			return fmt.Errorf("%w: columns %q and %q both map to %q", ErrInvalidMapping, prev, column, target)
		}
		targets[target] = column
	}

	for _, field := range m.Required {
		if _, ok := targets[field]; !ok {
			return fmt.Errorf("%w: required field %q is not mapped", ErrInvalidMapping, field)
		}
	}
	if m.DedupeOn != "" {
		if _, ok := targets[m.DedupeOn]; !ok {
			return fmt.Errorf("%w: dedupe field %q is not mapped", ErrInvalidMapping, m.DedupeOn)
		}
	}
	if _, ok := targets[m.StampField]; ok {
		return fmt.Errorf("%w: stamp field %q collides with a mapped field", ErrInvalidMapping, m.StampField)
	}
	return nil
}

// SourceColumns returns the mapped source columns in sorted order.
func (m FieldMapping) SourceColumns() []string {
	cols := make([]string, 0, len(m.Columns))
	for c := range m.Columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// TargetFields returns the target fields in sorted order.
func (m FieldMapping) TargetFields() []string {
	fields := make([]string, 0, len(m.Columns))
	for _, f := range m.Columns {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// LabelField returns the field used to name records in reports.
func (m FieldMapping) LabelField() string {
	if m.DedupeOn != "" {
		return m.DedupeOn
	}
	if len(m.Required) > 0 {
		return m.Required[0]
	}
	return ""
}
