package reconcile

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// Normaliser turns raw source rows into canonical records.
type Normaliser struct {
	mapping domain.FieldMapping
}

// NewNormaliser creates a normaliser for a validated field mapping.
func NewNormaliser(mapping domain.FieldMapping) *Normaliser {
	return &Normaliser{mapping: mapping}
}

// NormaliseResult holds the surviving records and what was dropped on the way.
type NormaliseResult struct {
	Records  []domain.SourceRecord
	Warnings []domain.Warning
}

// candidate is the current canonical row for one id.
type candidate struct {
	record  domain.SourceRecord
	arrival int
	rows    int
}

// newer reports whether c should replace other as canonical.
// Later ModifiedAt wins; on a tie the later arrival wins.
func (c candidate) newer(other candidate) bool {
	if !c.record.ModifiedAt.Equal(other.record.ModifiedAt) {
		return c.record.ModifiedAt.After(other.record.ModifiedAt)
	}
	return c.arrival > other.arrival
}

// Normalise maps, deduplicates and validates rows. Output follows the order in
// which each surviving id was first seen.
func (n *Normaliser) Normalise(rows []domain.RawRow) NormaliseResult {
	var result NormaliseResult

	order := make([]string, 0, len(rows))
	groups := make(map[string]*candidate, len(rows))

	for i, row := range rows {
		id := strings.TrimSpace(row.ID)
		if id == "" {
			result.Warnings = append(result.Warnings, domain.Warning{
				Kind:    domain.WarningDataQuality,
				Message: fmt.Sprintf("row %d has no id", i),
			})
			continue
		}

		c := candidate{
			record: domain.SourceRecord{
				ID:         id,
				Fields:     n.mapFields(row.Fields),
				ModifiedAt: row.ModifiedAt,
			},
			arrival: i,
		}

		current, seen := groups[id]
		if !seen {
			c.rows = 1
			groups[id] = &c
			order = append(order, id)
			continue
		}
		c.rows = current.rows + 1
		if c.newer(*current) {
			*current = c
		} else {
			current.rows = c.rows
		}
	}

	survivors := make([]*candidate, 0, len(order))
	for _, id := range order {
		c := groups[id]
		if c.rows > 1 {
			result.Warnings = append(result.Warnings, domain.Warning{
				Kind:  domain.WarningDuplicateResolved,
				RowID: id,
				Message: fmt.Sprintf("%d rows share this id, kept the one modified %s",
					c.rows, c.record.ModifiedAt.Format(time.RFC3339)),
			})
		}
		if w, ok := n.validate(c.record); !ok {
			result.Warnings = append(result.Warnings, w)
			continue
		}
		survivors = append(survivors, c)
	}

	dropped, warnings := n.dropDuplicateTerms(survivors)
	result.Warnings = append(result.Warnings, warnings...)

	result.Records = make([]domain.SourceRecord, 0, len(survivors))
	for _, c := range survivors {
		if !dropped[c.record.ID] {
			result.Records = append(result.Records, c.record)
		}
	}
	return result
}

func (n *Normaliser) mapFields(raw map[string]string) domain.Fields {
	fields := make(domain.Fields, len(n.mapping.Columns))
	for column, field := range n.mapping.Columns {
		fields[field] = strings.TrimSpace(raw[column])
	}
	return fields
}

func (n *Normaliser) validate(rec domain.SourceRecord) (domain.Warning, bool) {
	for _, field := range n.mapping.Required {
		if rec.Fields[field] == "" {
			return domain.Warning{
				Kind:    domain.WarningDataQuality,
				RowID:   rec.ID,
				Field:   field,
				Message: fmt.Sprintf("required field %q is empty", field),
			}, false
		}
	}
	return domain.Warning{}, true
}

// dropDuplicateTerms collapses records whose dedupe field is equal under case
// folding, keeping the most recent one.
func (n *Normaliser) dropDuplicateTerms(survivors []*candidate) (map[string]bool, []domain.Warning) {
	field := n.mapping.DedupeOn
	if field == "" {
		return nil, nil
	}

	fold := cases.Fold()
	dropped := make(map[string]bool)
	var warnings []domain.Warning

	winners := make(map[string]*candidate, len(survivors))
	for _, c := range survivors {
		value := c.record.Fields[field]
		if value == "" {
			continue
		}
		key := fold.String(value)

		winner, ok := winners[key]
		if !ok {
			winners[key] = c
			continue
		}

		loser := c
		if c.newer(*winner) {
			loser, winners[key] = winner, c
		}
		dropped[loser.record.ID] = true
		warnings = append(warnings, domain.Warning{
			Kind:  domain.WarningDuplicateTerm,
			RowID: loser.record.ID,
			Field: field,
			Message: fmt.Sprintf("%q duplicates row %s, which is more recent",
				loser.record.Fields[field], winners[key].record.ID),
		})
	}
	return dropped, warnings
}
