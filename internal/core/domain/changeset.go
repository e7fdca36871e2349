package domain

import "fmt"

// Action is the kind of change applied to the course for one record.
type Action int

const (
	// ActionCreate adds a new entry populated with the record's fields.
	ActionCreate Action = iota

	// ActionUpdate overwrites a managed entry's fields.
	ActionUpdate
)

// String returns the action name used in reports.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ChangeSetItem is one decision of the reconciliation engine.
//
// Once applied, the course entry must carry Record.ID as its stamp;
// otherwise the next run sees it as unmanaged and creates a duplicate.
type ChangeSetItem struct {
	Action Action

	// Record drives the change.
	Record SourceRecord

	// Target is the matched entry for ActionUpdate, nil for ActionCreate.
	Target *TargetEntry
}

// WarningKind classifies a non-fatal finding of a run.
type WarningKind string

const (
	// WarningDataQuality marks a row excluded because it failed validation.
	WarningDataQuality WarningKind = "data_quality"

	// WarningDuplicateResolved marks an id that appeared on several rows.
	WarningDuplicateResolved WarningKind = "duplicate_id_resolved"

	// WarningDuplicateTerm marks a row dropped because another row with the
	// same dedupe value (case-insensitive) is more recent.
	WarningDuplicateTerm WarningKind = "duplicate_term_dropped"
)

// Warning is a recoverable data issue surfaced in the run report.
type Warning struct {
	Kind    WarningKind
	RowID   string
	Field   string
	Message string
}

// String formats the warning for logs.
func (w Warning) String() string {
	if w.RowID == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.RowID, w.Message)
}

// OrphanReason explains why a managed entry was not matched.
type OrphanReason string

const (
	// OrphanNoSourceRecord marks an entry whose stamped id has no record.
	OrphanNoSourceRecord OrphanReason = "no_source_record"

	// OrphanDuplicateStamp marks a second entry carrying an already matched stamp.
	OrphanDuplicateStamp OrphanReason = "duplicate_stamp"
)

// Orphan is a managed course entry left for manual review. Orphans never
// trigger deletion.
type Orphan struct {
	Entry  TargetEntry
	Reason OrphanReason
}

// Plan is the outcome of reconciling one source snapshot with one course
// snapshot.
type Plan struct {
	// Items is the ordered change-set.
	Items []ChangeSetItem

	// Unchanged counts records whose matched entry already holds equal fields.
	Unchanged int

	// Unmanaged counts course entries without a stamp.
	Unmanaged int

	// Orphans lists managed entries with no surviving record.
	Orphans []Orphan

	// Warnings carries the normaliser's findings.
	Warnings []Warning
}

// Count returns the number of items with the given action.
func (p *Plan) Count(action Action) int {
	n := 0
	for _, item := range p.Items {
		if item.Action == action {
			n++
		}
	}
	return n
}

// Empty reports whether the plan requires no change.
func (p *Plan) Empty() bool {
	return len(p.Items) == 0
}
