package domain

import "time"

// ApplyResult records what happened to one change-set item.
type ApplyResult struct {
	Action   Action
	RecordID string

	// Label is the record's display value (usually the learning-language term).
	Label string

	Success bool
	Error   string
}

// RunReport is the primary observable output of a run. It is produced
// whether or not the course adapter managed to apply every item.
type RunReport struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	DryRun    bool

	// Planned counts, independent of what was applied.
	Creates   int
	Updates   int
	Unchanged int
	Unmanaged int

	Results  []ApplyResult
	Warnings []Warning
	Orphans  []Orphan

	// Error is set when the run aborted.
	Error string
}

// Summary holds the headline counts of a run.
type Summary struct {
	Creates   int
	Updates   int
	Unchanged int
	Warnings  int
	Orphans   int
	Applied   int
	Failed    int
}

// Summary computes the headline counts of the report.
func (r *RunReport) Summary() Summary {
	s := Summary{
		Creates:   r.Creates,
		Updates:   r.Updates,
		Unchanged: r.Unchanged,
		Warnings:  len(r.Warnings),
		Orphans:   len(r.Orphans),
	}
	for _, res := range r.Results {
		if res.Success {
			s.Applied++
		} else {
			s.Failed++
		}
	}
	return s
}

// Aborted reports whether the run stopped before producing a change-set.
func (r *RunReport) Aborted() bool {
	return r.Error != ""
}

// ApplyPlan copies a plan's counts, warnings and orphans into the report.
func (r *RunReport) ApplyPlan(plan *Plan) {
	r.Creates = plan.Count(ActionCreate)
	r.Updates = plan.Count(ActionUpdate)
	r.Unchanged = plan.Unchanged
	r.Unmanaged = plan.Unmanaged
	r.Warnings = plan.Warnings
	r.Orphans = plan.Orphans
}
