package reconcile

import (
	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// Reconcile diffs normalised records against the course entries and returns
// the ordered change-set. Records must carry unique ids, as produced by
// Normaliser.Normalise. Plan.Warnings is left for the caller to fill.
func Reconcile(records []domain.SourceRecord, entries []domain.TargetEntry) domain.Plan {
	var plan domain.Plan

	// First entry per stamp, in course order.
	byStamp := make(map[string]int, len(entries))
	for i, entry := range entries {
		if !entry.Managed() {
			plan.Unmanaged++
			continue
		}
		if _, ok := byStamp[entry.StampedID]; !ok {
			byStamp[entry.StampedID] = i
		}
	}

	matched := make(map[string]bool, len(records))
	for _, rec := range records {
		idx, ok := byStamp[rec.ID]
		if !ok {
			plan.Items = append(plan.Items, domain.ChangeSetItem{
				Action: domain.ActionCreate,
				Record: rec,
			})
			continue
		}

		matched[rec.ID] = true
		target := entries[idx]
		if rec.Fields.Equal(target.Fields) {
			plan.Unchanged++
			continue
		}
		plan.Items = append(plan.Items, domain.ChangeSetItem{
			Action: domain.ActionUpdate,
			Record: rec,
			Target: &target,
		})
	}

	for i, entry := range entries {
		if !entry.Managed() {
			continue
		}
		switch {
		case byStamp[entry.StampedID] != i:
			plan.Orphans = append(plan.Orphans, domain.Orphan{Entry: entry, Reason: domain.OrphanDuplicateStamp})
		case !matched[entry.StampedID]:
			plan.Orphans = append(plan.Orphans, domain.Orphan{Entry: entry, Reason: domain.OrphanNoSourceRecord})
		}
	}

	return plan
}
