// Package reconcile computes the change-set that brings a flashcard course in
// line with a vocabulary database.
//
// The package is pure: it performs no I/O, holds no state between calls and
// starts no goroutines. Callers fetch both snapshots, pass them in, and hand the
// resulting Plan to a course session.
//
// # Pipeline
//
//	[]RawRow --Normaliser--> []SourceRecord --Reconcile--> Plan
//	                                              ^
//	                           []TargetEntry -----+
//
// # Matching
//
// Records are matched to course entries by the identifier previously stamped
// into the entry. Entries without a stamp are unmanaged: they are counted but
// never matched, even when their content equals a record's. Matched entries
// whose fields equal the record's are unchanged; the others are updated.
// Managed entries with no record are reported as orphans and left alone.
//
// Given identical inputs the Plan is identical, item for item. Applying a Plan
// and reconciling again against the resulting course yields an empty Plan.
package reconcile
