package domain

// TargetEntry is an entry currently present in the flashcard course.
//
// Stamp lifecycle across runs:
//
//	unmanaged (StampedID == "")   never matched, never modified
//	absent    --CREATE-->         managed, StampedID = record id
//	managed   --UPDATE-->         managed, StampedID re-stamped with record id
//
// Entries are owned by the course; lexisync never deletes them.
type TargetEntry struct {
	// Ref is the course adapter's handle for the entry (row id, file line).
	Ref string

	// StampedID is the SourceRecord id written into the entry by a
	// previous run, or empty for manually created entries.
	StampedID string

	// Fields holds the values currently visible in the course.
	Fields Fields

	// Level is the course level holding the entry, when the course has levels.
	Level int
}

// Managed reports whether the entry carries a stamped identifier.
func (e TargetEntry) Managed() bool {
	return e.StampedID != ""
}

// StampedBy reports whether the entry is stamped with the given record id.
func (e TargetEntry) StampedBy(recordID string) bool {
	return recordID != "" && e.StampedID == recordID
}
