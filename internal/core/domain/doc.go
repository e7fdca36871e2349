// Package domain defines the core business entities for lexisync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRow: A row as fetched from the vocabulary database
//   - SourceRecord: A normalised, deduplicated row
//   - TargetEntry: An entry currently present in the flashcard course
//   - ChangeSetItem: A CREATE or UPDATE decision for one record
//   - RunReport: The observable outcome of one synchronisation run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
