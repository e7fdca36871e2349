// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourceReader: Fetches every row of the vocabulary database
//   - CourseOpener: Opens a scoped session on the flashcard course
//   - CourseSession: Reads course entries and applies changes
//   - ConfigStore: Application configuration
//   - TokenProvider: Source API credentials
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ReportSink: Receives every run report (results CSV, history)
//   - RunStore: Queryable run history. Without it, `history` is unavailable.
//   - SchedulerStore: Persists daemon state. Without it, `daemon` is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
