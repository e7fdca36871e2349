// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements through a single
// database connection:
//
//   - RunStore: run reports, queried by the history command
//   - SchedulerStore: daemon task state and result history
//   - Course: a local course mirror, the default course driver
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files
// and is recorded in schema_migrations once applied.
//
// # Data Location
//
// By default, the database is stored at ~/.lexisync/data/lexisync.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
