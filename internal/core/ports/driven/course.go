package driven

import (
	"context"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// CourseOpener acquires sessions on the flashcard course.
type CourseOpener interface {
	// Type returns the course driver name.
	Type() string

	// Open starts a session. The caller must Close it on every exit path.
	Open(ctx context.Context) (CourseSession, error)
}

// CourseSession is one scoped connection to the course. It reads the current
// course state and applies change-set items.
//
// Both Create and Update must leave the entry stamped with the record's id
// and return the entry as it now stands in the course. A session must not
// modify entries it was not asked to change.
type CourseSession interface {
	// Entries returns a snapshot of every entry in the course, in course order.
	// An error means the snapshot is unavailable; no partial snapshot is returned.
	Entries(ctx context.Context) ([]domain.TargetEntry, error)

	// Create adds an entry populated with rec.Fields and stamped with rec.ID.
	Create(ctx context.Context, rec domain.SourceRecord) (domain.TargetEntry, error)

	// Update overwrites target's fields with rec.Fields and restamps it with rec.ID.
	Update(ctx context.Context, target domain.TargetEntry, rec domain.SourceRecord) (domain.TargetEntry, error)

	// Close ends the session and flushes pending work.
	// Calls after Close return domain.ErrSessionClosed.
	Close() error
}
