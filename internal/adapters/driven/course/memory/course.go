// Package memory provides an in-memory flashcard course.
//
// The course honours the session and stamping contract of driven.CourseSession
// and can be told to fail, so multi-run convergence can be exercised without a
// real course behind it.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// Ensure Course implements the interface.
var _ driven.CourseOpener = (*Course)(nil)

// Course is a simulated course. It is safe for concurrent use.
type Course struct {
	mu         sync.Mutex
	entries    []domain.TargetEntry
	levelLimit int

	openErr    error
	entriesErr error
	failOn     map[string]error
	forget     map[string]bool

	open   int
	opened int
}

// New creates a course holding a copy of entries. Created entries are placed
// in levels of at most levelLimit entries; 0 disables levels.
func New(levelLimit int, entries ...domain.TargetEntry) *Course {
	c := &Course{
		levelLimit: levelLimit,
		failOn:     make(map[string]error),
		forget:     make(map[string]bool),
	}
	for _, e := range entries {
		e.Fields = e.Fields.Clone()
		c.entries = append(c.entries, e)
	}
	return c
}

// Type returns the driver name.
func (c *Course) Type() string {
	return "memory"
}

// Open starts a session.
func (c *Course) Open(_ context.Context) (driven.CourseSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.open++
	c.opened++
	return &session{course: c}, nil
}

// FailOpen makes every Open return err. A nil err clears it.
func (c *Course) FailOpen(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// FailEntries makes every Entries call return err. A nil err clears it.
func (c *Course) FailEntries(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entriesErr = err
}

// FailOn makes Create and Update for recordID return err. A nil err clears it.
func (c *Course) FailOn(recordID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failOn, recordID)
		return
	}
	c.failOn[recordID] = err
}

// ForgetStamp makes the next changes for recordID succeed without stamping.
func (c *Course) ForgetStamp(recordID string, forget bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forget[recordID] = forget
}

// Snapshot returns a copy of the current entries.
func (c *Course) Snapshot() []domain.TargetEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// OpenSessions returns the number of sessions not yet closed.
func (c *Course) OpenSessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// SessionsOpened returns the number of sessions ever opened.
func (c *Course) SessionsOpened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

func (c *Course) snapshot() []domain.TargetEntry {
	out := make([]domain.TargetEntry, len(c.entries))
	for i, e := range c.entries {
		e.Fields = e.Fields.Clone()
		out[i] = e
	}
	return out
}

// nextLevel returns the level a new entry goes into.
func (c *Course) nextLevel() int {
	if c.levelLimit <= 0 {
		return 0
	}
	last, count := 1, 0
	for _, e := range c.entries {
		switch {
		case e.Level > last:
			last, count = e.Level, 1
		case e.Level == last:
			count++
		}
	}
	if count >= c.levelLimit {
		return last + 1
	}
	return last
}

func (c *Course) stamp(recordID string) string {
	if c.forget[recordID] {
		return ""
	}
	return recordID
}

type session struct {
	course *Course
	closed bool
}

func (s *session) Entries(_ context.Context) ([]domain.TargetEntry, error) {
	c := s.course
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	if c.entriesErr != nil {
		return nil, c.entriesErr
	}
	return c.snapshot(), nil
}

func (s *session) Create(ctx context.Context, rec domain.SourceRecord) (domain.TargetEntry, error) {
	c := s.course
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := s.check(ctx, rec.ID); err != nil {
		return domain.TargetEntry{}, err
	}

	entry := domain.TargetEntry{
		Ref:       uuid.New().String(),
		StampedID: c.stamp(rec.ID),
		Fields:    rec.Fields.Clone(),
		Level:     c.nextLevel(),
	}
	c.entries = append(c.entries, entry)
	entry.Fields = entry.Fields.Clone()
	return entry, nil
}

func (s *session) Update(ctx context.Context, target domain.TargetEntry, rec domain.SourceRecord) (domain.TargetEntry, error) {
	c := s.course
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := s.check(ctx, rec.ID); err != nil {
		return domain.TargetEntry{}, err
	}

	for i := range c.entries {
		if c.entries[i].Ref != target.Ref {
			continue
		}
		c.entries[i].Fields = rec.Fields.Clone()
		c.entries[i].StampedID = c.stamp(rec.ID)
		out := c.entries[i]
		out.Fields = out.Fields.Clone()
		return out, nil
	}
	return domain.TargetEntry{}, fmt.Errorf("entry %s: %w", target.Ref, domain.ErrNotFound)
}

func (s *session) Close() error {
	c := s.course
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.closed = true
	c.open--
	return nil
}

// check must be called with the course lock held.
func (s *session) check(ctx context.Context, recordID string) error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.course.failOn[recordID]
}
