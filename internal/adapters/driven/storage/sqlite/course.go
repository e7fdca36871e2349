package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// Course is a flashcard course kept in the local database.
type Course struct {
	store      *Store
	levelLimit int
}

var _ driven.CourseOpener = (*Course)(nil)

// Type returns the driver name.
func (c *Course) Type() string {
	return string(domain.CourseDriverSQLite)
}

// Open starts a session. Every change is committed as it is applied, so an
// interrupted run keeps the items it finished.
func (c *Course) Open(ctx context.Context) (driven.CourseSession, error) {
	if err := c.store.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("opening course: %w", err)
	}
	return &courseSession{course: c}, nil
}

// Import replaces the mirror with entries, keeping their refs, stamps and
// levels. It seeds the mirror from an existing course.
func (c *Course) Import(ctx context.Context, entries []domain.TargetEntry) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM course_entries`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clearing course: %w", err)
	}
	now := time.Now()
	for _, e := range entries {
		if e.Ref == "" {
			e.Ref = uuid.New().String()
		}
		if err := insertEntry(ctx, tx, e, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type courseSession struct {
	course *Course

	mu     sync.Mutex
	closed bool
}

var _ driven.CourseSession = (*courseSession)(nil)

func (s *courseSession) Entries(ctx context.Context) ([]domain.TargetEntry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.course.store.db.QueryContext(ctx, `
		SELECT ref, stamped_id, fields, level FROM course_entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying course entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TargetEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.TargetEntry
		var fields string
		if err := rows.Scan(&e.Ref, &e.StampedID, &fields, &e.Level); err != nil {
			return nil, fmt.Errorf("scanning course entry: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &e.Fields); err != nil {
			return nil, fmt.Errorf("entry %s: unmarshalling fields: %w", e.Ref, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating course entries: %w", err)
	}
	return entries, nil
}

func (s *courseSession) Create(ctx context.Context, rec domain.SourceRecord) (domain.TargetEntry, error) {
	if err := s.check(); err != nil {
		return domain.TargetEntry{}, err
	}

	tx, err := s.course.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.TargetEntry{}, fmt.Errorf("beginning create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	level, err := s.nextLevel(ctx, tx)
	if err != nil {
		return domain.TargetEntry{}, err
	}

	entry := domain.TargetEntry{
		Ref:       uuid.New().String(),
		StampedID: rec.ID,
		Fields:    rec.Fields.Clone(),
		Level:     level,
	}
	if err := insertEntry(ctx, tx, entry, time.Now()); err != nil {
		return domain.TargetEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.TargetEntry{}, fmt.Errorf("committing create: %w", err)
	}
	return entry, nil
}

func (s *courseSession) Update(ctx context.Context, target domain.TargetEntry, rec domain.SourceRecord) (domain.TargetEntry, error) {
	if err := s.check(); err != nil {
		return domain.TargetEntry{}, err
	}

	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return domain.TargetEntry{}, fmt.Errorf("marshalling fields: %w", err)
	}

	res, err := s.course.store.db.ExecContext(ctx, `
		UPDATE course_entries SET stamped_id = ?, fields = ?, updated_at = ? WHERE ref = ?
	`, rec.ID, string(fields), formatTime(time.Now()), target.Ref)
	if err != nil {
		return domain.TargetEntry{}, fmt.Errorf("updating entry %s: %w", target.Ref, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.TargetEntry{}, fmt.Errorf("entry %s: %w", target.Ref, domain.ErrNotFound)
	}

	var level int
	err = s.course.store.db.QueryRowContext(ctx, "SELECT level FROM course_entries WHERE ref = ?", target.Ref).Scan(&level)
	if err != nil {
		return domain.TargetEntry{}, fmt.Errorf("reading entry %s: %w", target.Ref, err)
	}

	return domain.TargetEntry{
		Ref:       target.Ref,
		StampedID: rec.ID,
		Fields:    rec.Fields.Clone(),
		Level:     level,
	}, nil
}

func (s *courseSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.closed = true
	return nil
}

func (s *courseSession) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	return nil
}

// nextLevel returns the last level, or the one after it once it is full.
func (s *courseSession) nextLevel(ctx context.Context, tx *sql.Tx) (int, error) {
	limit := s.course.levelLimit
	if limit <= 0 {
		return 0, nil
	}

	var level, count int
	err := tx.QueryRowContext(ctx, `
		SELECT level, COUNT(*) FROM course_entries
		GROUP BY level ORDER BY level DESC LIMIT 1
	`).Scan(&level, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading course levels: %w", err)
	}
	if level < 1 {
		return 1, nil
	}
	if count >= limit {
		return level + 1, nil
	}
	return level, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, e domain.TargetEntry, now time.Time) error {
	fields := e.Fields
	if fields == nil {
		fields = domain.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshalling fields: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO course_entries (ref, stamped_id, fields, level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Ref, e.StampedID, string(data), e.Level, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.Ref, err)
	}
	return nil
}
