package memrise

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// pendingRefPrefix marks entries that exist only in the outbox.
const pendingRefPrefix = "pending:"

// ErrNoPages is returned by Open when the export directory holds no saved page.
var ErrNoPages = errors.New("memrise: no saved pages")

// Config configures the memrise-export driver.
type Config struct {
	// ExportDir holds the saved course pages.
	ExportDir string

	// OutboxDir receives the add and update batches.
	OutboxDir string

	// Columns are the course columns, stamp excluded, in course order.
	Columns []string

	// StampField is the course column holding the record id.
	StampField string

	// LevelWordLimit caps the number of words per level.
	LevelWordLimit int
}

// NewConfig builds a Config from settings.
func NewConfig(s domain.Settings) Config {
	return Config{
		ExportDir:      s.Course.ExportDir,
		OutboxDir:      s.Course.OutboxDir,
		Columns:        s.Course.Columns,
		StampField:     s.Mapping.StampField,
		LevelWordLimit: s.Course.LevelWordLimit,
	}
}

// Course reads a saved Memrise course and writes change batches.
type Course struct {
	config Config
}

var _ driven.CourseOpener = (*Course)(nil)

// New creates a memrise-export course.
func New(cfg Config) *Course {
	return &Course{config: cfg}
}

// Type returns the driver name.
func (c *Course) Type() string {
	return string(domain.CourseDriverMemriseExport)
}

// Open reads the saved pages and the pending outbox.
func (c *Course) Open(ctx context.Context) (driven.CourseSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.config.OutboxDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating outbox: %w", err)
	}

	s := &session{config: c.config, index: make(map[string]int)}
	if err := s.loadPages(); err != nil {
		return nil, err
	}
	if err := s.loadOutbox(); err != nil {
		return nil, err
	}
	logger.Debug("memrise: %d entries from %s", len(s.entries), c.config.ExportDir)
	return s, nil
}

// ReadExport returns the entries of the saved pages in cfg.ExportDir, in
// course order. The outbox is not read.
func ReadExport(ctx context.Context, cfg Config) ([]domain.TargetEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &session{config: cfg, index: make(map[string]int)}
	if err := s.loadPages(); err != nil {
		return nil, err
	}
	return s.entries, nil
}

type session struct {
	config Config

	mu      sync.Mutex
	entries []domain.TargetEntry
	index   map[string]int // ref -> entries position
	closed  bool
}

var _ driven.CourseSession = (*session)(nil)

//nolint:gocyclo // Merges database and level pages.
func (s *session) loadPages() error {
	files, err := os.ReadDir(s.config.ExportDir)
	if err != nil {
		return fmt.Errorf("reading export directory: %w", err)
	}

	// Database pages first so level pages only assign levels.
	var pages []string
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if f.IsDir() || (ext != ".html" && ext != ".htm") {
			continue
		}
		pages = append(pages, f.Name())
	}
	sort.SliceStable(pages, func(i, j int) bool {
		li, lj := levelFromName(pages[i]), levelFromName(pages[j])
		if (li == 0) != (lj == 0) {
			return li == 0
		}
		if li != lj {
			return li < lj
		}
		return pages[i] < pages[j]
	})
	if len(pages) == 0 {
		return fmt.Errorf("%w in %s", ErrNoPages, s.config.ExportDir)
	}

	for _, name := range pages {
		rows, err := s.readPage(name)
		if err != nil {
			return err
		}
		level := levelFromName(name)
		for _, row := range rows {
			if i, ok := s.index[row.ThingID]; ok {
				if level > 0 {
					s.entries[i].Level = level
				}
				continue
			}
			s.add(domain.TargetEntry{
				Ref:       row.ThingID,
				StampedID: row.Cells[s.config.StampField],
				Fields:    s.fieldsFrom(row.Cells),
				Level:     level,
			})
		}
	}
	return nil
}

func (s *session) readPage(name string) ([]pageRow, error) {
	f, err := os.Open(filepath.Join(s.config.ExportDir, name))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	rows, err := parsePage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}

func (s *session) loadOutbox() error {
	adds, err := readAdds(s.config.OutboxDir)
	if err != nil {
		return err
	}

	stamped := make(map[string]bool, len(s.entries))
	for _, e := range s.entries {
		if e.Managed() {
			stamped[e.StampedID] = true
		}
	}
	for _, a := range adds {
		values := make(map[string]string, len(a.Values))
		for i, col := range s.columns() {
			if i < len(a.Values) {
				values[col] = a.Values[i]
			}
		}
		stamp := values[s.config.StampField]
		// Already pasted and saved again.
		if stamp == "" || stamped[stamp] {
			continue
		}
		stamped[stamp] = true
		s.add(domain.TargetEntry{
			Ref:       pendingRefPrefix + stamp,
			StampedID: stamp,
			Fields:    s.fieldsFrom(values),
			Level:     a.Level,
		})
	}

	updates, err := readUpdates(s.config.OutboxDir)
	if err != nil {
		return err
	}
	for _, u := range updates {
		i, ok := s.index[u.Ref]
		if !ok {
			logger.Warn("memrise: pending update for unknown entry %s", u.Ref)
			continue
		}
		for _, col := range s.config.Columns {
			if v, ok := u.Values[col]; ok {
				s.entries[i].Fields[col] = v
			}
		}
		if v, ok := u.Values[s.config.StampField]; ok {
			s.entries[i].StampedID = v
		}
	}
	return nil
}

func (s *session) Entries(_ context.Context) ([]domain.TargetEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrSessionClosed
	}

	out := make([]domain.TargetEntry, len(s.entries))
	for i, e := range s.entries {
		e.Fields = e.Fields.Clone()
		out[i] = e
	}
	return out, nil
}

func (s *session) Create(ctx context.Context, rec domain.SourceRecord) (domain.TargetEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return domain.TargetEntry{}, err
	}

	level := s.nextLevel()
	path := filepath.Join(s.config.OutboxDir, addFile(level))
	if err := appendTSV(path, nil, s.row(rec)); err != nil {
		return domain.TargetEntry{}, err
	}

	entry := domain.TargetEntry{
		Ref:       pendingRefPrefix + rec.ID,
		StampedID: rec.ID,
		Fields:    s.fieldsFrom(rec.Fields),
		Level:     level,
	}
	s.add(entry)
	entry.Fields = entry.Fields.Clone()
	return entry, nil
}

func (s *session) Update(ctx context.Context, target domain.TargetEntry, rec domain.SourceRecord) (domain.TargetEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return domain.TargetEntry{}, err
	}

	i, ok := s.index[target.Ref]
	if !ok {
		return domain.TargetEntry{}, fmt.Errorf("entry %s: %w", target.Ref, domain.ErrNotFound)
	}

	header := append([]string{refColumn}, s.columns()...)
	row := append([]string{target.Ref}, s.row(rec)...)
	if err := appendTSV(filepath.Join(s.config.OutboxDir, updatesFile), header, row); err != nil {
		return domain.TargetEntry{}, err
	}

	s.entries[i].Fields = s.fieldsFrom(rec.Fields)
	s.entries[i].StampedID = rec.ID
	out := s.entries[i]
	out.Fields = out.Fields.Clone()
	return out, nil
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.closed = true
	return nil
}

// check must be called with the session lock held.
func (s *session) check(ctx context.Context) error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	return ctx.Err()
}

func (s *session) add(e domain.TargetEntry) {
	s.index[e.Ref] = len(s.entries)
	s.entries = append(s.entries, e)
}

// columns returns the batch columns: course columns, then the stamp.
func (s *session) columns() []string {
	cols := make([]string, 0, len(s.config.Columns)+1)
	cols = append(cols, s.config.Columns...)
	return append(cols, s.config.StampField)
}

func (s *session) row(rec domain.SourceRecord) []string {
	row := make([]string, 0, len(s.config.Columns)+1)
	for _, col := range s.config.Columns {
		row = append(row, rec.Fields[col])
	}
	return append(row, rec.ID)
}

func (s *session) fieldsFrom(values map[string]string) domain.Fields {
	fields := make(domain.Fields, len(s.config.Columns))
	for _, col := range s.config.Columns {
		fields[col] = values[col]
	}
	return fields
}

// nextLevel returns the last level, or the one after it once it is full.
func (s *session) nextLevel() int {
	last, count := 1, 0
	for _, e := range s.entries {
		switch {
		case e.Level > last:
			last, count = e.Level, 1
		case e.Level == last:
			count++
		}
	}
	if s.config.LevelWordLimit > 0 && count >= s.config.LevelWordLimit {
		return last + 1
	}
	return last
}
