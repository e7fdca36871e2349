package domain

import (
	"fmt"
	"time"
)

// CourseDriver identifies the course adapter.
type CourseDriver string

const (
	// CourseDriverSQLite keeps the course as a local SQLite mirror.
	CourseDriverSQLite CourseDriver = "sqlite"

	// CourseDriverMemriseExport reads saved Memrise database pages and writes
	// bulk-add and update batches for the browser automation to paste.
	CourseDriverMemriseExport CourseDriver = "memrise-export"
)

// IsValid returns true if the driver is known.
func (d CourseDriver) IsValid() bool {
	switch d {
	case CourseDriverSQLite, CourseDriverMemriseExport:
		return true
	default:
		return false
	}
}

// String returns the string representation of the driver.
func (d CourseDriver) String() string {
	return string(d)
}

// Settings is the complete application configuration.
type Settings struct {
	Notion   NotionSettings
	Mapping  FieldMapping
	Course   CourseSettings
	Schedule ScheduleSettings
	Log      LogSettings
}

// NotionSettings configures the vocabulary database reader.
type NotionSettings struct {
	// DatabaseID is the Notion database to query.
	DatabaseID string

	// TokenEnv names the environment variable holding the integration token.
	TokenEnv string

	// PageSize is the number of rows requested per query page (max 100).
	PageSize int

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond float64
}

// CourseSettings configures the course adapter.
type CourseSettings struct {
	Driver CourseDriver

	// Columns is the ordered list of course fields, stamp column excluded.
	Columns []string

	// LevelWordLimit caps the number of entries per course level.
	LevelWordLimit int

	// ExportDir holds saved database pages (memrise-export).
	ExportDir string

	// OutboxDir receives bulk-add and update batches (memrise-export).
	OutboxDir string
}

// ScheduleSettings configures the daemon.
type ScheduleSettings struct {
	Enabled  bool
	Interval time.Duration
}

// LogSettings configures log and result file output.
type LogSettings struct {
	// File is the rotating log file; empty logs to stderr only.
	File string

	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int

	// ResultsDir receives one results CSV per run; empty disables it.
	ResultsDir string
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Notion: NotionSettings{
			TokenEnv:          "NOTION_SECRET",
			PageSize:          100,
			RequestsPerSecond: 3,
		},
		Mapping: DefaultFieldMapping(),
		Course: CourseSettings{
			Driver:         CourseDriverSQLite,
			Columns:        []string{"term", "translation", "notes"},
			LevelWordLimit: 50,
		},
		Schedule: ScheduleSettings{
			Enabled:  true,
			Interval: time.Hour,
		},
		Log: LogSettings{
			MaxSizeMB: 10,
		},
	}
}

// Validate checks settings that would make every run fail.
func (s Settings) Validate() error {
	if err := s.Mapping.Validate(); err != nil {
		return err
	}
	if s.Notion.PageSize < 1 || s.Notion.PageSize > 100 {
		return fmt.Errorf("%w: notion.page_size must be between 1 and 100", ErrInvalidInput)
	}
	if s.Notion.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: notion.requests_per_second must be positive", ErrInvalidInput)
	}
	if !s.Course.Driver.IsValid() {
		return fmt.Errorf("%w: course driver %q", ErrUnsupportedType, s.Course.Driver)
	}
	if s.Course.LevelWordLimit < 1 {
		return fmt.Errorf("%w: course.level_word_limit must be positive", ErrInvalidInput)
	}
	if s.Course.Driver == CourseDriverMemriseExport && (s.Course.ExportDir == "" || s.Course.OutboxDir == "") {
		return fmt.Errorf("%w: memrise-export needs course.export_dir and course.outbox_dir", ErrInvalidInput)
	}
	fields := make(map[string]bool, len(s.Mapping.Columns))
	for _, f := range s.Mapping.TargetFields() {
		fields[f] = true
	}
	for _, c := range s.Course.Columns {
		if !fields[c] {
			return fmt.Errorf("%w: course column %q is not a mapped field", ErrInvalidMapping, c)
		}
		delete(fields, c)
	}
	// A mapped field with no course column would differ on every run.
	for _, f := range s.Mapping.TargetFields() {
		if fields[f] {
			return fmt.Errorf("%w: mapped field %q has no course column", ErrInvalidMapping, f)
		}
	}
	if s.Schedule.Enabled && s.Schedule.Interval < time.Minute {
		return fmt.Errorf("%w: schedule.interval must be at least 1m", ErrInvalidInput)
	}
	return nil
}
