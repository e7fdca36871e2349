package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyNotionDatabaseID = "notion.database_id"
	keyNotionTokenEnv   = "notion.token_env"
	keyNotionPageSize   = "notion.page_size"
	keyNotionRate       = "notion.requests_per_second"

	keyMappingColumns  = "mapping.columns"
	keyMappingRequired = "mapping.required"
	keyMappingDedupeOn = "mapping.dedupe_on"

	keyCourseDriver     = "course.driver"
	keyCourseStampField = "course.stamp_field"
	keyCourseColumns    = "course.columns"
	keyCourseLevelLimit = "course.level_word_limit"
	keyCourseExportDir  = "course.export_dir"
	keyCourseOutboxDir  = "course.outbox_dir"

	keyScheduleEnabled  = "schedule.enabled"
	keyScheduleInterval = "schedule.interval"

	keyLogFile       = "log.file"
	keyLogMaxSize    = "log.max_size_mb"
	keyLogResultsDir = "log.results_dir"
)

// SettingsService builds typed settings from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Unset keys take their default.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	interval, err := s.getDuration(keyScheduleInterval, defaults.Schedule.Interval)
	if err != nil {
		return nil, err
	}

	mapping := defaults.Mapping
	courseColumns := defaults.Course.Columns
	if columns := s.configStore.GetStringMap(keyMappingColumns); columns != nil {
		// A custom column set replaces the defaults wholesale.
		mapping = domain.FieldMapping{
			Columns:  columns,
			Required: s.configStore.GetStringSlice(keyMappingRequired),
			DedupeOn: s.configStore.GetString(keyMappingDedupeOn),
		}
		courseColumns = mapping.TargetFields()
	} else {
		mapping.Required = s.getStringSlice(keyMappingRequired, mapping.Required)
		if _, ok := s.configStore.Get(keyMappingDedupeOn); ok {
			mapping.DedupeOn = s.configStore.GetString(keyMappingDedupeOn)
		}
	}
	mapping.StampField = s.getString(keyCourseStampField, defaults.Mapping.StampField)

	courseColumns = s.getStringSlice(keyCourseColumns, courseColumns)

	settings := &domain.Settings{
		Notion: domain.NotionSettings{
			DatabaseID:        s.configStore.GetString(keyNotionDatabaseID),
			TokenEnv:          s.getString(keyNotionTokenEnv, defaults.Notion.TokenEnv),
			PageSize:          s.getInt(keyNotionPageSize, defaults.Notion.PageSize),
			RequestsPerSecond: s.getFloat(keyNotionRate, defaults.Notion.RequestsPerSecond),
		},
		Mapping: mapping,
		Course: domain.CourseSettings{
			Driver:         domain.CourseDriver(s.getString(keyCourseDriver, defaults.Course.Driver.String())),
			Columns:        courseColumns,
			LevelWordLimit: s.getInt(keyCourseLevelLimit, defaults.Course.LevelWordLimit),
			ExportDir:      expandHome(s.configStore.GetString(keyCourseExportDir)),
			OutboxDir:      expandHome(s.configStore.GetString(keyCourseOutboxDir)),
		},
		Schedule: domain.ScheduleSettings{
			Enabled:  s.getBool(keyScheduleEnabled, defaults.Schedule.Enabled),
			Interval: interval,
		},
		Log: domain.LogSettings{
			File:       expandHome(s.configStore.GetString(keyLogFile)),
			MaxSizeMB:  s.getInt(keyLogMaxSize, defaults.Log.MaxSizeMB),
			ResultsDir: expandHome(s.configStore.GetString(keyLogResultsDir)),
		},
	}

	return settings, nil
}

// Set updates a single configuration key and persists it.
func (s *SettingsService) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Validate checks if current settings allow a run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if settings.Notion.DatabaseID == "" {
		return fmt.Errorf("%w: %s is not set", domain.ErrInvalidInput, keyNotionDatabaseID)
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
