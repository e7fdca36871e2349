package driving

import "github.com/custodia-labs/lexisync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults applied.
	Get() (*domain.Settings, error)

	// Set updates a single configuration key and persists it.
	Set(key string, value any) error

	// Validate checks if current settings allow a run.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// Path returns the configuration file path.
	Path() string
}
