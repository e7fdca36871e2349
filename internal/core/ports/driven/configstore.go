package driven

// ConfigReader reads settings by dot-separated key, such as
// "notion.database_id" or "mapping.columns.French". Missing keys and values
// of another type read as the zero value.
type ConfigReader interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// GetFloat also accepts integers.
	GetFloat(key string) float64

	// GetStringSlice skips non-string elements.
	GetStringSlice(key string) []string

	// GetStringMap returns every string value under prefix keyed by the rest
	// of its key, or nil when nothing is set under prefix.
	GetStringMap(prefix string) map[string]string
}

// ConfigStore is a ConfigReader backed by persistent storage.
type ConfigStore interface {
	ConfigReader

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load replaces the in-memory configuration with the stored one.
	Load() error

	// Path identifies the storage, usually the config file path.
	Path() string
}
