package notion

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

const (
	// DefaultPageSize is the largest page the query endpoint returns.
	DefaultPageSize = 100

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is how often a throttled request is retried.
	MaxRetries = 3
)

var hexID = regexp.MustCompile(`[0-9a-fA-F]{32}`)

// Config holds Notion reader configuration.
type Config struct {
	// DatabaseID is the database to query, in canonical dashed form.
	DatabaseID string

	// PageSize is the number of rows per query page.
	PageSize int

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond float64

	// Columns are the source columns the database must contain.
	Columns []string

	// Transport overrides the HTTP transport. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// ParseConfig builds a Config from settings, applying defaults.
func ParseConfig(s domain.NotionSettings, mapping domain.FieldMapping) (*Config, error) {
	id, err := ParseDatabaseID(s.DatabaseID)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseID:        id,
		PageSize:          s.PageSize,
		RequestsPerSecond: s.RequestsPerSecond,
		Columns:           mapping.SourceColumns(),
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRate
	}
	return cfg, nil
}

// ParseDatabaseID accepts a bare id (with or without dashes) or a database
// URL copied from the browser, and returns the dashed id.
func ParseDatabaseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingDatabaseID
	}

	candidate := strings.ReplaceAll(raw, "-", "")
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		// The id is the trailing segment of the path, after the title slug.
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		last := segments[len(segments)-1]
		candidate = strings.ReplaceAll(last, "-", "")
		if len(candidate) > 32 {
			candidate = candidate[len(candidate)-32:]
		}
	}

	if len(candidate) != 32 || !hexID.MatchString(candidate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDatabaseID, raw)
	}
	id := strings.ToLower(candidate)
	return id[0:8] + "-" + id[8:12] + "-" + id[12:16] + "-" + id[16:20] + "-" + id[20:], nil
}
