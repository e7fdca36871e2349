package notion

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// Notion-specific errors.
var (
	// ErrMissingDatabaseID indicates no database was configured.
	ErrMissingDatabaseID = errors.New("notion: database id is required")

	// ErrInvalidDatabaseID indicates the database id or URL could not be parsed.
	ErrInvalidDatabaseID = errors.New("notion: invalid database id")

	// ErrMissingColumns indicates mapped columns are absent from the database.
	ErrMissingColumns = errors.New("notion: mapped columns not found in database")
)

// RateLimitError represents a rate limit exceeded error with retry time.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("notion: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// Unwrap maps the error to the domain sentinel.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// APIError represents a Notion API error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Op         string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: %s: API error %d (%s): %s", e.Op, e.StatusCode, e.Code, e.Message)
}

// Unwrap maps well-known statuses to domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrAuthRequired
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// IsNotFound checks if the error indicates a resource was not found.
// Notion also answers 404 when the database is not shared with the integration.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}
