package driven

import (
	"context"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// SourceReader fetches the vocabulary database.
type SourceReader interface {
	// Type returns the reader identifier (e.g. "notion").
	Type() string

	// Validate checks configuration and connectivity without reading rows.
	Validate(ctx context.Context) error

	// FetchRows returns every row of the source, in source order.
	// A partial read is an error: callers never see half a database.
	FetchRows(ctx context.Context) ([]domain.RawRow, error)

	// Close releases resources.
	Close() error
}
