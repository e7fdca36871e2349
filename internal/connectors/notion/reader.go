package notion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// Reader reads every row of a Notion database.
type Reader struct {
	config *Config
	client *Client
}

// NewReader creates a Notion reader.
func NewReader(cfg *Config, tokenProvider driven.TokenProvider) *Reader {
	return &Reader{
		config: cfg,
		client: NewClient(tokenProvider, cfg),
	}
}

// Type returns the reader type identifier.
func (r *Reader) Type() string {
	return "notion"
}

// Validate checks the database is reachable and has every mapped column.
func (r *Reader) Validate(ctx context.Context) error {
	db, err := r.client.Database(ctx)
	if err != nil {
		return err
	}

	var missing []string
	for _, col := range r.config.Columns {
		if _, ok := db.Properties[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// FetchRows follows the query cursor until the database is exhausted.
func (r *Reader) FetchRows(ctx context.Context) ([]domain.RawRow, error) {
	var rows []domain.RawRow
	cursor := ""

	for page := 1; ; page++ {
		resp, err := r.client.QueryPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		for i := range resp.Results {
			rows = append(rows, PageToRow(&resp.Results[i]))
		}
		logger.Debug("notion: page %d returned %d rows", page, len(resp.Results))

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = string(resp.NextCursor)
	}

	logger.Debug("notion: fetched %d rows", len(rows))
	return rows, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	return nil
}

// PageToRow converts a database page to a raw row.
func PageToRow(page *notionapi.Page) domain.RawRow {
	fields := make(map[string]string, len(page.Properties))
	for name, prop := range page.Properties {
		if text, ok := PropertyText(prop); ok {
			fields[name] = text
		}
	}
	return domain.RawRow{
		ID:         string(page.ID),
		ModifiedAt: page.LastEditedTime,
		Fields:     fields,
	}
}
