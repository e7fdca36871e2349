package domain

import "time"

// RawRow is one row as returned by a SourceReader, before normalisation.
// Fields are keyed by source column name. The position of a row in the
// reader's output is its arrival order.
type RawRow struct {
	// ID is the stable row identifier (a Notion page id). It may repeat.
	ID string

	// ModifiedAt is when the row was last edited in the source.
	ModifiedAt time.Time

	// Fields maps source column names to their text values.
	Fields map[string]string
}
