package driven

import (
	"context"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// ReportSink receives the report of every run, aborted runs included.
type ReportSink interface {
	Record(ctx context.Context, report *domain.RunReport) error
}

// RunStore persists run reports for later inspection.
type RunStore interface {
	ReportSink

	// Get retrieves a report by run ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.RunReport, error)

	// List returns the most recent reports, newest first.
	List(ctx context.Context, limit int) ([]domain.RunReport, error)
}
