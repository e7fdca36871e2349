package driving

import (
	"context"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// HistoryService exposes past run reports.
type HistoryService interface {
	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.RunReport, error)

	// Get returns one run. An unambiguous prefix of the run ID is accepted.
	Get(ctx context.Context, id string) (*domain.RunReport, error)
}
