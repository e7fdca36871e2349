package driving

import (
	"context"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// SyncService runs reconciliations between the vocabulary database and the course.
type SyncService interface {
	// Plan reads both sides and returns the change-set without applying it.
	Plan(ctx context.Context) (*domain.Plan, error)

	// Sync runs one full reconciliation. The report is returned even when
	// the run fails, unless another run is in progress.
	Sync(ctx context.Context, opts SyncOptions) (*domain.RunReport, error)

	// Status returns the progress of the current run.
	Status() SyncStatus
}

// SyncOptions controls a single run.
type SyncOptions struct {
	// DryRun computes and records the plan but applies nothing.
	DryRun bool
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// RunID identifies the run in progress, empty when idle.
	RunID string

	// Running indicates if sync is currently in progress.
	Running bool

	// Phase is the current step (fetch, read-course, reconcile, apply).
	Phase string

	// Total is the number of change-set items to apply.
	Total int

	// Applied is the count of items applied so far.
	Applied int

	// Failed is the number of items that failed.
	Failed int
}
