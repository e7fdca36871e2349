package driven

import (
	"context"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// SchedulerStore keeps the daemon's task state and execution history so a
// restart resumes the schedule instead of syncing at once.
type SchedulerStore interface {
	// GetTask returns nil and no error when the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or replaces the task with the same ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask removes the task and its history.
	DeleteTask(ctx context.Context, taskID string) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns up to limit results, most recent first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps the most recent keep results of each task.
	PruneHistory(ctx context.Context, keep int) error
}
