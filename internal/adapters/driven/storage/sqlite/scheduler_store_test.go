package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDCourseSync,
		Name:        "Course Sync",
		Interval:    45 * time.Minute,
		LastRun:     now.Add(-30 * time.Minute),
		NextRun:     now.Add(15 * time.Minute),
		LastSuccess: now.Add(-30 * time.Minute),
		Enabled:     true,
	}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, domain.TaskIDCourseSync)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, task.Name, retrieved.Name)
	assert.Equal(t, task.Interval, retrieved.Interval)
	assert.True(t, retrieved.Enabled)
	assert.True(t, task.LastRun.Equal(retrieved.LastRun))
	assert.True(t, task.NextRun.Equal(retrieved.NextRun))
	assert.True(t, task.LastSuccess.Equal(retrieved.LastSuccess))
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()

	task, err := schedulerStore.GetTask(context.Background(), "non-existent")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	task := &domain.ScheduledTask{ID: "test-task", Name: "Test Task", Interval: time.Hour, Enabled: true}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	task.Name = "Updated Task"
	task.Interval = 2 * time.Hour
	task.LastError = "source unavailable"
	task.Enabled = false
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, "test-task")
	require.NoError(t, err)
	assert.Equal(t, "Updated Task", retrieved.Name)
	assert.Equal(t, 2*time.Hour, retrieved.Interval)
	assert.Equal(t, "source unavailable", retrieved.LastError)
	assert.False(t, retrieved.Enabled)
}

func TestSchedulerStore_NilArguments(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	assert.ErrorIs(t, schedulerStore.SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, schedulerStore.RecordResult(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasks(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	for _, task := range []*domain.ScheduledTask{
		{ID: "task-2", Name: "Task 2", Interval: 2 * time.Hour},
		{ID: "task-1", Name: "Task 1", Interval: time.Hour, Enabled: true},
	} {
		require.NoError(t, schedulerStore.SaveTask(ctx, task))
	}

	tasks, err = schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "task-1", tasks[0].ID)
	assert.Equal(t, "task-2", tasks[1].ID)
}

func TestSchedulerStore_DeleteTask(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{ID: "to-delete", Name: "Delete Me", Interval: time.Hour}))
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
		TaskID: "to-delete", StartedAt: time.Now(), EndedAt: time.Now(), Success: true,
	}))

	require.NoError(t, schedulerStore.DeleteTask(ctx, "to-delete"))

	task, err := schedulerStore.GetTask(ctx, "to-delete")
	require.NoError(t, err)
	assert.Nil(t, task)

	history, err := schedulerStore.GetTaskHistory(ctx, "to-delete", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSchedulerStore_RecordResult(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
		TaskID:         domain.TaskIDCourseSync,
		RunID:          "run-1",
		StartedAt:      now.Add(-5 * time.Minute),
		EndedAt:        now,
		Success:        true,
		ItemsProcessed: 10,
	}))
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
		TaskID:    domain.TaskIDCourseSync,
		StartedAt: now,
		EndedAt:   now.Add(time.Minute),
		Error:     "connection timeout",
	}))

	history, err := schedulerStore.GetTaskHistory(ctx, domain.TaskIDCourseSync, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Most recent first
	assert.False(t, history[0].Success)
	assert.Equal(t, "connection timeout", history[0].Error)
	assert.Empty(t, history[0].RunID)
	assert.True(t, history[1].Success)
	assert.Equal(t, "run-1", history[1].RunID)
	assert.Equal(t, 10, history[1].ItemsProcessed)
	assert.True(t, history[1].StartedAt.Equal(now.Add(-5*time.Minute)))
}

func TestSchedulerStore_GetTaskHistory_Limit(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	recordResults(t, schedulerStore, "history-task", 5)

	history, err := schedulerStore.GetTaskHistory(ctx, "history-task", 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	recordResults(t, schedulerStore, "prune-task", 10)
	recordResults(t, schedulerStore, "other-task", 2)

	require.NoError(t, schedulerStore.PruneHistory(ctx, 3))

	history, err := schedulerStore.GetTaskHistory(ctx, "prune-task", 100)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 10, history[0].ItemsProcessed)
	assert.Equal(t, 9, history[1].ItemsProcessed)
	assert.Equal(t, 8, history[2].ItemsProcessed)

	// Retention is per task.
	other, err := schedulerStore.GetTaskHistory(ctx, "other-task", 100)
	require.NoError(t, err)
	assert.Len(t, other, 2)
}

func TestSchedulerStore_TaskWithZeroTimes(t *testing.T) {
	schedulerStore := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{
		ID: "zero-times-task", Name: "New Task", Interval: time.Hour, Enabled: true,
	}))

	retrieved, err := schedulerStore.GetTask(ctx, "zero-times-task")
	require.NoError(t, err)
	assert.True(t, retrieved.LastRun.IsZero())
	assert.True(t, retrieved.NextRun.IsZero())
	assert.True(t, retrieved.LastSuccess.IsZero())
	assert.Empty(t, retrieved.LastError)
}

func recordResults(t *testing.T, store interface {
	RecordResult(context.Context, *domain.TaskResult) error
}, taskID string, n int) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < n; i++ {
		require.NoError(t, store.RecordResult(context.Background(), &domain.TaskResult{
			TaskID:         taskID,
			StartedAt:      now.Add(time.Duration(i) * time.Minute),
			EndedAt:        now.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Success:        true,
			ItemsProcessed: i + 1,
		}))
	}
}

// ==================== Helper Function Tests ====================

func TestFormatNullableTime(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	now := time.Date(2024, 5, 1, 10, 0, 0, 500, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-05-01T08:00:00.000000500Z", formatNullableTime(now))
	assert.True(t, now.Equal(parseTime("2024-05-01T08:00:00.000000500Z")))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "hello", nullString("hello"))
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}
