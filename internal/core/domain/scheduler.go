package domain

import "time"

// TaskIDCourseSync is the scheduled course sync.
const TaskIDCourseSync = "course-sync"

// ScheduledTask is the persisted state of a recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun time.Time
	NextRun time.Time

	// LastSuccess is zero until a run completes without error.
	LastSuccess time.Time

	// LastError is cleared by the next successful run.
	LastError string
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// TaskResult is one execution of a scheduled task.
type TaskResult struct {
	TaskID string

	// RunID is the sync run the execution produced, if any.
	RunID string

	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts change-set items applied successfully.
	ItemsProcessed int
}
