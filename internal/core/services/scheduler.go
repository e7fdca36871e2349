package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is the number of results kept per task.
const historyRetention = 100

// Scheduler runs the course sync on an interval. Task state lives in the
// store, so a restarted daemon resumes the previous schedule.
type Scheduler struct {
	config  domain.ScheduleSettings
	store   driven.SchedulerStore
	syncSvc driving.SyncService

	// tick is how often due tasks are checked.
	tick time.Duration

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler for the course sync.
func NewScheduler(
	config domain.ScheduleSettings,
	store driven.SchedulerStore,
	syncSvc driving.SyncService,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		syncSvc:  syncSvc,
		tick:     time.Minute,
		inFlight: make(map[string]bool),
	}
}

// Start runs due tasks until ctx is cancelled or Stop is called. A second
// Start while running returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// Stop ends the loop and waits for a running sync to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Reconfigure applies new schedule settings to the stored task.
func (s *Scheduler) Reconfigure(ctx context.Context, config domain.ScheduleSettings) error {
	s.mu.Lock()
	s.config = config
	s.mu.Unlock()
	return s.initialiseTasks(ctx)
}

func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	return s.ensureTask(ctx, domain.TaskIDCourseSync, "Course Sync", cfg)
}

// ensureTask creates the task or brings its schedule in line with cfg.
// A new task is due at once; an interval change counts from the last run.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.ScheduleSettings) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case task == nil:
		task = &domain.ScheduledTask{ID: id, Name: name, NextRun: time.Now()}
	case task.Interval != cfg.Interval && !task.LastRun.IsZero():
		task.NextRun = task.LastRun.Add(cfg.Interval)
	}
	task.Interval = cfg.Interval
	task.Enabled = cfg.Enabled

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask starts the task in the background unless it is still running.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: %s still running, skipping", task.ID)
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()
		s.execute(ctx, task)
	}()
}

// execute runs one task and persists its outcome.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) {
	result := &domain.TaskResult{TaskID: task.ID, StartedAt: time.Now()}

	var err error
	switch task.ID {
	case domain.TaskIDCourseSync:
		err = s.runCourseSync(ctx, result)
	default:
		logger.Warn("scheduler: unknown task ID: %s", task.ID)
		return
	}
	result.EndedAt = time.Now()

	result.Success = err == nil
	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)
	if err != nil {
		result.Error = err.Error()
		task.LastError = result.Error
		logger.Warn("scheduler: %s failed: %v", task.ID, err)
	} else {
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyRetention); err != nil {
		logger.Warn("scheduler: failed to prune history: %v", err)
	}
}

// runCourseSync runs one sync and links the result to its run report.
func (s *Scheduler) runCourseSync(ctx context.Context, result *domain.TaskResult) error {
	if s.syncSvc == nil {
		return nil
	}

	report, err := s.syncSvc.Sync(ctx, driving.SyncOptions{})
	if report != nil {
		result.RunID = report.ID
		result.ItemsProcessed = report.Summary().Applied
	}
	return err
}
