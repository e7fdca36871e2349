package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
	"github.com/custodia-labs/lexisync/internal/core/reconcile"
	"github.com/custodia-labs/lexisync/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// Run phases reported by Status.
const (
	PhaseFetch      = "fetch"
	PhaseReadCourse = "read-course"
	PhaseReconcile  = "reconcile"
	PhaseApply      = "apply"
)

// SyncService coordinates one reconciliation run at a time.
type SyncService struct {
	source     driven.SourceReader
	course     driven.CourseOpener
	normaliser *reconcile.Normaliser
	labelField string
	sinks      []driven.ReportSink
	now        func() time.Time

	// Status tracking
	mu     sync.Mutex
	status driving.SyncStatus
}

// NewSyncService creates a sync service. The mapping must have been validated.
// Every report is passed to each sink; nil sinks are skipped.
func NewSyncService(
	source driven.SourceReader,
	course driven.CourseOpener,
	mapping domain.FieldMapping,
	sinks ...driven.ReportSink,
) *SyncService {
	active := make([]driven.ReportSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			active = append(active, sink)
		}
	}
	return &SyncService{
		source:     source,
		course:     course,
		normaliser: reconcile.NewNormaliser(mapping),
		labelField: mapping.LabelField(),
		sinks:      active,
		now:        time.Now,
	}
}

// Plan reads both sides and returns the change-set without applying it.
func (s *SyncService) Plan(ctx context.Context) (*domain.Plan, error) {
	if !s.begin("") {
		return nil, domain.ErrSyncInProgress
	}
	defer s.finish()

	warnings, records, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(session)

	plan, err := s.reconcile(ctx, session, records)
	if err != nil {
		return nil, err
	}
	plan.Warnings = warnings
	return plan, nil
}

// Sync runs one reconciliation and applies the change-set unless DryRun is set.
// The report is returned together with any error except ErrSyncInProgress.
func (s *SyncService) Sync(ctx context.Context, opts driving.SyncOptions) (*domain.RunReport, error) {
	report := &domain.RunReport{
		ID:        uuid.New().String(),
		StartedAt: s.now(),
		DryRun:    opts.DryRun,
	}
	if !s.begin(report.ID) {
		return nil, domain.ErrSyncInProgress
	}
	defer s.finish()

	logger.Section("Sync " + report.ID)

	err := s.run(ctx, opts, report)

	report.EndedAt = s.now()
	if err != nil && !errors.Is(err, domain.ErrPartialApply) {
		report.Error = err.Error()
		logger.Warn("Sync %s aborted: %v", report.ID, err)
	}
	// An interrupted run is still recorded.
	s.record(context.WithoutCancel(ctx), report)

	sum := report.Summary()
	logger.Info("Sync complete: %d created, %d updated, %d unchanged, %d failed",
		sum.Creates, sum.Updates, sum.Unchanged, sum.Failed)
	return report, err
}

// Status returns the progress of the current run.
func (s *SyncService) Status() driving.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *SyncService) run(ctx context.Context, opts driving.SyncOptions, report *domain.RunReport) (err error) {
	// 1. Fetch and normalise the source snapshot
	warnings, records, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	report.Warnings = warnings

	// 2. Open the course; the session is closed on every path
	session, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close course session: %w", closeErr))
		}
	}()

	// 3. Read the course and reconcile
	plan, err := s.reconcile(ctx, session, records)
	if err != nil {
		return err
	}
	plan.Warnings = warnings
	report.ApplyPlan(plan)

	for _, orphan := range plan.Orphans {
		logger.Info("Orphaned entry %s (stamp %s): %s", orphan.Entry.Ref, orphan.Entry.StampedID, orphan.Reason)
	}
	logger.Info("Plan: %d creates, %d updates, %d unchanged, %d unmanaged",
		report.Creates, report.Updates, report.Unchanged, report.Unmanaged)

	if opts.DryRun || plan.Empty() {
		return nil
	}

	// 4. Apply items in order; a failed item does not stop the run
	s.update(func(st *driving.SyncStatus) {
		st.Phase = PhaseApply
		st.Total = len(plan.Items)
	})

	failed := 0
	for _, item := range plan.Items {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("apply interrupted after %d items: %w", len(report.Results), ctxErr)
		}

		result := s.apply(ctx, session, item)
		report.Results = append(report.Results, result)

		if !result.Success {
			failed++
			logger.Warn("%s %s (%s) failed: %s", item.Action, result.Label, result.RecordID, result.Error)
		} else {
			logger.Debug("%s %s (%s)", item.Action, result.Label, result.RecordID)
		}
		s.update(func(st *driving.SyncStatus) {
			if result.Success {
				st.Applied++
			} else {
				st.Failed++
			}
		})
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d items failed", domain.ErrPartialApply, failed, len(plan.Items))
	}
	return nil
}

// fetch reads every row and normalises them.
func (s *SyncService) fetch(ctx context.Context) ([]domain.Warning, []domain.SourceRecord, error) {
	s.update(func(st *driving.SyncStatus) { st.Phase = PhaseFetch })

	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, s.source.Type(), err)
	}
	logger.Info("Fetched %d rows from %s", len(rows), s.source.Type())

	result := s.normaliser.Normalise(rows)
	for _, w := range result.Warnings {
		if w.Kind == domain.WarningDuplicateResolved {
			logger.Info("%s", w)
		} else {
			logger.Warn("%s", w)
		}
	}
	return result.Warnings, result.Records, nil
}

func (s *SyncService) open(ctx context.Context) (driven.CourseSession, error) {
	s.update(func(st *driving.SyncStatus) { st.Phase = PhaseReadCourse })

	session, err := s.course.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrTargetStateUnavailable, s.course.Type(), err)
	}
	return session, nil
}

// reconcile reads the course snapshot; without one nothing is planned.
func (s *SyncService) reconcile(
	ctx context.Context,
	session driven.CourseSession,
	records []domain.SourceRecord,
) (*domain.Plan, error) {
	entries, err := session.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTargetStateUnavailable, err)
	}

	s.update(func(st *driving.SyncStatus) { st.Phase = PhaseReconcile })
	plan := reconcile.Reconcile(records, entries)
	return &plan, nil
}

// apply performs one item and checks the stamp contract.
func (s *SyncService) apply(ctx context.Context, session driven.CourseSession, item domain.ChangeSetItem) domain.ApplyResult {
	result := domain.ApplyResult{
		Action:   item.Action,
		RecordID: item.Record.ID,
		Label:    item.Record.Label(s.labelField),
	}

	var (
		got domain.TargetEntry
		err error
	)
	switch item.Action {
	case domain.ActionCreate:
		got, err = session.Create(ctx, item.Record)
	case domain.ActionUpdate:
		if item.Target == nil {
			err = fmt.Errorf("%w: update without target", domain.ErrInvalidInput)
			break
		}
		got, err = session.Update(ctx, *item.Target, item.Record)
	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnsupportedType, item.Action)
	}

	if err == nil && !got.StampedBy(item.Record.ID) {
		err = fmt.Errorf("%w: entry %s carries %q", domain.ErrStampMissing, got.Ref, got.StampedID)
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	return result
}

// record hands the report to every sink. Sink failures are logged only.
func (s *SyncService) record(ctx context.Context, report *domain.RunReport) {
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, report); err != nil {
			logger.Warn("Failed to record run %s: %v", report.ID, err)
		}
	}
}

func (s *SyncService) begin(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return false
	}
	s.status = driving.SyncStatus{RunID: runID, Running: true}
	return true
}

func (s *SyncService) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = driving.SyncStatus{}
}

func (s *SyncService) update(fn func(st *driving.SyncStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}

func closeSession(session driven.CourseSession) {
	if err := session.Close(); err != nil {
		logger.Warn("Failed to close course session: %v", err)
	}
}
