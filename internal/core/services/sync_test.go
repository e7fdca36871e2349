package services

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursemem "github.com/custodia-labs/lexisync/internal/adapters/driven/course/memory"
	"github.com/custodia-labs/lexisync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
)

// --- Mock implementations for sync testing ---

// syncMockSource implements driven.SourceReader for testing.
type syncMockSource struct {
	mu      stdsync.Mutex
	rows    []domain.RawRow
	err     error
	block   chan struct{}
	fetched int
}

func (m *syncMockSource) Type() string                     { return "mock" }
func (m *syncMockSource) Validate(_ context.Context) error { return nil }
func (m *syncMockSource) Close() error                     { return nil }

func (m *syncMockSource) FetchRows(_ context.Context) ([]domain.RawRow, error) {
	m.mu.Lock()
	m.fetched++
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	return m.rows, m.err
}

// syncFailingSink implements driven.ReportSink and always fails.
type syncFailingSink struct{ calls int }

func (s *syncFailingSink) Record(_ context.Context, _ *domain.RunReport) error {
	s.calls++
	return errors.New("disk full")
}

// syncContextSink implements driven.ReportSink and refuses a done context,
// as a database-backed sink would.
type syncContextSink struct{ reports []*domain.RunReport }

func (s *syncContextSink) Record(ctx context.Context, report *domain.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.reports = append(s.reports, report)
	return nil
}

var (
	_ driven.SourceReader = (*syncMockSource)(nil)
	_ driven.ReportSink   = (*syncFailingSink)(nil)
	_ driven.ReportSink   = (*syncContextSink)(nil)
)

var syncT0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func word(id, french, english string) domain.RawRow {
	return domain.RawRow{
		ID:         id,
		ModifiedAt: syncT0,
		Fields:     map[string]string{"French": french, "English": english},
	}
}

func vocab(french, english string) domain.Fields {
	return domain.Fields{"term": french, "translation": english, "notes": ""}
}

func newSyncFixture(rows []domain.RawRow, entries ...domain.TargetEntry) (*SyncService, *syncMockSource, *coursemem.Course, *memory.RunStore) {
	source := &syncMockSource{rows: rows}
	course := coursemem.New(50, entries...)
	runs := memory.NewRunStore()
	svc := NewSyncService(source, course, domain.DefaultFieldMapping(), runs, nil)
	return svc, source, course, runs
}

func findEntry(entries []domain.TargetEntry, stamp string) *domain.TargetEntry {
	for i := range entries {
		if entries[i].StampedID == stamp {
			return &entries[i]
		}
	}
	return nil
}

func TestSyncService_Sync_CreatesAndUpdates(t *testing.T) {
	svc, _, course, runs := newSyncFixture(
		[]domain.RawRow{
			word("A", "chat", "cat"),
			word("C", "chien", "dog"),
		},
		domain.TargetEntry{Ref: "r1", StampedID: "C", Fields: vocab("chein", "dog")},
		domain.TargetEntry{Ref: "r2", Fields: vocab("manuel", "manual")},
	)

	report, err := svc.Sync(context.Background(), driving.SyncOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.False(t, report.Aborted())
	assert.Equal(t, domain.Summary{Creates: 1, Updates: 1, Applied: 2}, report.Summary())
	assert.Equal(t, 1, report.Unmanaged)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "chat", report.Results[0].Label)
	assert.Equal(t, domain.ActionUpdate, report.Results[1].Action)
	assert.False(t, report.EndedAt.Before(report.StartedAt))

	entries := course.Snapshot()
	require.Len(t, entries, 3)
	assert.Equal(t, "chien", findEntry(entries, "C").Fields["term"])
	assert.Equal(t, "cat", findEntry(entries, "A").Fields["translation"])
	assert.Equal(t, domain.Fields{"term": "manuel", "translation": "manual", "notes": ""}, entries[1].Fields)
	assert.Empty(t, entries[1].StampedID)

	assert.Equal(t, 0, course.OpenSessions())

	stored, err := runs.Get(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Results, 2)
}

func TestSyncService_Sync_Converges(t *testing.T) {
	svc, _, course, _ := newSyncFixture([]domain.RawRow{
		word("A", "chat", "cat"),
		word("B", "chien", "dog"),
		word("C", "oiseau", "bird"),
	})
	ctx := context.Background()

	first, err := svc.Sync(ctx, driving.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Creates)

	second, err := svc.Sync(ctx, driving.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Unchanged: 3}, second.Summary())
	assert.Empty(t, second.Results)
	assert.Len(t, course.Snapshot(), 3)
}

func TestSyncService_Sync_PartialApplyThenRecovers(t *testing.T) {
	svc, _, course, _ := newSyncFixture([]domain.RawRow{
		word("A", "chat", "cat"),
		word("B", "chien", "dog"),
		word("C", "oiseau", "bird"),
	})
	ctx := context.Background()
	course.FailOn("B", errors.New("save button not found"))

	report, err := svc.Sync(ctx, driving.SyncOptions{})
	require.ErrorIs(t, err, domain.ErrPartialApply)
	require.NotNil(t, report)
	assert.False(t, report.Aborted())
	assert.Equal(t, 2, report.Summary().Applied)
	assert.Equal(t, 1, report.Summary().Failed)
	assert.Contains(t, report.Results[1].Error, "save button not found")
	assert.Len(t, course.Snapshot(), 2)
	assert.Equal(t, 0, course.OpenSessions())

	course.FailOn("B", nil)
	report, err = svc.Sync(ctx, driving.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Creates)
	assert.Equal(t, 2, report.Unchanged)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "B", report.Results[0].RecordID)
	assert.Len(t, course.Snapshot(), 3)
}

func TestSyncService_Sync_StampMissing(t *testing.T) {
	svc, _, course, _ := newSyncFixture([]domain.RawRow{word("A", "chat", "cat")})
	course.ForgetStamp("A", true)

	report, err := svc.Sync(context.Background(), driving.SyncOptions{})
	require.ErrorIs(t, err, domain.ErrPartialApply)
	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].Success)
	assert.Contains(t, report.Results[0].Error, domain.ErrStampMissing.Error())
}

func TestSyncService_Sync_SourceUnavailable(t *testing.T) {
	svc, source, course, runs := newSyncFixture(nil)
	source.err = errors.New("401 unauthorized")

	report, err := svc.Sync(context.Background(), driving.SyncOptions{})
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	require.NotNil(t, report)
	assert.True(t, report.Aborted())
	assert.Contains(t, report.Error, "401 unauthorized")
	assert.Equal(t, 0, course.SessionsOpened())

	stored, err := runs.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSyncService_Sync_TargetStateUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *coursemem.Course)
	}{
		{"open fails", func(c *coursemem.Course) { c.FailOpen(errors.New("login failed")) }},
		{"entries fail", func(c *coursemem.Course) { c.FailEntries(errors.New("database page timed out")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, course, _ := newSyncFixture(
				[]domain.RawRow{word("A", "chat", "cat")},
				domain.TargetEntry{Ref: "r1", StampedID: "Z", Fields: vocab("zèbre", "zebra")},
			)
			tt.setup(course)

			report, err := svc.Sync(context.Background(), driving.SyncOptions{})
			require.ErrorIs(t, err, domain.ErrTargetStateUnavailable)
			assert.True(t, report.Aborted())
			assert.Empty(t, report.Results)
			assert.Zero(t, report.Creates)
			assert.Empty(t, report.Orphans)
			assert.Len(t, course.Snapshot(), 1)
			assert.Equal(t, 0, course.OpenSessions())
		})
	}
}

func TestSyncService_Sync_DryRun(t *testing.T) {
	svc, _, course, _ := newSyncFixture(
		[]domain.RawRow{word("A", "chat", "cat")},
		domain.TargetEntry{Ref: "r1", StampedID: "Z", Fields: vocab("zèbre", "zebra")},
	)

	report, err := svc.Sync(context.Background(), driving.SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Creates)
	assert.Empty(t, report.Results)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, domain.OrphanNoSourceRecord, report.Orphans[0].Reason)
	assert.Len(t, course.Snapshot(), 1)
}

func TestSyncService_Sync_ReportsWarnings(t *testing.T) {
	svc, _, _, _ := newSyncFixture([]domain.RawRow{
		word("A", "chat", "cat"),
		word("B", "chien", ""),
	})

	report, err := svc.Sync(context.Background(), driving.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Creates)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, domain.WarningDataQuality, report.Warnings[0].Kind)
	assert.Equal(t, "B", report.Warnings[0].RowID)
}

func TestSyncService_Sync_CancelledBeforeApply(t *testing.T) {
	svc, _, course, _ := newSyncFixture([]domain.RawRow{word("A", "chat", "cat")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Sync(ctx, driving.SyncOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Aborted())
	assert.Equal(t, 1, report.Creates)
	assert.Empty(t, report.Results)
	assert.Empty(t, course.Snapshot())
	assert.Equal(t, 0, course.OpenSessions())
}

func TestSyncService_Sync_CancelledRunIsRecorded(t *testing.T) {
	source := &syncMockSource{rows: []domain.RawRow{word("A", "chat", "cat")}}
	sink := &syncContextSink{}
	svc := NewSyncService(source, coursemem.New(0), domain.DefaultFieldMapping(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Sync(ctx, driving.SyncOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, sink.reports, 1)
	assert.Equal(t, report.ID, sink.reports[0].ID)
	assert.True(t, sink.reports[0].Aborted())
}

func TestSyncService_Sync_SinkFailureNotFatal(t *testing.T) {
	source := &syncMockSource{rows: []domain.RawRow{word("A", "chat", "cat")}}
	sink := &syncFailingSink{}
	svc := NewSyncService(source, coursemem.New(0), domain.DefaultFieldMapping(), sink)

	report, err := svc.Sync(context.Background(), driving.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary().Applied)
	assert.Equal(t, 1, sink.calls)
}

func TestSyncService_Sync_InProgress(t *testing.T) {
	svc, source, _, _ := newSyncFixture([]domain.RawRow{word("A", "chat", "cat")})
	source.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Sync(context.Background(), driving.SyncOptions{})
		done <- err
	}()

	require.Eventually(t, func() bool { return svc.Status().Phase == PhaseFetch }, time.Second, 5*time.Millisecond)
	status := svc.Status()
	assert.True(t, status.Running)
	assert.NotEmpty(t, status.RunID)

	report, err := svc.Sync(context.Background(), driving.SyncOptions{})
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
	assert.Nil(t, report)

	_, err = svc.Plan(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(source.block)
	require.NoError(t, <-done)
	assert.False(t, svc.Status().Running)
}

func TestSyncService_Plan(t *testing.T) {
	svc, _, course, runs := newSyncFixture(
		[]domain.RawRow{
			word("A", "chat", "cat"),
			word("C", "chien", "dog"),
			word("D", "", "fish"),
		},
		domain.TargetEntry{Ref: "r1", StampedID: "C", Fields: vocab("chein", "dog")},
	)

	plan, err := svc.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Count(domain.ActionCreate))
	assert.Equal(t, 1, plan.Count(domain.ActionUpdate))
	assert.Len(t, plan.Warnings, 1)

	assert.Equal(t, "chein", course.Snapshot()[0].Fields["term"])
	assert.Equal(t, 0, course.OpenSessions())

	stored, err := runs.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSyncService_Plan_TargetUnavailable(t *testing.T) {
	svc, _, course, _ := newSyncFixture([]domain.RawRow{word("A", "chat", "cat")})
	course.FailEntries(errors.New("timeout"))

	plan, err := svc.Plan(context.Background())
	assert.ErrorIs(t, err, domain.ErrTargetStateUnavailable)
	assert.Nil(t, plan)
	assert.Equal(t, 0, course.OpenSessions())
}

func TestSyncService_Status_Idle(t *testing.T) {
	svc, _, _, _ := newSyncFixture(nil)
	assert.Equal(t, driving.SyncStatus{}, svc.Status())
}
