package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/lexisync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
	"github.com/custodia-labs/lexisync/internal/core/services"
)

type mockSyncService struct {
	mu      sync.Mutex
	report  *domain.RunReport
	plan    *domain.Plan
	err     error
	options []driving.SyncOptions
	plans   int
}

func (m *mockSyncService) Plan(_ context.Context) (*domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans++
	return m.plan, m.err
}

func (m *mockSyncService) Sync(_ context.Context, opts driving.SyncOptions) (*domain.RunReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options = append(m.options, opts)
	if m.report != nil {
		m.report.DryRun = opts.DryRun
	}
	return m.report, m.err
}

func (m *mockSyncService) Status() driving.SyncStatus {
	return driving.SyncStatus{}
}

func (m *mockSyncService) calls() []driving.SyncOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driving.SyncOptions(nil), m.options...)
}

type mockHistoryService struct {
	reports []domain.RunReport
	err     error
	limit   int
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.RunReport, error) {
	m.limit = limit
	return m.reports, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.RunReport, error) {
	for i := range m.reports {
		if m.reports[i].ID == id {
			return &m.reports[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// testEnv holds the services a command runs against.
type testEnv struct {
	store   *memory.ConfigStore
	sync    *mockSyncService
	history *mockHistoryService
	closed  int
}

// setupTestDeps installs mock services with a runnable configuration.
func setupTestDeps(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   memory.NewConfigStore(),
		sync:    &mockSyncService{},
		history: &mockHistoryService{},
	}
	_ = env.store.Set("notion.database_id", "7c83b2ef86e941b986e8c8461fb5134d")

	old := deps
	deps = &Dependencies{
		Settings: services.NewSettingsService(env.store),
		History:  env.history,
		NewSync: func(_ *domain.Settings) (driving.SyncService, func() error, error) {
			return env.sync, func() error {
				env.closed++
				return nil
			}, nil
		},
	}
	t.Cleanup(func() { deps = old })
	return env
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		syncDryRun = false
		historyLimit = 20
		configSetList = false
		courseImportFrom = ""
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func testReport() *domain.RunReport {
	started := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return &domain.RunReport{
		ID:        "0f5a3c1e-8d7b-4c1a-9e2f-3b4d5e6f7a8b",
		StartedAt: started,
		EndedAt:   started.Add(2 * time.Second),
		Creates:   2,
		Updates:   1,
		Unchanged: 7,
		Unmanaged: 3,
		Results: []domain.ApplyResult{
			{Action: domain.ActionCreate, RecordID: "r1", Label: "chat", Success: true},
			{Action: domain.ActionCreate, RecordID: "r2", Label: "chien", Success: true},
			{Action: domain.ActionUpdate, RecordID: "r3", Label: "maison", Success: true},
		},
	}
}
