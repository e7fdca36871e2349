package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu      sync.RWMutex
	reports map[string]domain.RunReport
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		reports: make(map[string]domain.RunReport),
	}
}

// Record stores a copy of the report, replacing any report with the same ID.
func (s *RunStore) Record(_ context.Context, report *domain.RunReport) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("%w: report without id", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = copyReport(report)
	return nil
}

// Get retrieves a report by run ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyReport(&report)
	return &out, nil
}

// List returns the most recent reports, newest first. A limit of 0 or less
// returns every report.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RunReport, 0, len(s.reports))
	for _, r := range s.reports {
		result = append(result, copyReport(&r))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func copyReport(r *domain.RunReport) domain.RunReport {
	out := *r
	out.Results = append([]domain.ApplyResult(nil), r.Results...)
	out.Warnings = append([]domain.Warning(nil), r.Warnings...)
	out.Orphans = append([]domain.Orphan(nil), r.Orphans...)
	return out
}
