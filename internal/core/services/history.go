package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
	"github.com/custodia-labs/lexisync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads past run reports.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a history service over a run store.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// List returns the most recent runs, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunReport, error) {
	reports, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return reports, nil
}

// Get returns one run by ID or unambiguous ID prefix.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.RunReport, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty run id", domain.ErrInvalidInput)
	}

	report, err := s.runs.Get(ctx, id)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	all, err := s.runs.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var match *domain.RunReport
	for i := range all {
		if !strings.HasPrefix(all[i].ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: run id %q is ambiguous", domain.ErrInvalidInput, id)
		}
		match = &all[i]
	}
	if match == nil {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return match, nil
}
