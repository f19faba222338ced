package reports

import (
	"context"
	"fmt"
	"strings"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/tx"
)

// Service provides counter statistics.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a new reports service.
func NewService(repo Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// CounterStats returns statistics for one counter.
func (s *Service) CounterStats(ctx context.Context, counterID int64) (*CounterStats, error) {
	if counterID <= 0 {
		return nil, apperror.NewValidation("counter id must be positive").WithDetail("counterId", counterID)
	}

	var stats CounterStats
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		stats, err = s.repo.GetCounterStats(ctx, counterID)
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get counter stats: %w", err)
	}

	stats.recount()
	return &stats, nil
}

// AllCounterStats returns statistics for every counter matching filter.
func (s *Service) AllCounterStats(ctx context.Context, filter CounterFilter) (*CounterReport, error) {
	filter.Year = strings.TrimSpace(filter.Year)
	filter.DepartmentCode = strings.TrimSpace(filter.DepartmentCode)
	if filter.Scope != 0 && !filter.Scope.Valid() {
		return nil, apperror.NewValidation("unknown scope").WithDetail("scope", int(filter.Scope))
	}

	var items []CounterStats
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListCounterStats(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list counter stats: %w", err)
	}

	report := &CounterReport{Items: make([]CounterStats, 0, len(items))}
	for _, item := range items {
		item.recount()
		report.Items = append(report.Items, item)
		report.Summary.Counters++
		report.Summary.Allocated += item.Value
		report.Summary.Documents += item.Documents
		report.Summary.Burned += item.Burned
	}
	return report, nil
}
