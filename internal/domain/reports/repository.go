package reports

import "context"

// Repository reads counter statistics.
type Repository interface {
	// GetCounterStats returns one counter with per-kind document counts,
	// or apperror.CodeNotFound.
	GetCounterStats(ctx context.Context, counterID int64) (CounterStats, error)

	// ListCounterStats returns matching counters ordered by scope,
	// department code, then year.
	ListCounterStats(ctx context.Context, filter CounterFilter) ([]CounterStats, error)
}
