// Package report_repo provides the PostgreSQL implementation of the counter
// statistics repository.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/numerator"
	"penomoran/internal/domain/reports"
	"penomoran/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// counterKindRow is one (counter, kind) group. Kind is NULL for counters
// without documents.
type counterKindRow struct {
	CounterID      int64     `db:"counter_id"`
	Year           string    `db:"year"`
	Scope          string    `db:"scope"`
	DepartmentCode string    `db:"department_code"`
	Value          int64     `db:"value"`
	UpdatedAt      time.Time `db:"updated_at"`
	Kind           *string   `db:"kind"`
	Documents      int64     `db:"documents"`
}

// statsQuery groups documents per counter and kind in one statement, so the
// counter value and the document counts come from the same snapshot.
func (r *ReportRepo) statsQuery() squirrel.SelectBuilder {
	return r.builder.
		Select(
			"c.id AS counter_id",
			"c.year",
			"c.scope",
			"c.department_code",
			"c.counter AS value",
			"c.updated_at",
			"d.kind",
			"COUNT(d.id) AS documents",
		).
		From("document_counters c").
		LeftJoin("documents d ON d.counter_id = c.id").
		GroupBy("c.id", "d.kind").
		OrderBy("c.scope", "c.department_code", "c.year", "c.id", "d.kind")
}

func (r *ReportRepo) buildList(filter reports.CounterFilter) (string, []any, error) {
	q := r.statsQuery()
	if filter.Year != "" {
		q = q.Where(squirrel.Eq{"c.year": filter.Year})
	}
	if filter.Scope.Valid() {
		q = q.Where(squirrel.Eq{"c.scope": filter.Scope.String()})
	}
	if filter.DepartmentCode != "" {
		q = q.Where(squirrel.Eq{"c.department_code": filter.DepartmentCode})
	}
	return q.ToSql()
}

// GetCounterStats returns one counter with per-kind document counts.
func (r *ReportRepo) GetCounterStats(ctx context.Context, counterID int64) (reports.CounterStats, error) {
	sql, args, err := r.statsQuery().Where(squirrel.Eq{"c.id": counterID}).ToSql()
	if err != nil {
		return reports.CounterStats{}, fmt.Errorf("build query: %w", err)
	}

	items, err := r.query(ctx, sql, args)
	if err != nil {
		return reports.CounterStats{}, err
	}
	if len(items) == 0 {
		return reports.CounterStats{}, apperror.NewNotFound("document_counters", counterID)
	}
	return items[0], nil
}

// ListCounterStats returns matching counters ordered by scope, department code, year.
func (r *ReportRepo) ListCounterStats(ctx context.Context, filter reports.CounterFilter) ([]reports.CounterStats, error) {
	sql, args, err := r.buildList(filter)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.query(ctx, sql, args)
}

func (r *ReportRepo) query(ctx context.Context, sql string, args []any) ([]reports.CounterStats, error) {
	var rows []counterKindRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query counter stats: %w", err)
	}
	return foldRows(rows)
}

// foldRows merges consecutive rows of the same counter. Rows arrive ordered
// by counter.
func foldRows(rows []counterKindRow) ([]reports.CounterStats, error) {
	var out []reports.CounterStats
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].CounterID != row.CounterID {
			scope, err := numerator.ParseScope(row.Scope)
			if err != nil {
				return nil, fmt.Errorf("counter %d: %w", row.CounterID, err)
			}
			out = append(out, reports.CounterStats{
				CounterID:           row.CounterID,
				Year:                row.Year,
				Scope:               scope,
				DepartmentCode:      row.DepartmentCode,
				Value:               row.Value,
				UpdatedAt:           row.UpdatedAt,
				DocumentCountByKind: make(map[numerator.Kind]int64),
			})
		}
		if row.Kind == nil || row.Documents == 0 {
			continue
		}

		kind, err := numerator.ParseKind(*row.Kind)
		if err != nil {
			return nil, fmt.Errorf("counter %d: %w", row.CounterID, err)
		}
		out[len(out)-1].AddDocuments(kind, row.Documents)
	}
	return out, nil
}
