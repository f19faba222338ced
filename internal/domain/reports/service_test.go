package reports

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/numerator"
)

type fakeRepo struct {
	items      []CounterStats
	lastFilter CounterFilter
}

func (f *fakeRepo) GetCounterStats(_ context.Context, counterID int64) (CounterStats, error) {
	for _, item := range f.items {
		if item.CounterID == counterID {
			return item, nil
		}
	}
	return CounterStats{}, apperror.NewNotFound("document_counters", counterID)
}

func (f *fakeRepo) ListCounterStats(_ context.Context, filter CounterFilter) ([]CounterStats, error) {
	f.lastFilter = filter
	return f.items, nil
}

type readOnlyTx struct{ calls int }

func (r *readOnlyTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *readOnlyTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

func burnedCounter() CounterStats {
	s := CounterStats{CounterID: 1, Year: "2025", Scope: numerator.ScopeDepartment, DepartmentCode: "IF", Value: 6}
	s.AddDocuments(numerator.KindLetter, 5)
	return s
}

func TestCounterStats_BurnedValue(t *testing.T) {
	txm := &readOnlyTx{}
	svc := NewService(&fakeRepo{items: []CounterStats{burnedCounter()}}, txm)

	stats, err := svc.CounterStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(6), stats.Value)
	assert.Equal(t, int64(5), stats.DocumentCountByKind[numerator.KindLetter])
	assert.Equal(t, int64(5), stats.Documents)
	assert.Equal(t, int64(1), stats.Burned)
	assert.Equal(t, 1, txm.calls)
}

func TestCounterStats_NotFound(t *testing.T) {
	svc := NewService(&fakeRepo{}, &readOnlyTx{})

	_, err := svc.CounterStats(context.Background(), 99)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.CounterStats(context.Background(), 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestAllCounterStats_Summary(t *testing.T) {
	unused := CounterStats{CounterID: 2, Year: "2025", Scope: numerator.ScopeFaculty, Value: 3}
	unused.AddDocuments(numerator.KindDecree, 2)
	unused.AddDocuments(numerator.KindCertificate, 1)

	repo := &fakeRepo{items: []CounterStats{burnedCounter(), unused}}
	svc := NewService(repo, &readOnlyTx{})

	report, err := svc.AllCounterStats(context.Background(), CounterFilter{Year: " 2025 "})
	require.NoError(t, err)

	assert.Equal(t, "2025", repo.lastFilter.Year)
	require.Len(t, report.Items, 2)
	assert.Equal(t, CounterSummary{Counters: 2, Allocated: 9, Documents: 8, Burned: 1}, report.Summary)
	assert.Zero(t, report.Items[1].Burned)
}

func TestAllCounterStats_BurnedValue(t *testing.T) {
	repo := &fakeRepo{items: []CounterStats{burnedCounter()}}
	svc := NewService(repo, &readOnlyTx{})

	report, err := svc.AllCounterStats(context.Background(), CounterFilter{})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)

	item := report.Items[0]
	assert.Equal(t, int64(6), item.Value)
	assert.Equal(t, int64(5), item.DocumentCountByKind[numerator.KindLetter])
	assert.Equal(t, int64(5), item.Documents)
	assert.Equal(t, int64(1), item.Burned)
	assert.Equal(t, CounterSummary{Counters: 1, Allocated: 6, Documents: 5, Burned: 1}, report.Summary)
}

func TestAllCounterStats_EmptyCounterHasMap(t *testing.T) {
	repo := &fakeRepo{items: []CounterStats{{CounterID: 3, Year: "2026", Scope: numerator.ScopeFaculty, Value: 1}}}
	svc := NewService(repo, &readOnlyTx{})

	report, err := svc.AllCounterStats(context.Background(), CounterFilter{})
	require.NoError(t, err)

	b, err := json.Marshal(report.Items[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"documentCountByKind":{}`)
	assert.Contains(t, string(b), `"scope":"faculty"`)
}

func TestCounterStats_JSONKindKeys(t *testing.T) {
	b, err := json.Marshal(burnedCounter())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"documentCountByKind":{"letter":5}`)
}
