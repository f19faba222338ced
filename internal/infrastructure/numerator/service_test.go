package numerator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penomoran/internal/core/apperror"
	corenumerator "penomoran/internal/core/numerator"
)

// Mock objects

type mockRow struct {
	vals []int64
	err  error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	for i, d := range dest {
		ptr, ok := d.(*int64)
		if !ok || i >= len(m.vals) {
			return fmt.Errorf("unexpected scan target %d", i)
		}
		*ptr = m.vals[i]
	}
	return nil
}

type counterRow struct {
	id    int64
	value int64
}

// mockQuerier linearizes statements the way the row lock on
// document_counters does.
type mockQuerier struct {
	mu     sync.Mutex
	rows   map[string]*counterRow
	nextID int64
	err    error
	writes int
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{rows: make(map[string]*counterRow)}
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &mockRow{err: m.err}
	}

	k := fmt.Sprint(args[0], "|", args[1], "|", args[2])
	row := m.rows[k]

	switch {
	case strings.Contains(sql, "SELECT counter"):
		if row == nil {
			return &mockRow{err: pgx.ErrNoRows}
		}
		return &mockRow{vals: []int64{row.value}}

	case strings.Contains(sql, "GREATEST"):
		m.writes++
		v := args[3].(int64)
		if row == nil {
			m.nextID++
			row = &counterRow{id: m.nextID, value: v}
			m.rows[k] = row
		} else if v > row.value {
			row.value = v
		}
		return &mockRow{vals: []int64{row.id, row.value}}

	default:
		m.writes++
		if row == nil {
			m.nextID++
			row = &counterRow{id: m.nextID}
			m.rows[k] = row
		}
		row.value++
		return &mockRow{vals: []int64{row.id, row.value}}
	}
}

// batchingQuerier adds SendBatch; queued statements run through the same
// linearized mock in queue order.
type batchingQuerier struct {
	*mockQuerier
	batches int
}

func (b *batchingQuerier) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	b.batches++
	res := &mockBatchResults{}
	for _, q := range batch.QueuedQueries {
		res.rows = append(res.rows, b.QueryRow(ctx, q.SQL, q.Arguments...))
	}
	return res
}

type mockBatchResults struct {
	rows []pgx.Row
	next int
}

func (r *mockBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not supported")
}

func (r *mockBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }

func (r *mockBatchResults) QueryRow() pgx.Row {
	if r.next >= len(r.rows) {
		return &mockRow{err: errors.New("no more results")}
	}
	row := r.rows[r.next]
	r.next++
	return row
}

func (r *mockBatchResults) Close() error { return nil }

func mustKey(t *testing.T, scope corenumerator.Scope, dept string) corenumerator.Key {
	t.Helper()
	k, err := corenumerator.NewKey("2025", scope, dept)
	require.NoError(t, err)
	return k
}

func TestAllocate_Sequential(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	key := mustKey(t, corenumerator.ScopeDepartment, "IF")

	for want := int64(1); want <= 20; want++ {
		alloc, err := svc.Allocate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, alloc.Value)
		assert.Equal(t, key, alloc.Key)
	}
}

func TestAllocate_KeysAreIndependent(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	faculty := mustKey(t, corenumerator.ScopeFaculty, "")
	informatics := mustKey(t, corenumerator.ScopeDepartment, "IF")
	next, err := corenumerator.NewKey("2026", corenumerator.ScopeDepartment, "IF")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Allocate(ctx, informatics)
		require.NoError(t, err)
	}

	a, err := svc.Allocate(ctx, faculty)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Value)

	b, err := svc.Allocate(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Value)
	assert.NotEqual(t, a.CounterID, b.CounterID)
}

func TestAllocate_Concurrent(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	key := mustKey(t, corenumerator.ScopeFaculty, "")

	const workers = 50
	values := make([]int64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			alloc, err := svc.Allocate(ctx, key)
			if err == nil {
				values[i] = alloc.Value
			}
		}(i)
	}
	wg.Wait()

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		assert.Equal(t, int64(i+1), v)
	}
}

func TestAllocate_FacultyIgnoresDepartment(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	_, err := svc.Allocate(ctx, corenumerator.Key{Year: "2025", Scope: corenumerator.ScopeFaculty, DepartmentCode: "IF"})
	require.NoError(t, err)
	alloc, err := svc.Allocate(ctx, corenumerator.Key{Year: "2025", Scope: corenumerator.ScopeFaculty})
	require.NoError(t, err)

	assert.Equal(t, int64(2), alloc.Value)
}

func TestAllocate_StorageError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection reset")
	svc := New(q)

	_, err := svc.Allocate(context.Background(), mustKey(t, corenumerator.ScopeFaculty, ""))
	require.Error(t, err)
	assert.True(t, apperror.IsAllocationFailed(err))
}

func TestAllocate_MissingDepartment(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)

	_, err := svc.Allocate(context.Background(), corenumerator.Key{Year: "2025", Scope: corenumerator.ScopeDepartment})
	assert.True(t, apperror.IsMissingDepartmentCode(err))
	assert.Zero(t, q.writes)
}

func TestPreview_DoesNotMutate(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	key := mustKey(t, corenumerator.ScopeDepartment, "SI")

	p, err := svc.Preview(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p)

	for i := 0; i < 4; i++ {
		_, err := svc.Allocate(ctx, key)
		require.NoError(t, err)
	}
	writes := q.writes

	for i := 0; i < 3; i++ {
		cur, err := svc.CurrentValue(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(4), cur)

		p, err = svc.Preview(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(5), p)
	}
	assert.Equal(t, writes, q.writes)

	alloc, err := svc.Allocate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, p, alloc.Value)
}

func TestSeed_NeverLowers(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	key := mustKey(t, corenumerator.ScopeDepartment, "IF")

	alloc, err := svc.Seed(ctx, key, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(120), alloc.Value)

	alloc, err = svc.Seed(ctx, key, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(120), alloc.Value)

	next, err := svc.Allocate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(121), next.Value)

	_, err = svc.Seed(ctx, key, 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestSeedAll(t *testing.T) {
	ctx := context.Background()
	informatics := mustKey(t, corenumerator.ScopeDepartment, "IF")
	faculty := mustKey(t, corenumerator.ScopeFaculty, "")

	entries := []SeedEntry{
		{Key: informatics, Value: 120},
		{Key: faculty, Value: 40},
		{Key: informatics, Value: 90},
	}

	t.Run("batched", func(t *testing.T) {
		q := &batchingQuerier{mockQuerier: newMockQuerier()}
		allocs, err := New(q).SeedAll(ctx, entries)
		require.NoError(t, err)
		require.Len(t, allocs, 3)
		assert.Equal(t, 1, q.batches)
		assert.Equal(t, int64(120), allocs[0].Value)
		assert.Equal(t, int64(40), allocs[1].Value)
		assert.Equal(t, int64(120), allocs[2].Value)
		assert.Equal(t, allocs[0].CounterID, allocs[2].CounterID)
	})

	t.Run("one by one", func(t *testing.T) {
		q := newMockQuerier()
		allocs, err := New(q).SeedAll(ctx, entries)
		require.NoError(t, err)
		require.Len(t, allocs, 3)
		assert.Equal(t, int64(120), allocs[2].Value)
		assert.Equal(t, 3, q.writes)
	})

	t.Run("invalid entry sends nothing", func(t *testing.T) {
		q := &batchingQuerier{mockQuerier: newMockQuerier()}
		_, err := New(q).SeedAll(ctx, []SeedEntry{
			{Key: informatics, Value: 10},
			{Key: corenumerator.Key{Year: "2025", Scope: corenumerator.ScopeDepartment}, Value: 10},
		})
		assert.True(t, apperror.IsMissingDepartmentCode(err))
		assert.Zero(t, q.batches)
		assert.Zero(t, q.writes)
	})
}
