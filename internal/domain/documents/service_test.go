package documents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/audit"
	"penomoran/internal/core/calendar"
	appctx "penomoran/internal/core/context"
	"penomoran/internal/core/id"
	"penomoran/internal/core/numerator"
	"penomoran/internal/domain/reports"
)

// --- fakes ---

type memRepo struct {
	mu        sync.Mutex
	docs      map[id.ID]*Document
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[id.ID]*Document)}
}

func (r *memRepo) Create(_ context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if err := r.checkNumber(doc); err != nil {
		return err
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, docID id.ID) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("documents", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *memRepo) GetByNumber(_ context.Context, number string) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.Number != nil && *doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("documents", number)
}

func (r *memRepo) AttachNumber(_ context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok || stored.Version != doc.Version || stored.HasNumber() {
		return apperror.NewConcurrentModification("documents", doc.ID.String())
	}
	if err := r.checkNumber(doc); err != nil {
		return err
	}
	doc.Version++
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memRepo) checkNumber(doc *Document) error {
	if !doc.HasNumber() {
		return nil
	}
	for _, other := range r.docs {
		if other.ID != doc.ID && other.HasNumber() && *other.Number == *doc.Number {
			return apperror.NewDuplicateNumber(*doc.Number, nil)
		}
	}
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// counterAllocator behaves like the upsert: one value per call, per key.
type counterAllocator struct {
	mu     sync.Mutex
	values map[numerator.Key]int64
	err    error
}

func newCounterAllocator() *counterAllocator {
	return &counterAllocator{values: make(map[numerator.Key]int64)}
}

func (a *counterAllocator) Allocate(_ context.Context, key numerator.Key) (numerator.Allocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return numerator.Allocation{}, a.err
	}
	a.values[key]++
	return numerator.Allocation{CounterID: 7, Value: a.values[key], Key: key}, nil
}

func (a *counterAllocator) CurrentValue(_ context.Context, key numerator.Key) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[key], nil
}

func (a *counterAllocator) Preview(ctx context.Context, key numerator.Key) (int64, error) {
	v, err := a.CurrentValue(ctx, key)
	return v + 1, err
}

type directTx struct{}

func (directTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (directTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// statsView derives counter stats from the fakes the way report_repo joins
// document_counters with documents.
type statsView struct {
	repo  *memRepo
	alloc *counterAllocator
}

func (v statsView) GetCounterStats(_ context.Context, counterID int64) (reports.CounterStats, error) {
	return reports.CounterStats{}, apperror.NewNotFound("document_counters", counterID)
}

func (v statsView) ListCounterStats(_ context.Context, filter reports.CounterFilter) ([]reports.CounterStats, error) {
	v.alloc.mu.Lock()
	defer v.alloc.mu.Unlock()
	v.repo.mu.Lock()
	defer v.repo.mu.Unlock()

	var out []reports.CounterStats
	for key, value := range v.alloc.values {
		if filter.Year != "" && key.Year != filter.Year {
			continue
		}
		s := reports.CounterStats{
			CounterID:      7,
			Year:           key.Year,
			Scope:          key.Scope,
			DepartmentCode: key.DepartmentCode,
			Value:          value,
		}
		for _, doc := range v.repo.docs {
			if doc.HasNumber() && doc.Scope == key.Scope && doc.DepartmentCode == key.DepartmentCode &&
				numerator.YearOf(doc.CreatedAt) == key.Year {
				s.AddDocuments(doc.Kind, 1)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAudit) actions() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Action, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

var november2025 = time.Date(2025, time.November, 15, 10, 30, 0, 0, time.UTC)

func newTestService(repo *memRepo, alloc *counterAllocator, rec *recordingAudit) *Service {
	return NewService(repo, alloc, directTx{},
		WithClock(func() time.Time { return november2025 }),
		WithHijriStrategy(calendar.PreciseHijri{}),
		WithAudit(rec),
	)
}

func letterRequest() IssueRequest {
	return IssueRequest{
		Scope:      numerator.ScopeDepartment,
		Department: Department{Code: "IF", Name: "Informatika"},
		Kind:       numerator.KindLetter,
		JenisCode:  numerator.JenisA,
		Subject:    "Undangan rapat",
	}
}

// --- tests ---

func TestIssueLetterNumber_FirstLetterOfDepartment(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newCounterAllocator(), &recordingAudit{})

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "staff-1"})
	issued, err := svc.IssueLetterNumber(ctx, letterRequest())
	require.NoError(t, err)

	assert.Equal(t, "001/A/IF-FT-UIN/XI/1447H/2025", issued.Number)
	require.NotNil(t, issued.Document.CounterID)
	assert.Equal(t, int64(7), *issued.Document.CounterID)
	assert.Equal(t, int64(1), *issued.Document.CounterValue)
	assert.Equal(t, "staff-1", issued.Document.CreatedBy)

	stored, err := svc.GetByNumber(ctx, issued.Number)
	require.NoError(t, err)
	assert.Equal(t, issued.Document.ID, stored.ID)
}

func TestIssueLetterNumber_BurnedValue(t *testing.T) {
	repo := newMemRepo()
	alloc := newCounterAllocator()
	rec := &recordingAudit{}
	svc := newTestService(repo, alloc, rec)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.IssueLetterNumber(ctx, letterRequest())
		require.NoError(t, err)
	}

	repo.createErr = errors.New("insert failed")
	_, err := svc.IssueLetterNumber(ctx, letterRequest())
	require.Error(t, err)
	repo.createErr = nil

	key, err := numerator.NewKey("2025", numerator.ScopeDepartment, "IF")
	require.NoError(t, err)
	current, err := alloc.CurrentValue(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, int64(6), current)
	assert.Equal(t, 5, repo.count())
	assert.Contains(t, rec.actions(), audit.ActionBurned)

	report, err := reports.NewService(statsView{repo: repo, alloc: alloc}, directTx{}).
		AllCounterStats(ctx, reports.CounterFilter{Year: "2025"})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	stats := report.Items[0]
	assert.Equal(t, int64(6), stats.Value)
	assert.Equal(t, int64(5), stats.DocumentCountByKind[numerator.KindLetter])
	assert.Equal(t, int64(1), stats.Burned)

	// The burned value is never reused.
	issued, err := svc.IssueLetterNumber(ctx, letterRequest())
	require.NoError(t, err)
	assert.Equal(t, "007/A/IF-FT-UIN/XI/1447H/2025", issued.Number)
}

func TestIssueLetterNumber_ValidationBeforeAllocation(t *testing.T) {
	alloc := newCounterAllocator()
	svc := newTestService(newMemRepo(), alloc, &recordingAudit{})
	ctx := context.Background()

	req := letterRequest()
	req.Department.Code = ""
	_, err := svc.IssueLetterNumber(ctx, req)
	assert.True(t, apperror.IsMissingDepartmentCode(err))

	req = letterRequest()
	req.JenisCode = "X"
	_, err = svc.IssueLetterNumber(ctx, req)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	req = letterRequest()
	req.Subject = "   "
	_, err = svc.IssueLetterNumber(ctx, req)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	assert.Empty(t, alloc.values)
}

func TestIssueLetterNumber_AllocationFailure(t *testing.T) {
	repo := newMemRepo()
	alloc := newCounterAllocator()
	alloc.err = apperror.NewAllocationFailed(errors.New("db down"))
	svc := newTestService(repo, alloc, &recordingAudit{})

	_, err := svc.IssueLetterNumber(context.Background(), letterRequest())
	assert.True(t, apperror.IsAllocationFailed(err))
	assert.Zero(t, repo.count())
}

func TestIssueLetterNumber_OtherKinds(t *testing.T) {
	svc := newTestService(newMemRepo(), newCounterAllocator(), &recordingAudit{})
	ctx := context.Background()

	issued, err := svc.IssueLetterNumber(ctx, IssueRequest{
		Scope:     numerator.ScopeFaculty,
		Kind:      numerator.KindDecree,
		JenisCode: numerator.JenisA,
		Subject:   "SK panitia wisuda",
	})
	require.NoError(t, err)
	assert.Equal(t, "SK/001/FT-UIN/2025", issued.Number)
	assert.Empty(t, issued.Document.JenisCode)
}

func TestIssueLetterNumber_Concurrent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newCounterAllocator(), &recordingAudit{})
	ctx := context.Background()

	const n = 30
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			issued, err := svc.IssueLetterNumber(ctx, letterRequest())
			if err == nil {
				numbers <- issued.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, repo.count())
}

func TestAttachNumberToExistingDocument(t *testing.T) {
	repo := newMemRepo()
	rec := &recordingAudit{}
	svc := newTestService(repo, newCounterAllocator(), rec)
	ctx := context.Background()

	draft := &Document{ID: id.New(), Kind: numerator.KindGeneric, Scope: numerator.ScopeFaculty, Subject: "Draft", Version: 1}
	require.NoError(t, repo.Create(ctx, draft))

	issued, err := svc.AttachNumberToExistingDocument(ctx, draft.ID, AttachRequest{
		Scope:      numerator.ScopeDepartment,
		Department: Department{Code: "SI"},
		Kind:       numerator.KindCertificate,
	})
	require.NoError(t, err)

	assert.Equal(t, "CERT/001/SI-FT-UIN/2025", issued.Number)
	require.NotNil(t, issued.Document.SignedAt)
	assert.True(t, issued.Document.SignedAt.Equal(november2025))
	assert.Equal(t, 2, issued.Document.Version)
	assert.Contains(t, rec.actions(), audit.ActionAttached)

	stored, err := svc.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.Number, *stored.Number)
}

func TestAttachNumberToExistingDocument_Rejections(t *testing.T) {
	repo := newMemRepo()
	alloc := newCounterAllocator()
	svc := newTestService(repo, alloc, &recordingAudit{})
	ctx := context.Background()
	req := AttachRequest{Scope: numerator.ScopeFaculty, Kind: numerator.KindGeneric}

	_, err := svc.AttachNumberToExistingDocument(ctx, id.New(), req)
	assert.True(t, apperror.IsNotFound(err))

	issued, err := svc.IssueLetterNumber(ctx, letterRequest())
	require.NoError(t, err)

	_, err = svc.AttachNumberToExistingDocument(ctx, issued.Document.ID, req)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	faculty, err := numerator.NewKey("2025", numerator.ScopeFaculty, "")
	require.NoError(t, err)
	current, err := alloc.CurrentValue(ctx, faculty)
	require.NoError(t, err)
	assert.Zero(t, current)
}

func TestAttachNumberToExistingDocument_DuplicateIsBurned(t *testing.T) {
	repo := newMemRepo()
	rec := &recordingAudit{}
	svc := newTestService(repo, newCounterAllocator(), rec)
	ctx := context.Background()

	taken := "001/FT-UIN/2025"
	counterID, value := int64(1), int64(1)
	require.NoError(t, repo.Create(ctx, &Document{ID: id.New(), Kind: numerator.KindGeneric,
		Scope: numerator.ScopeFaculty, Number: &taken, CounterID: &counterID, CounterValue: &value}))

	draft := &Document{ID: id.New(), Kind: numerator.KindGeneric, Scope: numerator.ScopeFaculty, Version: 1}
	require.NoError(t, repo.Create(ctx, draft))

	_, err := svc.AttachNumberToExistingDocument(ctx, draft.ID, AttachRequest{Scope: numerator.ScopeFaculty, Kind: numerator.KindGeneric})
	assert.True(t, apperror.IsDuplicateNumber(err))
	assert.Contains(t, rec.actions(), audit.ActionBurned)
}
