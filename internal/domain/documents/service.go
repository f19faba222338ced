package documents

import (
	"context"
	"time"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/audit"
	"penomoran/internal/core/calendar"
	"penomoran/internal/core/id"
	"penomoran/internal/core/numerator"
	"penomoran/internal/core/tx"
	"penomoran/internal/domain"
	"penomoran/pkg/logger"
)

// Service issues document numbers and persists them onto documents.
//
// Allocation always happens before, and outside of, the transaction that
// writes the document. If that write fails the allocated value is burned: it is
// logged and audited, never retried and never handed out again.
type Service struct {
	repo      Repository
	allocator numerator.Allocator
	txManager tx.Manager
	audit     audit.Recorder
	hijri     calendar.HijriStrategy
	now       func() time.Time
	hooks     *domain.HookRegistry[*Document]
}

// Option configures a Service.
type Option func(*Service)

// WithHijriStrategy selects how the Hijri year on letters is computed.
func WithHijriStrategy(h calendar.HijriStrategy) Option {
	return func(s *Service) { s.hijri = h }
}

// WithAudit sets the audit recorder.
func WithAudit(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new document numbering service.
func NewService(repo Repository, allocator numerator.Allocator, txManager tx.Manager, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		allocator: allocator,
		txManager: txManager,
		audit:     audit.Nop{},
		hijri:     calendar.PreciseHijri{},
		now:       time.Now,
		hooks:     domain.NewHookRegistry[*Document](),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hooks.On(domain.BeforeIssue, domain.EnrichCreatedBy[*Document])
	s.hooks.On(domain.BeforeAttach, domain.EnrichUpdatedBy[*Document])
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Document] {
	return s.hooks
}

// IssueLetterNumber allocates a number, formats it and creates a new document
// carrying it.
func (s *Service) IssueLetterNumber(ctx context.Context, req IssueRequest) (*Issued, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	key, err := numerator.NewKey(numerator.YearOf(now), req.Scope, req.Department.Code)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		ID:             id.New(),
		Kind:           req.Kind,
		Scope:          key.Scope,
		DepartmentCode: key.DepartmentCode,
		DepartmentName: req.Department.Name,
		JenisCode:      jenisFor(req.Kind, req.JenisCode),
		Subject:        req.Subject,
		Notes:          req.Notes,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	ctx = logger.WithFields(ctx, "counter_key", key.String(), "document_id", doc.ID.String())
	if err := s.hooks.Run(ctx, domain.BeforeIssue, doc); err != nil {
		return nil, err
	}

	number, alloc, err := s.allocateNumber(ctx, key, req.Kind, doc.JenisCode, now)
	if err != nil {
		return nil, err
	}
	doc.applyNumber(alloc, number)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		s.burn(ctx, alloc, number, err)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(audit.ActionIssued, alloc, number, &doc.ID))
	if err := s.hooks.Run(ctx, domain.AfterIssue, doc); err != nil {
		logger.Warn(ctx, "after-issue hook failed", "error", err)
	}

	logger.Info(ctx, "document number issued",
		"number", number,
		"kind", req.Kind.String())

	return &Issued{Document: doc, Number: number}, nil
}

// AttachNumberToExistingDocument numbers a document that was created without
// one, typically when it gets signed. A document that already has a number is
// rejected before anything is allocated.
func (s *Service) AttachNumberToExistingDocument(ctx context.Context, docID id.ID, req AttachRequest) (*Issued, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, normalizeGetErr(err, docID.String())
	}
	if doc.HasNumber() {
		return nil, apperror.NewConflict("document already has a number").
			WithDetail("id", docID.String()).
			WithDetail("number", *doc.Number)
	}

	now := s.now()
	key, err := numerator.NewKey(numerator.YearOf(now), req.Scope, req.Department.Code)
	if err != nil {
		return nil, err
	}

	doc.Kind = req.Kind
	doc.Scope = key.Scope
	doc.DepartmentCode = key.DepartmentCode
	if req.Department.Name != "" {
		doc.DepartmentName = req.Department.Name
	}
	doc.JenisCode = jenisFor(req.Kind, req.JenisCode)
	ctx = logger.WithFields(ctx, "counter_key", key.String(), "document_id", doc.ID.String())
	if err := s.hooks.Run(ctx, domain.BeforeAttach, doc); err != nil {
		return nil, err
	}

	number, alloc, err := s.allocateNumber(ctx, key, req.Kind, doc.JenisCode, now)
	if err != nil {
		return nil, err
	}
	doc.applyNumber(alloc, number)
	doc.SignedAt = &now
	doc.UpdatedAt = now

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.AttachNumber(ctx, doc)
	})
	if err != nil {
		s.burn(ctx, alloc, number, err)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(audit.ActionAttached, alloc, number, &doc.ID))
	if err := s.hooks.Run(ctx, domain.AfterAttach, doc); err != nil {
		logger.Warn(ctx, "after-attach hook failed", "error", err)
	}

	logger.Info(ctx, "document number attached", "number", number)

	return &Issued{Document: doc, Number: number}, nil
}

// GetByID retrieves a document.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, normalizeGetErr(err, docID.String())
	}
	return doc, nil
}

// GetByNumber retrieves the document carrying number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Document, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, normalizeGetErr(err, number)
	}
	return doc, nil
}

// allocateNumber reads one value from the counter store and formats it with
// calendar tokens taken from now.
func (s *Service) allocateNumber(
	ctx context.Context,
	key numerator.Key,
	kind numerator.Kind,
	jenis string,
	now time.Time,
) (string, numerator.Allocation, error) {
	alloc, err := s.allocator.Allocate(ctx, key)
	if err != nil {
		return "", numerator.Allocation{}, err
	}

	number, err := numerator.Format(numerator.ComposeInput(alloc, kind, jenis, now, s.hijri))
	if err != nil {
		s.burn(ctx, alloc, "", err)
		return "", numerator.Allocation{}, err
	}
	return number, alloc, nil
}

// burn records an allocated value that will never reach a document.
func (s *Service) burn(ctx context.Context, alloc numerator.Allocation, number string, cause error) {
	if apperror.IsDuplicateNumber(cause) {
		logger.Error(ctx, "formatted number collides with an existing document",
			"number", number, "counter_id", alloc.CounterID, "counter", alloc.Value)
	}

	logger.Warn(ctx, "document number burned",
		"year", alloc.Key.Year,
		"scope", alloc.Key.Scope.String(),
		"department_code", alloc.Key.DepartmentCode,
		"counter", alloc.Value,
		"number", number,
		"error", cause)

	e := auditEvent(audit.ActionBurned, alloc, number, nil)
	e.Payload = map[string]any{"error": cause.Error()}
	s.audit.Record(ctx, e)
}

func auditEvent(action audit.Action, alloc numerator.Allocation, number string, docID *id.ID) audit.Event {
	return audit.Event{
		Action:         action,
		Year:           alloc.Key.Year,
		Scope:          alloc.Key.Scope.String(),
		DepartmentCode: alloc.Key.DepartmentCode,
		CounterID:      alloc.CounterID,
		Counter:        alloc.Value,
		Number:         number,
		DocumentID:     docID,
	}
}

// jenisFor drops the jenis code for kinds that do not use it.
func jenisFor(kind numerator.Kind, jenis string) string {
	if kind != numerator.KindLetter {
		return ""
	}
	return jenis
}

func normalizeGetErr(err error, ref string) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("document", ref)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", "document").WithDetail("id", ref)
}
