// Package document_repo provides the PostgreSQL implementation of the
// documents repository.
package document_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/id"
	"penomoran/internal/core/numerator"
	"penomoran/internal/domain/documents"
	"penomoran/internal/infrastructure/storage/postgres"
)

const (
	tableName = "documents"

	// numberConstraint is the unique constraint on documents.number.
	numberConstraint = "documents_number_key"

	pgUniqueViolation = "23505"
)

// documentRow is the storage shape of documents.Document.
type documentRow struct {
	ID             id.ID      `db:"id"`
	Kind           string     `db:"kind"`
	Scope          string     `db:"scope"`
	DepartmentCode string     `db:"department_code"`
	DepartmentName string     `db:"department_name"`
	JenisCode      string     `db:"jenis_code"`
	Number         *string    `db:"number"`
	CounterID      *int64     `db:"counter_id"`
	CounterValue   *int64     `db:"counter_value"`
	Subject        string     `db:"subject"`
	Notes          string     `db:"notes"`
	SignedAt       *time.Time `db:"signed_at"`
	Version        int        `db:"version"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	CreatedBy      string     `db:"created_by"`
	UpdatedBy      string     `db:"updated_by"`
}

var selectCols = postgres.ExtractDBColumns[documentRow]()

func toRow(d *documents.Document) documentRow {
	return documentRow{
		ID:             d.ID,
		Kind:           d.Kind.String(),
		Scope:          d.Scope.String(),
		DepartmentCode: d.DepartmentCode,
		DepartmentName: d.DepartmentName,
		JenisCode:      d.JenisCode,
		Number:         d.Number,
		CounterID:      d.CounterID,
		CounterValue:   d.CounterValue,
		Subject:        d.Subject,
		Notes:          d.Notes,
		SignedAt:       d.SignedAt,
		Version:        d.Version,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		CreatedBy:      d.CreatedBy,
		UpdatedBy:      d.UpdatedBy,
	}
}

func (r documentRow) toDomain() (*documents.Document, error) {
	kind, err := numerator.ParseKind(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", r.ID, err)
	}
	scope, err := numerator.ParseScope(r.Scope)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", r.ID, err)
	}
	return &documents.Document{
		ID:             r.ID,
		Kind:           kind,
		Scope:          scope,
		DepartmentCode: r.DepartmentCode,
		DepartmentName: r.DepartmentName,
		JenisCode:      r.JenisCode,
		Number:         r.Number,
		CounterID:      r.CounterID,
		CounterValue:   r.CounterValue,
		Subject:        r.Subject,
		Notes:          r.Notes,
		SignedAt:       r.SignedAt,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		CreatedBy:      r.CreatedBy,
		UpdatedBy:      r.UpdatedBy,
	}, nil
}

// DocumentRepo implements documents.Repository.
type DocumentRepo struct {
	txManager *postgres.TxManager
}

var _ documents.Repository = (*DocumentRepo)(nil)

// NewDocumentRepo creates a new documents repository.
func NewDocumentRepo(txManager *postgres.TxManager) *DocumentRepo {
	return &DocumentRepo{txManager: txManager}
}

// Builder returns a new squirrel builder.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new document.
func (r *DocumentRepo) Create(ctx context.Context, doc *documents.Document) error {
	sql, args, err := buildInsert(doc)
	if err != nil {
		return err
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteErr(err, doc)
	}
	return nil
}

func buildInsert(doc *documents.Document) (string, []any, error) {
	data := postgres.StructToMap(toRow(doc))
	if len(data) == 0 {
		return "", nil, fmt.Errorf("no db tags found in document")
	}

	sql, args, err := Builder().Insert(tableName).SetMap(data).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return sql, args, nil
}

// GetByID retrieves a document by ID.
func (r *DocumentRepo) GetByID(ctx context.Context, docID id.ID) (*documents.Document, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID.String())
}

// GetByNumber retrieves a document by its official number.
func (r *DocumentRepo) GetByNumber(ctx context.Context, number string) (*documents.Document, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *DocumentRepo) getOne(ctx context.Context, where squirrel.Sqlizer, ref string) (*documents.Document, error) {
	sql, args, err := Builder().Select(selectCols...).From(tableName).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row documentRow
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(tableName, ref)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return row.toDomain()
}

// AttachNumber numbers an unnumbered document with optimistic locking.
func (r *DocumentRepo) AttachNumber(ctx context.Context, doc *documents.Document) error {
	sql, args, err := buildAttach(doc)
	if err != nil {
		return err
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteErr(err, doc)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(tableName, doc.ID.String())
	}

	doc.Version++
	return nil
}

func buildAttach(doc *documents.Document) (string, []any, error) {
	if !doc.HasNumber() || doc.CounterID == nil || doc.CounterValue == nil {
		return "", nil, fmt.Errorf("attach number: document %s carries no allocation", doc.ID)
	}

	q := Builder().
		Update(tableName).
		Set("number", *doc.Number).
		Set("counter_id", *doc.CounterID).
		Set("counter_value", *doc.CounterValue).
		Set("signed_at", doc.SignedAt).
		Set("kind", doc.Kind.String()).
		Set("scope", doc.Scope.String()).
		Set("department_code", doc.DepartmentCode).
		Set("department_name", doc.DepartmentName).
		Set("jenis_code", doc.JenisCode).
		Set("updated_by", doc.UpdatedBy).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": doc.ID}).
		Where(squirrel.Eq{"version": doc.Version}).
		Where(squirrel.Eq{"number": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build attach: %w", err)
	}
	return sql, args, nil
}

// mapWriteErr turns a unique violation on the number column into a
// DuplicateNumber error.
func mapWriteErr(err error, doc *documents.Document) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == numberConstraint {
		number := ""
		if doc.Number != nil {
			number = *doc.Number
		}
		return apperror.NewDuplicateNumber(number, err)
	}
	return fmt.Errorf("write %s: %w", tableName, err)
}
