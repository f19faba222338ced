package documents

import (
	"context"

	"penomoran/internal/core/id"
)

// Repository persists documents.
type Repository interface {
	// Create inserts a new document. A number already used by another row
	// fails with apperror.CodeDuplicateNumber.
	Create(ctx context.Context, doc *Document) error

	// GetByID retrieves a document; apperror.CodeNotFound if absent.
	GetByID(ctx context.Context, docID id.ID) (*Document, error)

	// GetByNumber retrieves the document carrying number.
	GetByNumber(ctx context.Context, number string) (*Document, error)

	// AttachNumber writes Number, CounterID, CounterValue and SignedAt onto an
	// unnumbered row at doc.Version and bumps the version. A row that changed
	// or got numbered meanwhile fails with apperror.CodeConcurrentModification.
	AttachNumber(ctx context.Context, doc *Document) error
}
