// Package documents links allocated counter values to document records:
// letters issued with a fresh number and existing documents numbered on signing.
package documents

import (
	"strings"
	"time"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/id"
	"penomoran/internal/core/numerator"
)

// Document is a letter or signed document that may carry an official number.
type Document struct {
	ID             id.ID           `json:"id"`
	Kind           numerator.Kind  `json:"kind"`
	Scope          numerator.Scope `json:"scope"`
	DepartmentCode string          `json:"departmentCode,omitempty"`
	DepartmentName string          `json:"departmentName,omitempty"`
	JenisCode      string          `json:"jenisCode,omitempty"`

	// Number, CounterID and CounterValue are set together or not at all.
	Number       *string `json:"number,omitempty"`
	CounterID    *int64  `json:"counterId,omitempty"`
	CounterValue *int64  `json:"counterValue,omitempty"`

	Subject  string     `json:"subject"`
	Notes    string     `json:"notes,omitempty"`
	SignedAt *time.Time `json:"signedAt,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// SetCreatedBy implements domain.Auditable.
func (d *Document) SetCreatedBy(userID string) { d.CreatedBy = userID }

// SetUpdatedBy implements domain.Auditable.
func (d *Document) SetUpdatedBy(userID string) { d.UpdatedBy = userID }

// HasNumber reports whether an official number is already attached.
func (d *Document) HasNumber() bool {
	return d.Number != nil && *d.Number != ""
}

// applyNumber stamps an allocation and its formatted number onto the document.
func (d *Document) applyNumber(alloc numerator.Allocation, number string) {
	counterID, value := alloc.CounterID, alloc.Value
	d.Number = &number
	d.CounterID = &counterID
	d.CounterValue = &value
}

// Department identifies the issuing department. Code is required only for
// department scope.
type Department struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// IssueRequest describes a new document that needs a number.
type IssueRequest struct {
	Scope      numerator.Scope
	Department Department
	Kind       numerator.Kind
	JenisCode  string
	Subject    string
	Notes      string
}

// Validate checks the request before any value is allocated.
func (r *IssueRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return apperror.NewValidation("subject is required").WithDetail("field", "subject")
	}
	return validateNumbering(r.Kind, r.JenisCode)
}

// AttachRequest describes how an existing document should be numbered.
type AttachRequest struct {
	Scope      numerator.Scope
	Department Department
	Kind       numerator.Kind
	JenisCode  string
}

// Validate checks the request before any value is allocated.
func (r *AttachRequest) Validate() error {
	return validateNumbering(r.Kind, r.JenisCode)
}

func validateNumbering(kind numerator.Kind, jenis string) error {
	if !kind.Valid() {
		return apperror.NewValidation("unknown document kind").WithDetail("field", "kind")
	}
	if kind == numerator.KindLetter && !numerator.ValidJenis(jenis) {
		return apperror.NewValidation("letters need a jenis code A, B, C or D").
			WithDetail("field", "jenisCode")
	}
	return nil
}

// Issued is the result of a numbering operation.
type Issued struct {
	Document *Document `json:"document"`
	Number   string    `json:"number"`
}
