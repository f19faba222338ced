package dto

import (
	"penomoran/internal/core/numerator"
	"penomoran/internal/domain/documents"
)

// IssueLetterRequest is the body of POST /letters. Kind defaults to letter.
type IssueLetterRequest struct {
	Scope          string  `json:"scope" binding:"required"`
	DepartmentCode *string `json:"departmentCode"`
	DepartmentName string  `json:"departmentName"`
	Kind           string  `json:"kind"`
	JenisCode      string  `json:"jenisCode"`
	Subject        string  `json:"subject" binding:"required"`
	Notes          string  `json:"notes"`
}

// ToDomain converts the request.
func (r IssueLetterRequest) ToDomain() (documents.IssueRequest, error) {
	scope, err := parseScope(r.Scope)
	if err != nil {
		return documents.IssueRequest{}, err
	}
	kind, err := parseKind(r.Kind, numerator.KindLetter)
	if err != nil {
		return documents.IssueRequest{}, err
	}
	return documents.IssueRequest{
		Scope:      scope,
		Department: documents.Department{Code: Department(r.DepartmentCode), Name: r.DepartmentName},
		Kind:       kind,
		JenisCode:  r.JenisCode,
		Subject:    r.Subject,
		Notes:      r.Notes,
	}, nil
}

// AttachNumberRequest is the body of POST /documents/:id/number.
type AttachNumberRequest struct {
	Scope          string  `json:"scope" binding:"required"`
	DepartmentCode *string `json:"departmentCode"`
	DepartmentName string  `json:"departmentName"`
	Kind           string  `json:"kind" binding:"required"`
	JenisCode      string  `json:"jenisCode"`
}

// ToDomain converts the request.
func (r AttachNumberRequest) ToDomain() (documents.AttachRequest, error) {
	scope, err := parseScope(r.Scope)
	if err != nil {
		return documents.AttachRequest{}, err
	}
	kind, err := parseKind(r.Kind, 0)
	if err != nil {
		return documents.AttachRequest{}, err
	}
	return documents.AttachRequest{
		Scope:      scope,
		Department: documents.Department{Code: Department(r.DepartmentCode), Name: r.DepartmentName},
		Kind:       kind,
		JenisCode:  r.JenisCode,
	}, nil
}
