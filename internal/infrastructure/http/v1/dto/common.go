// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/numerator"
)

// ErrorResponse is the body written by middleware.ErrorHandler.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Department resolves an optional department code. Omitted, null and ""
// all mean "no department".
func Department(code *string) string {
	if code == nil {
		return ""
	}
	return strings.TrimSpace(*code)
}

func parseScope(s string) (numerator.Scope, error) {
	scope, err := numerator.ParseScope(s)
	if err != nil {
		return 0, apperror.NewValidation("scope must be faculty or department").
			WithDetail("field", "scope").
			WithDetail("value", s)
	}
	return scope, nil
}

func parseKind(s string, fallback numerator.Kind) (numerator.Kind, error) {
	if strings.TrimSpace(s) == "" && fallback != 0 {
		return fallback, nil
	}
	kind, err := numerator.ParseKind(s)
	if err != nil {
		return 0, apperror.NewValidation("unknown document kind").
			WithDetail("field", "kind").
			WithDetail("value", s)
	}
	return kind, nil
}
