package numerator

import (
	"fmt"
	"strings"
	"time"

	"penomoran/internal/core/apperror"
)

// Key identifies one independent allocation sequence.
type Key struct {
	Year           string
	Scope          Scope
	DepartmentCode string
}

// NewKey builds a normalized key.
func NewKey(year string, scope Scope, departmentCode string) (Key, error) {
	return Key{Year: year, Scope: scope, DepartmentCode: departmentCode}.Normalize()
}

// Normalize trims the fields and enforces the scope rules: faculty keys always
// carry an empty department code, department keys must carry one.
func (k Key) Normalize() (Key, error) {
	k.Year = strings.TrimSpace(k.Year)
	k.DepartmentCode = strings.TrimSpace(k.DepartmentCode)

	if k.Year == "" {
		return Key{}, apperror.NewValidation("year is required").WithDetail("field", "year")
	}
	if !isYear(k.Year) {
		return Key{}, apperror.NewValidation("year must be four digits").
			WithDetail("field", "year").
			WithDetail("year", k.Year)
	}
	if strings.Contains(k.DepartmentCode, "/") {
		return Key{}, apperror.NewValidation("department code must not contain '/'").
			WithDetail("field", "departmentCode")
	}

	switch k.Scope {
	case ScopeFaculty:
		k.DepartmentCode = ""
	case ScopeDepartment:
		if k.DepartmentCode == "" {
			return Key{}, apperror.NewMissingDepartmentCode()
		}
	default:
		return Key{}, apperror.NewValidation("unknown scope").WithDetail("scope", int(k.Scope))
	}
	return k, nil
}

// String renders the key for logs, e.g. "2025/department/IF".
func (k Key) String() string {
	if k.DepartmentCode == "" {
		return k.Year + "/" + k.Scope.String()
	}
	return k.Year + "/" + k.Scope.String() + "/" + k.DepartmentCode
}

// YearOf returns the Gregorian year of t as used in counter keys, zero-padded
// to four digits.
func YearOf(t time.Time) string {
	return fmt.Sprintf("%04d", t.Year())
}
