package numerator

import (
	"fmt"
	"strings"
	"time"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/calendar"
)

// FacultyTag is the literal organisation token on every number. Department
// numbers prefix it with "{code}-".
const FacultyTag = "FT-UIN"

// hijriSuffix marks the Hijri year token on letter numbers.
const hijriSuffix = "H"

const padWidth = 3

// FormatInput carries everything Format needs. Month, HijriYear and JenisCode
// are only used by letters.
type FormatInput struct {
	Counter        int64
	Kind           Kind
	Scope          Scope
	DepartmentCode string
	JenisCode      string
	Month          string
	HijriYear      string
	GregorianYear  string
}

// ComposeInput derives the calendar tokens from a single instant, so that the
// key year, month and Hijri year of one issuance can never disagree.
func ComposeInput(alloc Allocation, kind Kind, jenisCode string, at time.Time, hijri calendar.HijriStrategy) FormatInput {
	return FormatInput{
		Counter:        alloc.Value,
		Kind:           kind,
		Scope:          alloc.Key.Scope,
		DepartmentCode: alloc.Key.DepartmentCode,
		JenisCode:      jenisCode,
		Month:          calendar.RomanMonth(at),
		HijriYear:      hijri.Year(at),
		GregorianYear:  alloc.Key.Year,
	}
}

// Format renders the canonical document number. It performs no I/O and returns
// the same string for the same input.
//
//	letter       {c}/{jenis}/[{dept}-]FT-UIN/{month}/{hijri}H/{year}
//	cert/SK/BA   {PREFIX}/{c}/[{dept}-]FT-UIN/{year}
//	generic      {c}/[{dept}-]FT-UIN/{year}
func Format(in FormatInput) (string, error) {
	if in.Counter < 1 {
		return "", apperror.NewValidation("counter must be positive").WithDetail("counter", in.Counter)
	}
	if !isYear(in.GregorianYear) {
		return "", apperror.NewValidation("gregorian year must be four digits").WithDetail("year", in.GregorianYear)
	}

	org, err := orgToken(in.Scope, in.DepartmentCode)
	if err != nil {
		return "", err
	}
	counter := fmt.Sprintf("%0*d", padWidth, in.Counter)

	switch in.Kind {
	case KindLetter:
		if !ValidJenis(in.JenisCode) {
			return "", apperror.NewValidation("letters need a jenis code A, B, C or D").
				WithDetail("jenisCode", in.JenisCode)
		}
		if _, ok := calendar.ParseRomanMonth(in.Month); !ok {
			return "", apperror.NewValidation("month must be a Roman numeral I..XII").WithDetail("month", in.Month)
		}
		if !isHijriYear(in.HijriYear) {
			return "", apperror.NewValidation("hijri year must be a positive number").WithDetail("hijriYear", in.HijriYear)
		}
		return strings.Join([]string{
			counter, in.JenisCode, org, in.Month, in.HijriYear + hijriSuffix, in.GregorianYear,
		}, "/"), nil

	case KindCertificate, KindDecree, KindMinutes:
		return strings.Join([]string{in.Kind.Prefix(), counter, org, in.GregorianYear}, "/"), nil

	case KindGeneric:
		return strings.Join([]string{counter, org, in.GregorianYear}, "/"), nil

	default:
		return "", apperror.NewValidation("unknown document kind").WithDetail("kind", int(in.Kind))
	}
}

// orgToken returns "FT-UIN" or "{dept}-FT-UIN".
func orgToken(scope Scope, departmentCode string) (string, error) {
	switch scope {
	case ScopeFaculty:
		return FacultyTag, nil
	case ScopeDepartment:
		code := strings.TrimSpace(departmentCode)
		if code == "" {
			return "", apperror.NewMissingDepartmentCode()
		}
		if strings.Contains(code, "/") {
			return "", apperror.NewValidation("department code must not contain '/'").
				WithDetail("departmentCode", code)
		}
		return code + "-" + FacultyTag, nil
	default:
		return "", apperror.NewValidation("unknown scope").WithDetail("scope", int(scope))
	}
}

// isYear matches the four-digit Gregorian year used in keys and numbers.
func isYear(s string) bool {
	return len(s) == 4 && isDigits(s)
}

// isHijriYear rejects "0" and zero-padded years, which no date can produce.
func isHijriYear(s string) bool {
	return isDigits(s) && s[0] != '0'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
