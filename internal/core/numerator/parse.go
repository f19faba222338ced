package numerator

import (
	"strconv"
	"strings"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/calendar"
)

// Components are the parts recovered from a formatted number.
type Components struct {
	Counter        int64  `json:"counter"`
	Kind           Kind   `json:"kind"`
	TypePrefix     string `json:"typePrefix,omitempty"`
	JenisCode      string `json:"jenisCode,omitempty"`
	Scope          Scope  `json:"scope"`
	DepartmentCode string `json:"departmentCode,omitempty"`
	Month          string `json:"month,omitempty"`
	HijriYear      string `json:"hijriYear,omitempty"`
	GregorianYear  string `json:"gregorianYear"`
}

// Parse splits a number produced by Format back into its components.
//
// Faculty and department numbers have the same token count; the organisation
// token decides: exactly "FT-UIN" is faculty scope, "{dept}-FT-UIN" is
// department scope.
func Parse(number string) (Components, error) {
	tokens := strings.Split(strings.TrimSpace(number), "/")

	var (
		c   Components
		err error
		org string
	)

	switch len(tokens) {
	case 6:
		c.Kind = KindLetter
		c.JenisCode = tokens[1]
		if !ValidJenis(c.JenisCode) {
			return Components{}, apperror.NewInvalidNumberFormat(number, "unknown jenis code")
		}
		c.Month = tokens[3]
		if _, ok := calendar.ParseRomanMonth(c.Month); !ok {
			return Components{}, apperror.NewInvalidNumberFormat(number, "month is not a Roman numeral")
		}
		hijri, ok := strings.CutSuffix(tokens[4], hijriSuffix)
		if !ok || !isHijriYear(hijri) {
			return Components{}, apperror.NewInvalidNumberFormat(number, "malformed hijri year")
		}
		c.HijriYear = hijri
		c.Counter, err = parseCounter(tokens[0])
		org, c.GregorianYear = tokens[2], tokens[5]

	case 4:
		kind, ok := kindForPrefix(tokens[0])
		if !ok {
			return Components{}, apperror.NewInvalidNumberFormat(number, "unknown type prefix")
		}
		c.Kind = kind
		c.TypePrefix = tokens[0]
		c.Counter, err = parseCounter(tokens[1])
		org, c.GregorianYear = tokens[2], tokens[3]

	case 3:
		c.Kind = KindGeneric
		c.Counter, err = parseCounter(tokens[0])
		org, c.GregorianYear = tokens[1], tokens[2]

	default:
		return Components{}, apperror.NewInvalidNumberFormat(number, "unexpected token count")
	}

	if err != nil {
		return Components{}, apperror.NewInvalidNumberFormat(number, err.Error())
	}
	if !isYear(c.GregorianYear) {
		return Components{}, apperror.NewInvalidNumberFormat(number, "malformed gregorian year")
	}

	switch {
	case org == FacultyTag:
		c.Scope = ScopeFaculty
	case strings.HasSuffix(org, "-"+FacultyTag) && len(org) > len(FacultyTag)+1:
		c.Scope = ScopeDepartment
		c.DepartmentCode = strings.TrimSuffix(org, "-"+FacultyTag)
	default:
		return Components{}, apperror.NewInvalidNumberFormat(number, "unknown organisation token")
	}

	return c, nil
}

type counterError string

func (e counterError) Error() string { return string(e) }

func parseCounter(tok string) (int64, error) {
	if len(tok) < padWidth || !isDigits(tok) {
		return 0, counterError("counter must be at least three digits")
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil || v < 1 {
		return 0, counterError("counter out of range")
	}
	return v, nil
}
