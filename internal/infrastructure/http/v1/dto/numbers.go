package dto

import (
	"time"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/calendar"
	"penomoran/internal/core/numerator"
)

// FormatRequest renders a number without touching any counter.
// Date defaults to now; Year defaults to the year of Date.
type FormatRequest struct {
	Counter        int64      `json:"counter" binding:"required"`
	Kind           string     `json:"kind" binding:"required"`
	Scope          string     `json:"scope" binding:"required"`
	DepartmentCode *string    `json:"departmentCode"`
	JenisCode      string     `json:"jenisCode"`
	Year           string     `json:"year"`
	Date           *time.Time `json:"date"`
	HijriStrategy  string     `json:"hijriStrategy"`
}

// ToInput resolves the request into formatter input. fallback is used when
// no strategy is named.
func (r FormatRequest) ToInput(now time.Time, fallback calendar.HijriStrategy) (numerator.FormatInput, error) {
	kind, err := parseKind(r.Kind, 0)
	if err != nil {
		return numerator.FormatInput{}, err
	}

	at := now
	if r.Date != nil {
		at = *r.Date
	}
	if calendar.BeforeEpoch(at) {
		return numerator.FormatInput{}, apperror.NewValidation("date precedes the Hijri calendar").
			WithDetail("field", "date").
			WithDetail("earliest", calendar.Epoch.Format(time.DateOnly))
	}
	year := r.Year
	if year == "" {
		year = numerator.YearOf(at)
	}

	scope, err := parseScope(r.Scope)
	if err != nil {
		return numerator.FormatInput{}, err
	}
	key, err := numerator.NewKey(year, scope, Department(r.DepartmentCode))
	if err != nil {
		return numerator.FormatInput{}, err
	}

	hijri := fallback
	if r.HijriStrategy != "" {
		hijri, err = calendar.StrategyByName(r.HijriStrategy)
		if err != nil {
			return numerator.FormatInput{}, apperror.NewValidation(err.Error()).WithDetail("field", "hijriStrategy")
		}
	}

	alloc := numerator.Allocation{Value: r.Counter, Key: key}
	return numerator.ComposeInput(alloc, kind, r.JenisCode, at, hijri), nil
}

// NumberResponse carries one formatted number.
type NumberResponse struct {
	Number string `json:"number"`
}
