package dto

import (
	"penomoran/internal/core/numerator"
	"penomoran/internal/domain/reports"
)

// CounterStatsQuery filters GET /stats/counters. Every field is optional.
type CounterStatsQuery struct {
	Year           string `form:"year"`
	Scope          string `form:"scope"`
	DepartmentCode string `form:"departmentCode"`
}

// ToFilter converts the query.
func (q CounterStatsQuery) ToFilter() (reports.CounterFilter, error) {
	f := reports.CounterFilter{Year: q.Year, DepartmentCode: q.DepartmentCode}
	if q.Scope != "" {
		scope, err := parseScope(q.Scope)
		if err != nil {
			return reports.CounterFilter{}, err
		}
		f.Scope = scope
		if scope == numerator.ScopeFaculty {
			f.DepartmentCode = ""
		}
	}
	return f, nil
}
