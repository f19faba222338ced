package dto

import (
	"time"

	"penomoran/internal/core/numerator"
)

// CounterKeyRequest identifies a counter. Year defaults to the current
// Gregorian year.
type CounterKeyRequest struct {
	Year           string  `json:"year" form:"year"`
	Scope          string  `json:"scope" form:"scope" binding:"required"`
	DepartmentCode *string `json:"departmentCode" form:"departmentCode"`
}

// ToKey builds a normalized counter key.
func (r CounterKeyRequest) ToKey(now time.Time) (numerator.Key, error) {
	scope, err := parseScope(r.Scope)
	if err != nil {
		return numerator.Key{}, err
	}
	year := r.Year
	if year == "" {
		year = numerator.YearOf(now)
	}
	return numerator.NewKey(year, scope, Department(r.DepartmentCode))
}

// CounterKeyResponse echoes a normalized key.
type CounterKeyResponse struct {
	Year           string          `json:"year"`
	Scope          numerator.Scope `json:"scope"`
	DepartmentCode string          `json:"departmentCode,omitempty"`
}

// FromKey converts a key.
func FromKey(k numerator.Key) CounterKeyResponse {
	return CounterKeyResponse{Year: k.Year, Scope: k.Scope, DepartmentCode: k.DepartmentCode}
}

// AllocationResponse is the result of POST /counters/allocate.
type AllocationResponse struct {
	CounterKeyResponse
	CounterID int64 `json:"counterId"`
	Value     int64 `json:"value"`
}

// FromAllocation converts an allocation.
func FromAllocation(a numerator.Allocation) AllocationResponse {
	return AllocationResponse{
		CounterKeyResponse: FromKey(a.Key),
		CounterID:          a.CounterID,
		Value:              a.Value,
	}
}

// CounterValueResponse carries a current or previewed value.
type CounterValueResponse struct {
	CounterKeyResponse
	Value int64 `json:"value"`
}
