// Package reports provides read-only statistics over document counters and
// the documents that reference them.
package reports

import (
	"time"

	"penomoran/internal/core/numerator"
)

// CounterStats summarises one counter row.
//
// Value counts every allocation; Documents counts numbered documents pointing
// at the counter. Burned is the difference: values allocated whose document
// was never persisted.
type CounterStats struct {
	CounterID           int64                    `json:"counterId"`
	Year                string                   `json:"year"`
	Scope               numerator.Scope          `json:"scope"`
	DepartmentCode      string                   `json:"departmentCode,omitempty"`
	Value               int64                    `json:"value"`
	UpdatedAt           time.Time                `json:"updatedAt"`
	DocumentCountByKind map[numerator.Kind]int64 `json:"documentCountByKind"`
	Documents           int64                    `json:"documents"`
	Burned              int64                    `json:"burned"`
}

// AddDocuments records n documents of kind.
func (s *CounterStats) AddDocuments(kind numerator.Kind, n int64) {
	if s.DocumentCountByKind == nil {
		s.DocumentCountByKind = make(map[numerator.Kind]int64)
	}
	s.DocumentCountByKind[kind] += n
}

// recount derives Documents and Burned from the per-kind counts.
func (s *CounterStats) recount() {
	if s.DocumentCountByKind == nil {
		s.DocumentCountByKind = make(map[numerator.Kind]int64)
	}
	s.Documents = 0
	for _, n := range s.DocumentCountByKind {
		s.Documents += n
	}
	s.Burned = s.Value - s.Documents
	if s.Burned < 0 {
		// seeded counters can reference documents imported with their numbers
		s.Burned = 0
	}
}

// CounterFilter narrows AllCounterStats. Zero values match everything.
type CounterFilter struct {
	Year           string
	Scope          numerator.Scope
	DepartmentCode string
}

// CounterSummary totals a list of counters.
type CounterSummary struct {
	Counters  int   `json:"counters"`
	Allocated int64 `json:"allocated"`
	Documents int64 `json:"documents"`
	Burned    int64 `json:"burned"`
}

// CounterReport is the result of AllCounterStats.
type CounterReport struct {
	Items   []CounterStats `json:"items"`
	Summary CounterSummary `json:"summary"`
}
