package dto

import (
	"time"

	"penomoran/pkg/numerator"
)

// LegacyLetterRequest addresses one legacy (jenis, tahun, prodi_id) sequence.
// Tahun defaults to the current year.
type LegacyLetterRequest struct {
	Jenis   string  `json:"jenis" form:"jenis" binding:"required"`
	Tahun   int     `json:"tahun" form:"tahun"`
	ProdiID *string `json:"prodiId" form:"prodiId"`
}

// ToKey builds the legacy key.
func (r LegacyLetterRequest) ToKey(now time.Time) numerator.Key {
	key := numerator.KeyFor(r.Jenis, Department(r.ProdiID), now)
	if r.Tahun != 0 {
		key.Tahun = r.Tahun
	}
	return key
}

// LegacyLetterResponse carries a legacy number.
type LegacyLetterResponse struct {
	Number string `json:"number"`
	Value  int64  `json:"value,omitempty"`
}
