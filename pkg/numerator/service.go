// Package numerator provides the legacy letter-number utility.
//
// It keeps its own sequence per (jenis, tahun, prodi_id) in
// letter_number_counters, separate from the document counters. Numbers look
// like 0007/B/IF/UIN/XI/2025, or 0007/B/FT/UIN/XI/2025 for faculty letters.
package numerator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/calendar"
	"penomoran/pkg/logger"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// facultyUnit stands in for the prodi token on faculty-level letters.
const facultyUnit = "FT"

// PadWidth is the minimum counter width.
const PadWidth = 4

// Key identifies one legacy sequence. An empty ProdiID is the faculty-level sequence.
type Key struct {
	Jenis   string
	Tahun   int
	ProdiID string
}

// KeyFor builds a key for the year of t.
func KeyFor(jenis, prodiID string, t time.Time) Key {
	return Key{Jenis: jenis, Tahun: t.Year(), ProdiID: prodiID}
}

// String renders the key for logs, e.g. "B/2025/IF" or "B/2025/FT".
func (k Key) String() string {
	unit := k.ProdiID
	if unit == "" {
		unit = facultyUnit
	}
	return fmt.Sprintf("%s/%d/%s", k.Jenis, k.Tahun, unit)
}

func (k Key) normalize() (Key, error) {
	k.Jenis = strings.ToUpper(strings.TrimSpace(k.Jenis))
	k.ProdiID = strings.TrimSpace(k.ProdiID)

	switch k.Jenis {
	case "A", "B", "C", "D":
	default:
		return Key{}, apperror.NewValidation("jenis must be A, B, C or D").WithDetail("jenis", k.Jenis)
	}
	if k.Tahun < 1 {
		return Key{}, apperror.NewValidation("invalid year").WithDetail("tahun", k.Tahun)
	}
	if strings.Contains(k.ProdiID, "/") {
		return Key{}, apperror.NewValidation("prodi id must not contain '/'").WithDetail("prodiId", k.ProdiID)
	}
	return k, nil
}

// Service issues legacy letter numbers.
type Service struct {
	querier Querier
}

// New creates a new legacy numerator over querier. Pass the pool, not a
// transaction: each generated number is committed on its own.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// Preview returns the number Generate would produce next, without allocating.
func (s *Service) Preview(ctx context.Context, key Key, at time.Time) (string, error) {
	key, err := key.normalize()
	if err != nil {
		return "", err
	}

	var last int64
	err = s.querier.QueryRow(ctx, `
		SELECT last_number FROM letter_number_counters
		WHERE jenis = $1 AND tahun = $2 AND prodi_id = $3
	`, key.Jenis, key.Tahun, key.ProdiID).Scan(&last)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("legacy preview: %w", err)
	}

	return Format(key, last+1, at), nil
}

// Generate allocates the next value with one upsert-increment and returns the
// formatted number with its raw counter value.
func (s *Service) Generate(ctx context.Context, key Key, at time.Time) (string, int64, error) {
	key, err := key.normalize()
	if err != nil {
		return "", 0, err
	}

	var num int64
	err = s.querier.QueryRow(ctx, `
		INSERT INTO letter_number_counters (jenis, tahun, prodi_id, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (jenis, tahun, prodi_id)
		DO UPDATE SET last_number = letter_number_counters.last_number + 1, updated_at = NOW()
		RETURNING last_number
	`, key.Jenis, key.Tahun, key.ProdiID).Scan(&num)
	if err != nil {
		logger.Error(logger.WithFields(ctx, "legacy_key", key.String()), "legacy number generation failed", "error", err)
		return "", 0, apperror.NewAllocationFailed(fmt.Errorf("legacy generate %s: %w", key, err)).
			WithDetail("key", key.String())
	}

	return Format(key, num, at), num, nil
}

// Format renders a legacy number. The month comes from at; the year from the key.
func Format(key Key, value int64, at time.Time) string {
	unit := key.ProdiID
	if unit == "" {
		unit = facultyUnit
	}
	return fmt.Sprintf("%0*d/%s/%s/UIN/%s/%d", PadWidth, value, key.Jenis, unit, calendar.RomanMonth(at), key.Tahun)
}
