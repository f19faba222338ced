// Package numerator provides the PostgreSQL implementation of the document
// counter store. It implements core/numerator.Allocator.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"penomoran/internal/core/apperror"
	corenumerator "penomoran/internal/core/numerator"
	"penomoran/pkg/logger"
)

var tracer = otel.Tracer("penomoran/numerator")

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Batcher is implemented by *pgxpool.Pool. SeedAll uses it when available.
type Batcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const (
	allocateSQL = `
		INSERT INTO document_counters (year, scope, department_code, counter)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (year, scope, department_code)
		DO UPDATE SET counter = document_counters.counter + 1, updated_at = NOW()
		RETURNING id, counter`

	currentSQL = `
		SELECT counter FROM document_counters
		WHERE year = $1 AND scope = $2 AND department_code = $3`

	seedSQL = `
		INSERT INTO document_counters (year, scope, department_code, counter)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, scope, department_code)
		DO UPDATE SET counter = GREATEST(document_counters.counter, EXCLUDED.counter), updated_at = NOW()
		RETURNING id, counter`
)

// Service allocates document counter values using PostgreSQL.
//
// Numerator calls are intentionally executed outside of business transactions:
// the querier must be the pool, not a transaction, so every allocated value is
// committed before it is returned. A value whose document later fails to save
// stays consumed.
type Service struct {
	querier Querier
}

// Ensure compile-time interface compliance.
var _ corenumerator.Allocator = (*Service)(nil)

// New creates a new counter store.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// Allocate issues the next value for key with a single upsert-increment.
// The first call for an unseen key returns 1.
func (s *Service) Allocate(ctx context.Context, key corenumerator.Key) (corenumerator.Allocation, error) {
	key, err := key.Normalize()
	if err != nil {
		return corenumerator.Allocation{}, err
	}

	ctx, span := startSpan(ctx, "numerator.allocate", key)
	defer span.End()

	alloc := corenumerator.Allocation{Key: key}
	err = s.querier.QueryRow(ctx, allocateSQL, key.Year, key.Scope.String(), key.DepartmentCode).
		Scan(&alloc.CounterID, &alloc.Value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocate failed")
		logger.Error(ctx, "counter allocation failed", keyFields(key, "error", err)...)
		return corenumerator.Allocation{}, apperror.NewAllocationFailed(fmt.Errorf("allocate %s: %w", key, err)).
			WithDetail("key", key.String())
	}

	span.SetAttributes(attribute.Int64("numerator.value", alloc.Value))
	logger.Debug(ctx, "counter allocated", keyFields(key, "counter_id", alloc.CounterID, "counter", alloc.Value)...)
	return alloc, nil
}

// CurrentValue returns the last issued value for key, or 0 when nothing has
// been issued yet.
func (s *Service) CurrentValue(ctx context.Context, key corenumerator.Key) (int64, error) {
	key, err := key.Normalize()
	if err != nil {
		return 0, err
	}

	ctx, span := startSpan(ctx, "numerator.current", key)
	defer span.End()

	var value int64
	err = s.querier.QueryRow(ctx, currentSQL, key.Year, key.Scope.String(), key.DepartmentCode).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("current value %s: %w", key, err)
	}
	return value, nil
}

// Preview returns the value the next Allocate would return if nobody else
// allocates first. It never writes.
func (s *Service) Preview(ctx context.Context, key corenumerator.Key) (int64, error) {
	current, err := s.CurrentValue(ctx, key)
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// Seed raises the counter for key to at least value (for migration purposes).
// A counter already above value is left untouched, so seeding can never make
// issued numbers repeat.
func (s *Service) Seed(ctx context.Context, key corenumerator.Key, value int64) (corenumerator.Allocation, error) {
	if value < 1 {
		return corenumerator.Allocation{}, apperror.NewValidation("seed value must be positive").
			WithDetail("value", value)
	}
	key, err := key.Normalize()
	if err != nil {
		return corenumerator.Allocation{}, err
	}

	ctx, span := startSpan(ctx, "numerator.seed", key)
	defer span.End()

	alloc := corenumerator.Allocation{Key: key}
	err = s.querier.QueryRow(ctx, seedSQL, key.Year, key.Scope.String(), key.DepartmentCode, value).
		Scan(&alloc.CounterID, &alloc.Value)
	if err != nil {
		span.RecordError(err)
		return corenumerator.Allocation{}, fmt.Errorf("seed %s: %w", key, err)
	}

	logger.Info(ctx, "counter seeded", keyFields(key, "requested", value, "counter", alloc.Value)...)
	return alloc, nil
}

// SeedEntry is one counter to raise.
type SeedEntry struct {
	Key   corenumerator.Key
	Value int64
}

// SeedAll seeds many counters, in one round trip when the querier can batch.
// Entries are validated up front; nothing is sent if any entry is invalid.
func (s *Service) SeedAll(ctx context.Context, entries []SeedEntry) ([]corenumerator.Allocation, error) {
	keys := make([]corenumerator.Key, len(entries))
	for i, e := range entries {
		if e.Value < 1 {
			return nil, apperror.NewValidation("seed value must be positive").
				WithDetail("value", e.Value).
				WithDetail("entry", i)
		}
		key, err := e.Key.Normalize()
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	batcher, ok := s.querier.(Batcher)
	if !ok {
		out := make([]corenumerator.Allocation, 0, len(entries))
		for i, e := range entries {
			alloc, err := s.Seed(ctx, keys[i], e.Value)
			if err != nil {
				return out, err
			}
			out = append(out, alloc)
		}
		return out, nil
	}

	ctx, span := tracer.Start(ctx, "numerator.seed_all",
		trace.WithAttributes(attribute.Int("numerator.entries", len(entries))))
	defer span.End()

	batch := &pgx.Batch{}
	for i, e := range entries {
		batch.Queue(seedSQL, keys[i].Year, keys[i].Scope.String(), keys[i].DepartmentCode, e.Value)
	}

	results := batcher.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]corenumerator.Allocation, 0, len(entries))
	for i := range entries {
		alloc := corenumerator.Allocation{Key: keys[i]}
		if err := results.QueryRow().Scan(&alloc.CounterID, &alloc.Value); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "seed batch failed")
			return out, fmt.Errorf("seed %s: %w", keys[i], err)
		}
		out = append(out, alloc)
	}

	logger.Info(ctx, "counters seeded", "entries", len(out))
	return out, nil
}

func startSpan(ctx context.Context, name string, key corenumerator.Key) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("numerator.year", key.Year),
		attribute.String("numerator.scope", key.Scope.String()),
		attribute.String("numerator.department_code", key.DepartmentCode),
	))
}

func keyFields(key corenumerator.Key, extra ...any) []any {
	return append([]any{
		"year", key.Year,
		"scope", key.Scope.String(),
		"department_code", key.DepartmentCode,
	}, extra...)
}
