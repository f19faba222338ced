package numerator

import "context"

// Allocation is the result of one successful allocate call.
type Allocation struct {
	// CounterID is the storage id of the counter row (documents reference it).
	CounterID int64
	// Value is the newly issued number in the key's sequence (>= 1).
	Value int64
	Key   Key
}

// Allocator hands out sequence values.
//
// Implementations must allocate with a single atomic storage operation; two
// concurrent Allocate calls for one key never observe the same value.
type Allocator interface {
	// Allocate issues the next value for key. The value is durable on return.
	// Failures return apperror.CodeAllocationFailed and issue nothing.
	Allocate(ctx context.Context, key Key) (Allocation, error)

	// CurrentValue returns the last issued value, or 0 for an unused key.
	CurrentValue(ctx context.Context, key Key) (int64, error)

	// Preview returns CurrentValue+1 without allocating. The value may be taken
	// by another caller before it is used; never persist it.
	Preview(ctx context.Context, key Key) (int64, error)
}
