package numerator

import "context"

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	AllocateFunc     func(ctx context.Context, key Key) (Allocation, error)
	CurrentValueFunc func(ctx context.Context, key Key) (int64, error)
}

// Allocate implements Allocator.
func (m *MockAllocator) Allocate(ctx context.Context, key Key) (Allocation, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, key)
	}
	return Allocation{CounterID: 1, Value: 1, Key: key}, nil
}

// CurrentValue implements Allocator.
func (m *MockAllocator) CurrentValue(ctx context.Context, key Key) (int64, error) {
	if m.CurrentValueFunc != nil {
		return m.CurrentValueFunc(ctx, key)
	}
	return 0, nil
}

// Preview implements Allocator.
func (m *MockAllocator) Preview(ctx context.Context, key Key) (int64, error) {
	v, err := m.CurrentValue(ctx, key)
	if err != nil {
		return 0, err
	}
	return v + 1, nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
