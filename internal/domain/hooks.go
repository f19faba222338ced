// Package domain holds what the numbering services share: lifecycle hooks and
// audit field enrichment.
package domain

import (
	"context"

	appctx "penomoran/internal/core/context"
)

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeIssue  HookEvent = "before_issue"
	AfterIssue   HookEvent = "after_issue"
	BeforeAttach HookEvent = "before_attach"
	AfterAttach  HookEvent = "after_attach"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
// Registration happens at wiring time; it is not safe for concurrent On calls.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// Auditable is implemented by entities carrying created_by/updated_by.
type Auditable interface {
	SetCreatedBy(string)
	SetUpdatedBy(string)
}

// EnrichCreatedBy sets CreatedBy and UpdatedBy from the context user.
// If no user is in context, this is a no-op.
func EnrichCreatedBy[T Auditable](ctx context.Context, entity T) error {
	if userID := appctx.GetUserID(ctx); userID != "" {
		entity.SetCreatedBy(userID)
		entity.SetUpdatedBy(userID)
	}
	return nil
}

// EnrichUpdatedBy sets only UpdatedBy from the context user.
func EnrichUpdatedBy[T Auditable](ctx context.Context, entity T) error {
	if userID := appctx.GetUserID(ctx); userID != "" {
		entity.SetUpdatedBy(userID)
	}
	return nil
}
