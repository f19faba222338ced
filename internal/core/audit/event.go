// Package audit defines numbering audit events. The PostgreSQL recorder lives
// in infrastructure/storage/postgres.
package audit

import (
	"context"

	"penomoran/internal/core/id"
)

// Action represents the type of audited numbering operation.
type Action string

const (
	ActionAllocated       Action = "allocated"
	ActionIssued          Action = "issued"
	ActionAttached        Action = "attached"
	ActionBurned          Action = "burned"
	ActionSeeded          Action = "seeded"
	ActionLegacyGenerated Action = "legacy_generated"
)

// Event is one audit record. Counter fields identify the sequence; DocumentID
// and Number are set once a document carries the number.
type Event struct {
	Action         Action
	Year           string
	Scope          string
	DepartmentCode string
	CounterID      int64
	Counter        int64
	Number         string
	DocumentID     *id.ID
	Payload        map[string]any
}

// Recorder appends audit events. Implementations log their own failures and
// never fail the caller.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Nop discards events.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Event) {}
