package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"penomoran/internal/core/audit"
	"penomoran/internal/core/numerator"
	"penomoran/internal/infrastructure/http/v1/dto"
)

// CounterHandler exposes the counter store.
type CounterHandler struct {
	*BaseHandler
	allocator numerator.Allocator
	audit     audit.Recorder
}

// NewCounterHandler creates a new counter handler.
func NewCounterHandler(base *BaseHandler, allocator numerator.Allocator, recorder audit.Recorder) *CounterHandler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &CounterHandler{BaseHandler: base, allocator: allocator, audit: recorder}
}

// Allocate issues the next value of a counter. The value is consumed even if
// the caller never uses it.
// POST /api/v1/counters/allocate
func (h *CounterHandler) Allocate(c *gin.Context) {
	var req dto.CounterKeyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	key, err := req.ToKey(h.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	alloc, err := h.allocator.Allocate(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), audit.Event{
		Action:         audit.ActionAllocated,
		Year:           alloc.Key.Year,
		Scope:          alloc.Key.Scope.String(),
		DepartmentCode: alloc.Key.DepartmentCode,
		CounterID:      alloc.CounterID,
		Counter:        alloc.Value,
	})

	h.Created(c, dto.FromAllocation(alloc))
}

// Current returns the last issued value, 0 for an unused key.
// GET /api/v1/counters/current
func (h *CounterHandler) Current(c *gin.Context) {
	h.readValue(c, h.allocator.CurrentValue)
}

// Preview returns the value the next allocation would probably get.
// GET /api/v1/counters/preview
func (h *CounterHandler) Preview(c *gin.Context) {
	h.readValue(c, h.allocator.Preview)
}

func (h *CounterHandler) readValue(c *gin.Context, read func(ctx context.Context, key numerator.Key) (int64, error)) {
	var req dto.CounterKeyRequest
	if !h.BindQuery(c, &req) {
		return
	}
	key, err := req.ToKey(h.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	value, err := read(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CounterValueResponse{CounterKeyResponse: dto.FromKey(key), Value: value})
}
