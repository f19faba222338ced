package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"penomoran/internal/core/audit"
	"penomoran/internal/infrastructure/http/v1/dto"
	"penomoran/pkg/logger"
	"penomoran/pkg/numerator"
)

// LegacyNumerator is implemented by *numerator.Service from pkg/numerator.
type LegacyNumerator interface {
	Preview(ctx context.Context, key numerator.Key, at time.Time) (string, error)
	Generate(ctx context.Context, key numerator.Key, at time.Time) (string, int64, error)
}

// LegacyHandler serves the legacy (jenis, tahun, prodi) letter numbers.
type LegacyHandler struct {
	*BaseHandler
	numerator LegacyNumerator
	audit     audit.Recorder
}

// NewLegacyHandler creates a new legacy handler.
func NewLegacyHandler(base *BaseHandler, n LegacyNumerator, recorder audit.Recorder) *LegacyHandler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &LegacyHandler{BaseHandler: base, numerator: n, audit: recorder}
}

// Preview returns the next legacy number without allocating it.
// GET /api/v1/legacy/letter-numbers/preview
func (h *LegacyHandler) Preview(c *gin.Context) {
	var req dto.LegacyLetterRequest
	if !h.BindQuery(c, &req) {
		return
	}

	now := h.Now()
	number, err := h.numerator.Preview(c.Request.Context(), req.ToKey(now), now)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LegacyLetterResponse{Number: number})
}

// Generate allocates and returns the next legacy number.
// POST /api/v1/legacy/letter-numbers
func (h *LegacyHandler) Generate(c *gin.Context) {
	var req dto.LegacyLetterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	now := h.Now()
	key := req.ToKey(now)
	number, value, err := h.numerator.Generate(ctx, key, now)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.audit.Record(ctx, audit.Event{
		Action:         audit.ActionLegacyGenerated,
		Year:           strconv.Itoa(key.Tahun),
		DepartmentCode: key.ProdiID,
		Counter:        value,
		Number:         number,
		Payload:        map[string]any{"jenis": key.Jenis},
	})
	logger.Info(ctx, "legacy letter number generated", "number", number, "jenis", key.Jenis)

	h.Created(c, dto.LegacyLetterResponse{Number: number, Value: value})
}
