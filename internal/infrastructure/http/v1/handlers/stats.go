package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"penomoran/internal/core/apperror"
	"penomoran/internal/domain/reports"
	"penomoran/internal/infrastructure/http/v1/dto"
)

// StatsService is implemented by *reports.Service.
type StatsService interface {
	CounterStats(ctx context.Context, counterID int64) (*reports.CounterStats, error)
	AllCounterStats(ctx context.Context, filter reports.CounterFilter) (*reports.CounterReport, error)
}

// StatsHandler serves counter statistics.
type StatsHandler struct {
	*BaseHandler
	service StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(base *BaseHandler, service StatsService) *StatsHandler {
	return &StatsHandler{BaseHandler: base, service: service}
}

// List returns statistics for every counter matching the filter.
// GET /api/v1/stats/counters
func (h *StatsHandler) List(c *gin.Context) {
	var q dto.CounterStatsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.AllCounterStats(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Get returns statistics for one counter.
// GET /api/v1/stats/counters/:id
func (h *StatsHandler) Get(c *gin.Context) {
	raw := c.Param("id")
	counterID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || counterID < 1 {
		h.Error(c, apperror.NewValidation("invalid counter id").WithDetail("id", raw))
		return
	}

	stats, err := h.service.CounterStats(c.Request.Context(), counterID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}
