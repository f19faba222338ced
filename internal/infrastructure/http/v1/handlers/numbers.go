package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/calendar"
	"penomoran/internal/core/numerator"
	"penomoran/internal/infrastructure/http/v1/dto"
)

// NumberHandler exposes the pure formatter and parser.
type NumberHandler struct {
	*BaseHandler
	hijri calendar.HijriStrategy
}

// NewNumberHandler creates a new number handler.
func NewNumberHandler(base *BaseHandler, hijri calendar.HijriStrategy) *NumberHandler {
	if hijri == nil {
		hijri = calendar.PreciseHijri{}
	}
	return &NumberHandler{BaseHandler: base, hijri: hijri}
}

// Format renders a number from explicit components. No counter is touched.
// POST /api/v1/numbers/format
func (h *NumberHandler) Format(c *gin.Context) {
	var req dto.FormatRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.Now(), h.hijri)
	if err != nil {
		h.Error(c, err)
		return
	}

	number, err := numerator.Format(in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NumberResponse{Number: number})
}

// Parse splits a number into its components.
// GET /api/v1/numbers/parse?number=...
func (h *NumberHandler) Parse(c *gin.Context) {
	number := strings.TrimSpace(c.Query("number"))
	if number == "" {
		h.Error(c, apperror.NewValidation("number is required").WithDetail("field", "number"))
		return
	}

	components, err := numerator.Parse(number)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, components)
}
