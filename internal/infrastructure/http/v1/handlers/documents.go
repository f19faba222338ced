package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"penomoran/internal/core/apperror"
	"penomoran/internal/core/id"
	"penomoran/internal/domain/documents"
	"penomoran/internal/infrastructure/http/v1/dto"
)

// DocumentService is implemented by *documents.Service.
type DocumentService interface {
	IssueLetterNumber(ctx context.Context, req documents.IssueRequest) (*documents.Issued, error)
	AttachNumberToExistingDocument(ctx context.Context, docID id.ID, req documents.AttachRequest) (*documents.Issued, error)
	GetByID(ctx context.Context, docID id.ID) (*documents.Document, error)
	GetByNumber(ctx context.Context, number string) (*documents.Document, error)
}

// DocumentHandler links numbers to documents.
type DocumentHandler struct {
	*BaseHandler
	service DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(base *BaseHandler, service DocumentService) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, service: service}
}

// IssueLetter creates a document with a freshly allocated number.
// POST /api/v1/letters
func (h *DocumentHandler) IssueLetter(c *gin.Context) {
	var req dto.IssueLetterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	issue, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	issued, err := h.service.IssueLetterNumber(c.Request.Context(), issue)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, issued)
}

// AttachNumber numbers an existing document.
// POST /api/v1/documents/:id/number
func (h *DocumentHandler) AttachNumber(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.AttachNumberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	attach, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	issued, err := h.service.AttachNumberToExistingDocument(c.Request.Context(), docID, attach)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, issued)
}

// Get returns a document by id.
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// GetByNumber returns the document carrying a number.
// GET /api/v1/documents?number=...
func (h *DocumentHandler) GetByNumber(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		h.Error(c, apperror.NewValidation("number is required").WithDetail("field", "number"))
		return
	}

	doc, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}
