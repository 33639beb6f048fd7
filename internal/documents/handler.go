package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const defaultListLimit = 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/generate", h.generate)
	rg.GET("/resumes/:id/documents", h.list)
	rg.GET("/resumes/:id/documents/:documentId/download", h.download)
	rg.GET("/resumes/:id/documents/:documentId/text", h.text)
}

func (h *Handler) generate(c *gin.Context) {
	var req GenerateInput
	// The body is optional; without it the live resume renders with its own template.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.BindError(c, err)
		return
	}
	if req.VersionID != nil {
		c.Set(middleware.VersionIDKey, *req.VersionID)
	}

	doc, err := h.Svc.Generate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "failed to generate document")
		return
	}
	c.Set(middleware.DocumentIDKey, doc.ID)
	if doc.TemplateID != nil {
		c.Set(middleware.TemplateIDKey, *doc.TemplateID)
	}
	respond.JSON(c, http.StatusCreated, GenerateResponse{DocumentID: doc.ID, DownloadURL: doc.DownloadPath()})
}

func (h *Handler) list(c *gin.Context) {
	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list documents")
		return
	}
	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) download(c *gin.Context) {
	c.Set(middleware.DocumentIDKey, c.Param("documentId"))
	file, err := h.Svc.Download(c.Request.Context(), c.Param("id"), c.Param("documentId"))
	if err != nil {
		h.fail(c, err, "failed to download document")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Header("Content-Length", strconv.Itoa(len(file.Data)))
	c.Data(http.StatusOK, docxContentType, file.Data)
}

func (h *Handler) text(c *gin.Context) {
	c.Set(middleware.DocumentIDKey, c.Param("documentId"))
	text, err := h.Svc.Text(c.Request.Context(), c.Param("id"), c.Param("documentId"))
	if err != nil {
		h.fail(c, err, "failed to extract document text")
		return
	}
	respond.OK(c, gin.H{"documentId": c.Param("documentId"), "text": text})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrResumeNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, ErrVersionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Version not found", nil)
	case errors.Is(err, ErrTemplateNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Template not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Invalid(c, err)
	case errors.Is(err, ErrUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "generation_unavailable", "Document generation is temporarily unavailable. Please try again.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
