package resumes

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

const defaultMaxImportSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc           *Service
	MaxImportSize int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxImportSize int64) *Handler {
	if maxImportSize <= 0 {
		maxImportSize = defaultMaxImportSize
	}
	return &Handler{Svc: svc, MaxImportSize: maxImportSize}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.create)
	rg.POST("/resumes/import", h.importFile)
	rg.GET("/resumes/:id", h.get)
	rg.PATCH("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.GET("/resumes/:id/source", h.source)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	resp := make([]ResumeResponse, 0, len(items))
	for _, r := range items {
		resp = append(resp, toResponse(r))
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	resume, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create resume")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(resume))
}

func (h *Handler) get(c *gin.Context) {
	resume, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch resume")
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	resume, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "failed to update resume")
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) importFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxImportSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", []string{"file: is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", []string{"file: unable to read"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", []string{"file: unable to read"})
		return
	}

	in := ImportInput{
		Title:    c.PostForm("title"),
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}
	if templateID := strings.TrimSpace(c.PostForm("templateId")); templateID != "" {
		in.TemplateID = &templateID
	}

	resume, err := h.Svc.Import(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "failed to import resume")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(resume))
}

func (h *Handler) source(c *gin.Context) {
	src, err := h.Svc.Source(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch source file")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+src.FileName+`"`)
	c.Data(http.StatusOK, http.DetectContentType(src.Data), src.Data)
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSourceNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Source file not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Invalid(c, err)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
