package versions

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches version routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/versions", h.list)
	rg.POST("/resumes/:id/versions", h.create)
	rg.GET("/resumes/:id/versions/:versionId", h.get)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to list versions")
		return
	}
	resp := make([]VersionResponse, 0, len(items))
	for _, v := range items {
		resp = append(resp, toResponse(v))
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	// An empty body snapshots the resume as it is.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.BindError(c, err)
		return
	}
	v, err := h.Svc.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "failed to create version")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(v))
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.Svc.Get(c.Request.Context(), c.Param("id"), c.Param("versionId"))
	if err != nil {
		h.fail(c, err, "failed to fetch version")
		return
	}
	respond.OK(c, toResponse(v))
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrResumeNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Version not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Invalid(c, err)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
