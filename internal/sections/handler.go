package sections

import (
	"errors"
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

// RegisterRoutes attaches section routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/sections", h.list)
	rg.POST("/resumes/:id/sections", h.create)
	rg.PATCH("/resumes/:id/sections/reorder", h.reorder)
	rg.PATCH("/resumes/:id/sections/:sectionId", h.update)
	rg.DELETE("/resumes/:id/sections/:sectionId", h.delete)
	rg.GET("/resumes/:id/sections/:sectionId/history", h.history)
	rg.POST("/resumes/:id/sections/:sectionId/history/:versionId/restore", h.restore)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to list sections")
		return
	}
	resp := make([]SectionResponse, 0, len(items))
	for _, s := range items {
		resp = append(resp, toResponse(s))
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	section, err := h.Svc.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "failed to create section")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(section))
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	section, err := h.Svc.Update(c.Request.Context(), c.Param("id"), c.Param("sectionId"), req)
	if err != nil {
		h.fail(c, err, "failed to update section")
		return
	}
	respond.OK(c, toResponse(section))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), c.Param("sectionId")); err != nil {
		h.fail(c, err, "failed to delete section")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reorder(c *gin.Context) {
	var req ReorderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	if err := h.Svc.Reorder(c.Request.Context(), c.Param("id"), req); err != nil {
		h.fail(c, err, "failed to reorder sections")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) history(c *gin.Context) {
	items, err := h.Svc.History(c.Request.Context(), c.Param("id"), c.Param("sectionId"))
	if err != nil {
		h.fail(c, err, "failed to list section history")
		return
	}
	resp := make([]VersionResponse, 0, len(items))
	for _, v := range items {
		resp = append(resp, toVersionResponse(v))
	}
	respond.OK(c, resp)
}

func (h *Handler) restore(c *gin.Context) {
	section, err := h.Svc.Restore(c.Request.Context(), c.Param("id"), c.Param("sectionId"), c.Param("versionId"))
	if err != nil {
		h.fail(c, err, "failed to restore section")
		return
	}
	respond.OK(c, toResponse(section))
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrResumeNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, ErrVersionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Section version not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Section not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Invalid(c, err)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
