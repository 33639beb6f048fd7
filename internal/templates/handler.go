package templates

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

const defaultMaxAssetSize = 5 << 20 // 5MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc          *Service
	MaxAssetSize int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, MaxAssetSize: defaultMaxAssetSize}
}

// RegisterRoutes attaches template routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.list)
	rg.POST("/templates", h.create)
	rg.GET("/templates/:id", h.get)
	rg.GET("/templates/:id/download", h.download)
	rg.PUT("/templates/:id/asset", h.uploadAsset)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list templates", nil)
		return
	}
	resp := make([]TemplateResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, toResponse(t))
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create template")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(t))
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch template")
		return
	}
	respond.OK(c, toResponse(t))
}

func (h *Handler) download(c *gin.Context) {
	asset, err := h.Svc.Asset(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch template asset")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+asset.FileName+`"`)
	c.Header("Content-Length", strconv.Itoa(len(asset.Data)))
	c.Data(http.StatusOK, docxContentType, asset.Data)
}

// uploadAsset accepts the DOCX either as multipart field "file" or as the
// raw request body.
func (h *Handler) uploadAsset(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxAssetSize)

	var data []byte
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", []string{"file: unable to read"})
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", []string{"file: unable to read"})
			return
		}
	} else {
		data, err = io.ReadAll(c.Request.Body)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", []string{"file: unable to read"})
			return
		}
	}
	if len(data) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", []string{"file: is required"})
		return
	}

	t, err := h.Svc.UploadAsset(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		h.fail(c, err, "failed to store template asset")
		return
	}
	respond.OK(c, toResponse(t))
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Template not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Invalid(c, err)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
