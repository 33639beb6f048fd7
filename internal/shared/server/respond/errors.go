package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/validation"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterJSONNames(v)
	}
}

// ErrorResponse is the error body returned by every endpoint. Clients read
// message and errors; code is a stable machine-readable tag.
type ErrorResponse struct {
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, errs []string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if len(errs) > 0 {
		fields["errors"] = errs
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code,
		Message: message,
		Errors:  errs,
	})
}

// Invalid sends a 400 listing each rejected field of err.
func Invalid(c *gin.Context, err error) {
	msgs := validation.Messages(err)
	if len(msgs) == 0 && err != nil {
		Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	Error(c, http.StatusBadRequest, "validation_error", "Validation failed", msgs)
}

// BindError converts a gin binding failure into a 400 response.
func BindError(c *gin.Context, err error) {
	Invalid(c, err)
}
