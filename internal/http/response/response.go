package response

import (
	"errors"
	"net/http"

	"repaircrm_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// DomainError maps a service-layer error onto an HTTP response. Typed apperr
// errors carry their own status; anything else is an opaque 500 so internal
// detail never leaks to clients.
func DomainError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		Error(c, appErr.HTTPStatus(), appErr.Message, nil)
		return
	}
	Error(c, http.StatusInternalServerError, "internal server error", nil)
}

// ValidationError renders field-level validation failures as a 400 with one
// detail entry per offending field.
func ValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		Error(c, http.StatusBadRequest, "validation failed", details)
		return
	}
	Error(c, http.StatusBadRequest, "invalid request body", nil)
}
