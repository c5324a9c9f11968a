package api

import (
	"net/http"
	"strings"

	"labflow/internal/errors"

	"github.com/gin-gonic/gin"
)

// respondError maps application errors to HTTP statuses. Repository
// errors only carry "not found" in their text, so that is matched too.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeConflict:
		status = http.StatusConflict
	case errors.CodeExternalService:
		status = http.StatusBadGateway
	default:
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
