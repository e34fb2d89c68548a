package respond

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"aihr-backend/internal/shared/upstream"
)

// Upstream writes the response for provider and configuration failures.
// It reports false when err is neither, leaving the response untouched.
func Upstream(c *gin.Context, err error) bool {
	var cfgErr *upstream.ConfigError
	if errors.As(err, &cfgErr) {
		Error(c, http.StatusInternalServerError, "configuration_error", cfgErr.Error(), gin.H{
			"provider": cfgErr.Provider,
			"missing":  cfgErr.Missing,
		})
		return true
	}
	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		Error(c, http.StatusBadGateway, "upstream_error", upErr.Error(), gin.H{
			"provider": upErr.Provider,
			"op":       upErr.Op,
		})
		return true
	}
	return false
}

// Validation writes a 400 with per-field messages when err carries ozzo errors.
func Validation(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		Error(c, http.StatusBadRequest, "validation_error", "invalid request", fieldErrs)
		return
	}
	Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
}
