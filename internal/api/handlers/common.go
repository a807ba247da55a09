// Package handlers provides the HTTP handlers of the mock extension API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yaroslav/haloclient/internal/api/middleware"
	"github.com/yaroslav/haloclient/models"
)

// respondError maps a store error to its status and writes a problem detail.
// Unexpected errors are logged and reported without detail.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	detail := err.Error()

	if status == http.StatusInternalServerError {
		middleware.GetLogger(c).Error("request failed", zap.Error(err))
		detail = "An internal error occurred"
	}

	c.Error(err)
	middleware.AbortWithProblem(c, status, detail)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, models.ErrInvalidPatch):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// respondObject writes v as JSON with the given status.
func respondObject(c *gin.Context, status int, v interface{}) {
	c.JSON(status, v)
}
