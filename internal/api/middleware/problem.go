// Package middleware provides HTTP middleware for the mock extension API:
// request logging, authentication, rate limiting and metrics.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yaroslav/haloclient/models"
)

// ContentTypeProblem is the media type of error responses.
const ContentTypeProblem = "application/problem+json"

// AbortWithProblem writes an RFC 7807 problem detail and stops the chain.
func AbortWithProblem(c *gin.Context, status int, detail string) {
	c.Header("Content-Type", ContentTypeProblem)
	c.AbortWithStatusJSON(status, models.ProblemDetail{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Instance:  c.Request.URL.Path,
		RequestID: GetRequestID(c),
	})
}
