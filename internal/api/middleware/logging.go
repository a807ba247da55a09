package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yaroslav/haloclient/internal/logging"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

const (
	contextKeyLogger    = "logger"
	contextKeyRequestID = "request_id"
)

// RequestLogger logs every request with a request-scoped logger.
// A request ID supplied by the client is kept, otherwise a new UUID is
// assigned. The ID is echoed in the response header.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)

		start := time.Now()

		requestLogger := logger.With(
			zap.String(logging.FieldRequestID, requestID),
			zap.String(logging.FieldMethod, c.Request.Method),
			zap.String(logging.FieldPath, c.Request.URL.Path),
			zap.String(logging.FieldRemoteAddr, c.ClientIP()),
			zap.String(logging.FieldUserAgent, c.Request.UserAgent()),
		)

		c.Set(contextKeyLogger, requestLogger)
		c.Set(contextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), requestLogger))

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.Int(logging.FieldStatusCode, status),
			zap.Int64(logging.FieldDuration, duration.Milliseconds()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		// Log at appropriate level based on status code
		switch {
		case status >= 500:
			requestLogger.Error("request completed with server error", fields...)
		case status >= 400:
			requestLogger.Warn("request completed with client error", fields...)
		default:
			requestLogger.Info("request completed", fields...)
		}
	}
}

// GetLogger retrieves the request-scoped logger, or a no-op logger.
func GetLogger(c *gin.Context) *zap.Logger {
	if logger, exists := c.Get(contextKeyLogger); exists {
		if l, ok := logger.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// GetRequestID retrieves the request ID, or "" outside RequestLogger.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(contextKeyRequestID); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
