package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yaroslav/haloclient/internal/metrics"
	"github.com/yaroslav/haloclient/pkg/token"
)

// AuthConfig lists the credentials the server accepts.
type AuthConfig struct {
	// Username and Password enable HTTP Basic authentication.
	Username string
	Password string

	// Tokens holds the accepted bearer tokens.
	Tokens *token.Keyring

	// Metrics counts failures; optional.
	Metrics *metrics.Metrics
}

// Enabled reports whether any credential is configured.
func (a *AuthConfig) Enabled() bool {
	return a != nil && (a.Username != "" || (a.Tokens != nil && a.Tokens.Len() > 0))
}

// RequireAuth accepts requests carrying valid Basic credentials or a valid
// bearer token. With no credentials configured every request passes.
func RequireAuth(config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		scheme, credentials, _ := strings.Cut(header, " ")

		var ok bool
		switch strings.ToLower(scheme) {
		case "basic":
			ok = config.checkBasic(c.Request)
		case "bearer":
			ok = config.Tokens != nil && config.Tokens.Verify(strings.TrimSpace(credentials))
		default:
			scheme = "none"
		}

		if !ok {
			if config.Metrics != nil {
				config.Metrics.AuthFailures.WithLabelValues(strings.ToLower(scheme)).Inc()
			}
			c.Header("WWW-Authenticate", `Basic realm="halo", Bearer`)
			AbortWithProblem(c, http.StatusUnauthorized, "Authentication failed")
			return
		}

		c.Next()
	}
}

func (a *AuthConfig) checkBasic(r *http.Request) bool {
	if a.Username == "" {
		return false
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return false
	}

	// Compare both fields even when the first one differs
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
	return userOK && passOK
}
