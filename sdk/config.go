package sdk

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultUserAgent is sent when ClientConfig.UserAgent is empty.
const DefaultUserAgent = "haloclient-go"

// ClientConfig contains the configuration for creating a new SDK client.
type ClientConfig struct {
	// BaseURL is the Halo server URL (e.g., "https://blog.example.com").
	// Operation paths such as /api/v1alpha1/users are appended to it.
	BaseURL string

	// Username and Password enable HTTP Basic authentication.
	// Optional: Basic auth is skipped when Username is empty.
	Username string
	Password string

	// Token is a static bearer token (e.g., a personal access token).
	// Optional: mutually exclusive with TokenSource.
	Token string

	// TokenSource resolves the bearer token before each request. It may block,
	// for example to refresh an OAuth2 token.
	// Optional: mutually exclusive with Token.
	TokenSource oauth2.TokenSource

	// DefaultHeaders are added to every request after the generated headers,
	// so they override Content-Type, Accept and User-Agent.
	DefaultHeaders http.Header

	// UserAgent is sent in the User-Agent header.
	// Default: DefaultUserAgent
	UserAgent string

	// HTTPClient is the HTTP client used for requests.
	// Optional: if nil, a default client with reasonable timeouts will be created.
	HTTPClient *http.Client

	// Timeout is the HTTP request timeout of the default client.
	// Default: 30 seconds
	Timeout time.Duration

	// RetryAttempts enables the retrying transport when greater than zero.
	// Default: 0 (no retries)
	RetryAttempts int

	// RetryWaitMin is the initial wait between retries.
	// Default: 500 milliseconds
	RetryWaitMin time.Duration

	// RetryWaitMax caps the wait between retries.
	// Default: 10 seconds
	RetryWaitMax time.Duration

	// Logger receives debug logs for every request.
	// Default: no-op logger
	Logger *zap.Logger
}

// Validate checks if the client configuration is valid and sets defaults.
func (c *ClientConfig) Validate() error {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)

	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Password, validation.When(c.Username != "", validation.Required)),
		validation.Field(&c.Token, validation.When(c.TokenSource != nil, validation.Empty.Error("must be empty when a token source is set"))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RetryAttempts, validation.Min(0), validation.Max(10)),
		validation.Field(&c.RetryWaitMin, validation.Min(time.Duration(0))),
		validation.Field(&c.RetryWaitMax, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	// Set default timeout if not provided
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	// Set default retry wait times if not provided
	if c.RetryWaitMin == 0 {
		c.RetryWaitMin = 500 * time.Millisecond
	}
	if c.RetryWaitMax == 0 {
		c.RetryWaitMax = 10 * time.Second
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		return fmt.Errorf("%w: RetryWaitMax must not be less than RetryWaitMin", ErrInvalidConfig)
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	// Create default HTTP client if not provided
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return nil
}

// HasBasicAuth returns true if HTTP Basic credentials are configured.
func (c *ClientConfig) HasBasicAuth() bool {
	return c.Username != ""
}

// HasBearerAuth returns true if a bearer token or token source is configured.
func (c *ClientConfig) HasBearerAuth() bool {
	return c.Token != "" || c.TokenSource != nil
}

// httpURL is an ozzo rule accepting absolute http(s) URLs.
func httpURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}
