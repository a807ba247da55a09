package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yaroslav/haloclient/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client is the main SDK client for the Halo extension API.
// It is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    oauth2.TokenSource
	username       string
	password       string
	defaultHeaders http.Header
	userAgent      string
	logger         *zap.Logger
}

// NewClient creates a new SDK client with the given configuration.
// The configuration is validated and defaults are applied; no request is sent.
func NewClient(config ClientConfig) (*Client, error) {
	// Validate and set defaults
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if config.RetryAttempts > 0 {
		// Copy the client so the caller's instance keeps its transport
		wrapped := *httpClient
		wrapped.Transport = NewRetryTransport(httpClient.Transport, config.RetryAttempts,
			config.RetryWaitMin, config.RetryWaitMax, config.Logger)
		httpClient = &wrapped
	}

	client := &Client{
		baseURL:        config.BaseURL,
		httpClient:     httpClient,
		tokenSource:    newTokenSource(config),
		username:       config.Username,
		password:       config.Password,
		defaultHeaders: config.DefaultHeaders.Clone(),
		userAgent:      config.UserAgent,
		logger:         config.Logger,
	}

	return client, nil
}

// BaseURL returns the normalized base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Users returns the operation set for users (/api/v1alpha1/users).
func (c *Client) Users() *UserClient {
	return NewResourceClient[models.User, models.UserList](c, UserResource)
}

// Attachments returns the operation set for attachments
// (/apis/storage.halo.run/v1alpha1/attachments).
func (c *Client) Attachments() *AttachmentClient {
	return NewResourceClient[models.Attachment, models.AttachmentList](c, AttachmentResource)
}

// Do executes r and decodes a successful response body into dest.
// dest may be nil, in which case the body is discarded. Non-2xx responses
// return an *APIError; transport errors are wrapped and returned as-is.
//
// Headers are applied in this order, later ones winning: the generated
// headers of r, User-Agent, authentication, ClientConfig.DefaultHeaders and
// finally opts.
func (c *Client) Do(ctx context.Context, r *Request, dest interface{}, opts ...RequestOption) error {
	fullURL := r.URL(c.baseURL)

	req, err := http.NewRequestWithContext(ctx, r.Method, fullURL, r.bodyReader())
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range r.Header {
		req.Header[key] = append([]string(nil), values...)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if err := c.addAuthHeaders(ctx, req); err != nil {
		return err
	}

	for key, values := range c.defaultHeaders {
		req.Header[key] = append([]string(nil), values...)
	}

	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("operation", r.Operation),
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", r.Operation, err)
	}
	defer drainAndCloseBody(resp)

	c.logger.Debug("request completed",
		zap.String("operation", r.Operation),
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for success status codes
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(r.Method, req.URL.String(), resp.StatusCode, body)
	}

	// Parse response if a destination was provided
	if dest == nil || resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
