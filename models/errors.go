package models

import "errors"

// Common error types shared by the mock server and its store.
// Each maps to one HTTP status in API responses.

var (
	// ErrNotFound indicates the requested resource does not exist.
	// HTTP equivalent: 404 Not Found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource with this name already exists.
	// HTTP equivalent: 409 Conflict
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrVersionConflict indicates the submitted metadata.version is stale.
	// HTTP equivalent: 409 Conflict
	ErrVersionConflict = errors.New("resource version conflict")

	// ErrInvalidRequest indicates the request body or parameters are invalid.
	// HTTP equivalent: 400 Bad Request
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidPatch indicates a JSON-Patch document could not be decoded or applied.
	// HTTP equivalent: 400 Bad Request
	ErrInvalidPatch = errors.New("invalid JSON patch")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	// HTTP equivalent: 401 Unauthorized
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimitExceeded indicates too many requests from this client.
	// HTTP equivalent: 429 Too Many Requests
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInternalError indicates an unexpected server-side error.
	// HTTP equivalent: 500 Internal Server Error
	ErrInternalError = errors.New("internal server error")
)

// ProblemDetail is an RFC 7807 error body, the format the extension API uses
// for every non-2xx response.
type ProblemDetail struct {
	// Type is a URI reference identifying the problem type.
	Type string `json:"type,omitempty"`

	// Title is a short summary of the problem type.
	Title string `json:"title,omitempty"`

	// Status repeats the HTTP status code.
	Status int `json:"status,omitempty"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is the request path that produced the problem.
	Instance string `json:"instance,omitempty"`

	// RequestID correlates the response with server logs.
	RequestID string `json:"requestId,omitempty"`
}
