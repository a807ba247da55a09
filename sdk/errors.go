package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yaroslav/haloclient/models"
)

// Common SDK errors that clients can check for specific error handling.
var (
	// ErrInvalidConfig indicates the client configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrRequiredParameter indicates a required operation parameter was empty.
	// No request is sent when this error is returned.
	ErrRequiredParameter = errors.New("required parameter missing")

	// ErrBadRequest indicates the request was malformed or invalid.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates the provided credentials are invalid.
	ErrUnauthorized = errors.New("unauthorized: invalid credentials")

	// ErrForbidden indicates the credentials lack permission for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates the request conflicts with existing state.
	ErrConflict = errors.New("conflict with existing resource")

	// ErrRateLimited indicates the request was rate limited by the server.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServerError indicates an internal server error occurred.
	ErrServerError = errors.New("internal server error")
)

// RequiredError reports a required parameter that was empty when an
// operation was called.
type RequiredError struct {
	// Field is the parameter name, e.g. "name".
	Field string

	// Operation is the operation identifier, e.g. "getUser".
	Operation string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("Required parameter %s was empty when calling %s.", e.Field, e.Operation)
}

// Is reports whether target is ErrRequiredParameter.
func (e *RequiredError) Is(target error) bool {
	return target == ErrRequiredParameter
}

// assertParamExists returns a RequiredError when value is empty.
func assertParamExists(operation, field, value string) error {
	if value == "" {
		return &RequiredError{Field: field, Operation: operation}
	}
	return nil
}

// APIError is returned for every non-2xx response. The server's body is kept
// verbatim in Body; when it is a problem detail it is also decoded into Problem.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Method and URL identify the request that failed.
	Method string
	URL    string

	// Body is the raw response body.
	Body []byte

	// Problem is the decoded problem detail, nil if the body was not one.
	Problem *models.ProblemDetail
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Problem != nil && e.Problem.Detail != "" {
		return msg + ": " + e.Problem.Detail
	}
	if len(e.Body) > 0 && e.Problem == nil {
		return msg + ": " + truncate(string(e.Body), 256)
	}
	return msg
}

// Is maps the status code to the matching sentinel error so callers can use
// errors.Is(err, sdk.ErrNotFound).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrServerError:
		return e.StatusCode >= 500
	}
	return false
}

// newAPIError builds an APIError from a response body.
func newAPIError(method, url string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}

	var problem models.ProblemDetail
	if len(body) > 0 && json.Unmarshal(body, &problem) == nil && (problem.Title != "" || problem.Detail != "" || problem.Status != 0) {
		apiErr.Problem = &problem
	}

	return apiErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a 409 response.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
