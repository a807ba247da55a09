package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
)

// Content types used by the extension API.
const (
	ContentTypeJSON      = "application/json"
	ContentTypeJSONPatch = "application/json-patch+json"
)

// Request describes one HTTP call. It is built by the operation layer before
// any I/O and executed by Client.Do. A Request is never shared between calls.
type Request struct {
	// Operation names the operation for errors and logs, e.g. "getUser".
	Operation string

	// Method is the HTTP method.
	Method string

	// Path is the escaped request path relative to the base URL.
	Path string

	// Query holds the query parameters; repeated keys are repeated parameters.
	Query url.Values

	// Header holds the generated headers (Content-Type, Accept).
	Header http.Header

	// Body is the serialized request body, nil for no body.
	Body []byte
}

// newRequest creates a request with an empty query and header set.
func newRequest(operation, method, path string) *Request {
	return &Request{
		Operation: operation,
		Method:    method,
		Path:      path,
		Query:     url.Values{},
		Header:    http.Header{"Accept": []string{ContentTypeJSON}},
	}
}

// setJSONBody serializes v as the body with the given content type.
// A nil v leaves the body empty but still sets the content type.
func (r *Request) setJSONBody(contentType string, v interface{}) error {
	r.Header.Set("Content-Type", contentType)

	if isNil(v) {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	r.Body = data
	return nil
}

// URL resolves the request against baseURL.
func (r *Request) URL(baseURL string) string {
	u := baseURL + r.Path
	if encoded := r.Query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// bodyReader returns a fresh reader over the body, or nil.
func (r *Request) bodyReader() io.Reader {
	if r.Body == nil {
		return nil
	}
	return bytes.NewReader(r.Body)
}

// RequestOption customizes a single call. Options run after the default
// headers, so they take precedence over everything else.
type RequestOption func(*http.Request)

// WithHeader sets a header on one call.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// WithQuery adds a query parameter to one call.
func WithQuery(key, value string) RequestOption {
	return func(req *http.Request) {
		q := req.URL.Query()
		q.Add(key, value)
		req.URL.RawQuery = q.Encode()
	}
}

// isNil reports whether v is nil or a typed nil pointer, slice or map.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
