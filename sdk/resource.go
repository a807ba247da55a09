package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yaroslav/haloclient/models"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Resource identifies a collection of the extension API.
type Resource struct {
	// Group is the API group; empty for the core group.
	Group string

	// Version is the API version, e.g. "v1alpha1".
	Version string

	// Plural is the lowercase plural resource name, e.g. "users".
	Plural string

	// Kind is the object kind, e.g. "User". It names operations in errors.
	Kind string
}

// Built-in resources.
var (
	UserResource = Resource{
		Version: "v1alpha1",
		Plural:  "users",
		Kind:    models.UserKind,
	}

	AttachmentResource = Resource{
		Group:   models.AttachmentGroup,
		Version: "v1alpha1",
		Plural:  "attachments",
		Kind:    models.AttachmentKind,
	}
)

// ResourceFor converts a GroupVersionResource. The kind is left empty.
func ResourceFor(gvr schema.GroupVersionResource) Resource {
	return Resource{Group: gvr.Group, Version: gvr.Version, Plural: gvr.Resource}
}

// GroupVersionResource returns r as a GroupVersionResource.
func (r Resource) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: r.Group, Version: r.Version, Resource: r.Plural}
}

// CollectionPath returns /api/{version}/{plural} for the core group and
// /apis/{group}/{version}/{plural} otherwise.
func (r Resource) CollectionPath() string {
	if r.Group == "" {
		return fmt.Sprintf("/api/%s/%s", url.PathEscape(r.Version), url.PathEscape(r.Plural))
	}
	return fmt.Sprintf("/apis/%s/%s/%s", url.PathEscape(r.Group), url.PathEscape(r.Version), url.PathEscape(r.Plural))
}

// ItemPath returns the path of a single named object.
func (r Resource) ItemPath(name string) string {
	return r.CollectionPath() + "/" + url.PathEscape(name)
}

// operationID names an operation the way error messages refer to it,
// e.g. "getUser".
func (r Resource) operationID(verb string) string {
	if r.Kind != "" {
		return verb + r.Kind
	}
	return verb + r.Plural
}

// RequestBuilder builds request descriptors for one resource without
// performing any I/O.
type RequestBuilder struct {
	resource Resource
}

// Create builds POST {collection}. A nil obj sends no body.
func (b RequestBuilder) Create(obj interface{}) (*Request, error) {
	req := newRequest(b.resource.operationID("create"), http.MethodPost, b.resource.CollectionPath())
	if err := req.setJSONBody(ContentTypeJSON, obj); err != nil {
		return nil, err
	}
	return req, nil
}

// Get builds GET {collection}/{name}.
func (b RequestBuilder) Get(name string) (*Request, error) {
	op := b.resource.operationID("get")
	if err := assertParamExists(op, "name", name); err != nil {
		return nil, err
	}
	return newRequest(op, http.MethodGet, b.resource.ItemPath(name)), nil
}

// List builds GET {collection} with the query parameters of opts.
func (b RequestBuilder) List(opts *ListOptions) (*Request, error) {
	req := newRequest(b.resource.operationID("list"), http.MethodGet, b.resource.CollectionPath())
	req.Query = opts.Values()
	return req, nil
}

// Patch builds PATCH {collection}/{name} with a JSON-Patch body.
// A nil ops sends no body.
func (b RequestBuilder) Patch(name string, ops []models.JSONPatchOperation) (*Request, error) {
	op := b.resource.operationID("patch")
	if err := assertParamExists(op, "name", name); err != nil {
		return nil, err
	}

	req := newRequest(op, http.MethodPatch, b.resource.ItemPath(name))
	var body interface{}
	if ops != nil {
		body = ops
	}
	if err := req.setJSONBody(ContentTypeJSONPatch, body); err != nil {
		return nil, err
	}
	return req, nil
}

// Update builds PUT {collection}/{name}.
func (b RequestBuilder) Update(name string, obj interface{}) (*Request, error) {
	op := b.resource.operationID("update")
	if err := assertParamExists(op, "name", name); err != nil {
		return nil, err
	}

	req := newRequest(op, http.MethodPut, b.resource.ItemPath(name))
	if err := req.setJSONBody(ContentTypeJSON, obj); err != nil {
		return nil, err
	}
	return req, nil
}

// Delete builds DELETE {collection}/{name}.
func (b RequestBuilder) Delete(name string) (*Request, error) {
	op := b.resource.operationID("delete")
	if err := assertParamExists(op, "name", name); err != nil {
		return nil, err
	}
	return newRequest(op, http.MethodDelete, b.resource.ItemPath(name)), nil
}

// ResourceClient is the operation set of one resource. T is the object type
// and L the list type. It holds no mutable state and is safe for concurrent use.
type ResourceClient[T any, L any] struct {
	client   *Client
	resource Resource
}

// NewResourceClient returns the operation set for resource.
func NewResourceClient[T any, L any](client *Client, resource Resource) *ResourceClient[T, L] {
	return &ResourceClient[T, L]{client: client, resource: resource}
}

// Resource returns the resource this client operates on.
func (rc *ResourceClient[T, L]) Resource() Resource {
	return rc.resource
}

// Requests returns the descriptor builder for this resource.
func (rc *ResourceClient[T, L]) Requests() RequestBuilder {
	return RequestBuilder{resource: rc.resource}
}

// Create creates obj and returns the object stored by the server.
//
// Parameters:
//   - ctx: Request context for cancellation and timeouts
//   - obj: The object to create; nil sends an empty body
//   - opts: Per-call request options
//
// Returns:
//   - *T: The created object, including server-populated metadata
//   - error: ErrConflict if the name is taken, *APIError for other non-2xx
//     responses, or a wrapped transport error
func (rc *ResourceClient[T, L]) Create(ctx context.Context, obj *T, opts ...RequestOption) (*T, error) {
	var body interface{}
	if obj != nil {
		body = obj
	}

	req, err := rc.Requests().Create(body)
	if err != nil {
		return nil, err
	}

	var out T
	if err := rc.client.Do(ctx, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches the object called name.
//
// Parameters:
//   - ctx: Request context for cancellation and timeouts
//   - name: The object's metadata.name; escaped into the path
//   - opts: Per-call request options
//
// Returns:
//   - *T: The object
//   - error: *RequiredError if name is empty (no request is sent),
//     ErrNotFound if it does not exist, or other errors
func (rc *ResourceClient[T, L]) Get(ctx context.Context, name string, opts ...RequestOption) (*T, error) {
	req, err := rc.Requests().Get(name)
	if err != nil {
		return nil, err
	}

	var out T
	if err := rc.client.Do(ctx, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of objects.
//
// Parameters:
//   - ctx: Request context for cancellation and timeouts
//   - listOpts: Paging, selectors and sort; nil lists with server defaults
//   - opts: Per-call request options
//
// Returns:
//   - *L: The page, with total and paging flags
//   - error: ErrBadRequest for an invalid selector or sort, *APIError for
//     other non-2xx responses, or a wrapped transport error
func (rc *ResourceClient[T, L]) List(ctx context.Context, listOpts *ListOptions, opts ...RequestOption) (*L, error) {
	req, err := rc.Requests().List(listOpts)
	if err != nil {
		return nil, err
	}

	var out L
	if err := rc.client.Do(ctx, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Patch applies a JSON-Patch document to the object called name.
// The operations are applied in order and atomically by the server.
//
// Parameters:
//   - ctx: Request context for cancellation and timeouts
//   - name: The object's metadata.name
//   - ops: The JSON-Patch operations, sent as application/json-patch+json
//   - opts: Per-call request options
//
// Returns:
//   - *T: The patched object
//   - error: *RequiredError if name is empty, ErrBadRequest if the patch
//     cannot be applied, ErrNotFound, or other errors
func (rc *ResourceClient[T, L]) Patch(ctx context.Context, name string, ops []models.JSONPatchOperation, opts ...RequestOption) (*T, error) {
	req, err := rc.Requests().Patch(name, ops)
	if err != nil {
		return nil, err
	}

	var out T
	if err := rc.client.Do(ctx, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the object called name with obj. The server rejects stale
// metadata.version values with a conflict.
//
// Parameters:
//   - ctx: Request context for cancellation and timeouts
//   - name: The object's metadata.name
//   - obj: The full replacement object; nil sends an empty body
//   - opts: Per-call request options
//
// Returns:
//   - *T: The stored object
//   - error: *RequiredError if name is empty, ErrConflict on a version
//     mismatch, ErrNotFound, or other errors
func (rc *ResourceClient[T, L]) Update(ctx context.Context, name string, obj *T, opts ...RequestOption) (*T, error) {
	var body interface{}
	if obj != nil {
		body = obj
	}

	req, err := rc.Requests().Update(name, body)
	if err != nil {
		return nil, err
	}

	var out T
	if err := rc.client.Do(ctx, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the object called name. The response body is discarded.
//
// Parameters:
//   - ctx: Request context for cancellation and timeouts
//   - name: The object's metadata.name
//   - opts: Per-call request options
//
// Returns:
//   - error: *RequiredError if name is empty (no request is sent),
//     ErrNotFound if it does not exist, or other errors
func (rc *ResourceClient[T, L]) Delete(ctx context.Context, name string, opts ...RequestOption) error {
	req, err := rc.Requests().Delete(name)
	if err != nil {
		return err
	}

	return rc.client.Do(ctx, req, nil, opts...)
}

// Typed operation sets for the built-in resources.
type (
	UserClient       = ResourceClient[models.User, models.UserList]
	AttachmentClient = ResourceClient[models.Attachment, models.AttachmentList]
)
