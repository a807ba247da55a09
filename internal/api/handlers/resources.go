package handlers

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/yaroslav/haloclient/internal/api/middleware"
	"github.com/yaroslav/haloclient/internal/logging"
	"github.com/yaroslav/haloclient/internal/store"
	"github.com/yaroslav/haloclient/models"
)

const contentTypeJSONPatch = "application/json-patch+json"

// ResourceHandler serves the six operations for every resource collection.
// The group comes from the :group path parameter and is empty under /api.
type ResourceHandler struct {
	store *store.Store
}

// NewResourceHandler creates a handler backed by s.
func NewResourceHandler(s *store.Store) *ResourceHandler {
	return &ResourceHandler{store: s}
}

func groupResource(c *gin.Context) schema.GroupResource {
	return schema.GroupResource{Group: c.Param("group"), Resource: c.Param("plural")}
}

// Create handles POST {collection}.
func (h *ResourceHandler) Create(c *gin.Context) {
	gr := groupResource(c)

	obj, err := readObject(c)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.store.Create(c.Request.Context(), gr, obj)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.GetLogger(c).Debug("object created",
		zap.String(logging.FieldResource, gr.String()),
		zap.String(logging.FieldName, created.GetName()),
	)
	respondObject(c, http.StatusOK, created)
}

// Get handles GET {collection}/{name}.
func (h *ResourceHandler) Get(c *gin.Context) {
	obj, err := h.store.Get(c.Request.Context(), groupResource(c), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondObject(c, http.StatusOK, obj)
}

// List handles GET {collection} with paging, selectors and sorting.
func (h *ResourceHandler) List(c *gin.Context) {
	q, err := store.ParseQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.store.List(c.Request.Context(), groupResource(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondObject(c, http.StatusOK, result)
}

// Update handles PUT {collection}/{name}.
func (h *ResourceHandler) Update(c *gin.Context) {
	obj, err := readObject(c)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.store.Update(c.Request.Context(), groupResource(c), c.Param("name"), obj)
	if err != nil {
		respondError(c, err)
		return
	}
	respondObject(c, http.StatusOK, updated)
}

// Patch handles PATCH {collection}/{name}. Only JSON Patch documents are
// accepted.
func (h *ResourceHandler) Patch(c *gin.Context) {
	mediaType, _, err := mime.ParseMediaType(c.ContentType())
	if err != nil || mediaType != contentTypeJSONPatch {
		middleware.AbortWithProblem(c, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Content-Type must be %s", contentTypeJSONPatch))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err))
		return
	}

	patched, err := h.store.Patch(c.Request.Context(), groupResource(c), c.Param("name"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	respondObject(c, http.StatusOK, patched)
}

// Delete handles DELETE {collection}/{name} and returns the deleted object.
func (h *ResourceHandler) Delete(c *gin.Context) {
	deleted, err := h.store.Delete(c.Request.Context(), groupResource(c), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondObject(c, http.StatusOK, deleted)
}

func readObject(c *gin.Context) (*unstructured.Unstructured, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: request body is required", models.ErrInvalidRequest)
	}
	return store.Decode(body)
}
