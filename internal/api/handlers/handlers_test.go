package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaroslav/haloclient/internal/api/middleware"
	"github.com/yaroslav/haloclient/internal/store"
	"github.com/yaroslav/haloclient/models"
)

func setupRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.Open("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := NewResourceHandler(s)
	router := gin.New()
	router.UseRawPath = true
	for _, prefix := range []string{"/api/:version/:plural", "/apis/:group/:version/:plural"} {
		rg := router.Group(prefix)
		rg.POST("", h.Create)
		rg.GET("", h.List)
		rg.GET("/:name", h.Get)
		rg.PUT("/:name", h.Update)
		rg.PATCH("/:name", h.Patch)
		rg.DELETE("/:name", h.Delete)
	}

	health := NewHealthHandler(s)
	router.GET("/health/live", health.Liveness)
	router.GET("/health/ready", health.Readiness)

	return router, s
}

func do(router *gin.Engine, method, path, contentType, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func userBody(name string) string {
	return fmt.Sprintf(`{"apiVersion":"v1alpha1","kind":"User","metadata":{"name":%q},"spec":{"displayName":"D","email":"e@x"}}`, name)
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u
}

func TestResourceHandler_CRUD(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(router, http.MethodPost, "/api/v1alpha1/users", "application/json", userBody("alice"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeUser(t, w)
	assert.Equal(t, "alice", created.Metadata.Name)
	require.NotNil(t, created.Metadata.Version)
	assert.Equal(t, int64(0), *created.Metadata.Version)

	w = do(router, http.MethodGet, "/api/v1alpha1/users/alice", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "D", decodeUser(t, w).Spec.DisplayName)

	w = do(router, http.MethodPut, "/api/v1alpha1/users/alice", "application/json",
		`{"apiVersion":"v1alpha1","kind":"User","metadata":{"name":"alice","version":0},"spec":{"displayName":"New","email":"e@x"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeUser(t, w)
	assert.Equal(t, "New", updated.Spec.DisplayName)
	assert.Equal(t, int64(1), *updated.Metadata.Version)

	w = do(router, http.MethodPatch, "/api/v1alpha1/users/alice", "application/json-patch+json",
		`[{"op":"replace","path":"/spec/displayName","value":"Patched"}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Patched", decodeUser(t, w).Spec.DisplayName)

	w = do(router, http.MethodDelete, "/api/v1alpha1/users/alice", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decodeUser(t, w).Metadata.Name)

	w = do(router, http.MethodGet, "/api/v1alpha1/users/alice", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceHandler_Errors(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(router, http.MethodPost, "/api/v1alpha1/users", "application/json", userBody("bob"))
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		expected    int
	}{
		{"duplicate create", http.MethodPost, "/api/v1alpha1/users", "application/json", userBody("bob"), http.StatusConflict},
		{"empty body", http.MethodPost, "/api/v1alpha1/users", "application/json", "", http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1alpha1/users", "application/json", "{", http.StatusBadRequest},
		{"missing kind", http.MethodPost, "/api/v1alpha1/users", "application/json", `{"apiVersion":"v1alpha1","metadata":{"name":"x"}}`, http.StatusBadRequest},
		{"wrong group", http.MethodPost, "/apis/storage.halo.run/v1alpha1/attachments", "application/json", userBody("x"), http.StatusBadRequest},
		{"get missing", http.MethodGet, "/api/v1alpha1/users/nobody", "", "", http.StatusNotFound},
		{"stale version", http.MethodPut, "/api/v1alpha1/users/bob", "application/json",
			`{"apiVersion":"v1alpha1","kind":"User","metadata":{"name":"bob","version":7},"spec":{}}`, http.StatusConflict},
		{"patch wrong content type", http.MethodPatch, "/api/v1alpha1/users/bob", "application/json", `[]`, http.StatusUnsupportedMediaType},
		{"patch invalid document", http.MethodPatch, "/api/v1alpha1/users/bob", "application/json-patch+json", `{}`, http.StatusBadRequest},
		{"patch missing object", http.MethodPatch, "/api/v1alpha1/users/nobody", "application/json-patch+json", `[]`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/v1alpha1/users/nobody", "", "", http.StatusNotFound},
		{"invalid page", http.MethodGet, "/api/v1alpha1/users?page=-1", "", "", http.StatusBadRequest},
		{"invalid label selector", http.MethodGet, "/api/v1alpha1/users?labelSelector=a%20b", "", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.contentType, tt.body)
			assert.Equal(t, tt.expected, w.Code, w.Body.String())
			assert.Equal(t, middleware.ContentTypeProblem, w.Header().Get("Content-Type"))

			var problem models.ProblemDetail
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			assert.Equal(t, tt.expected, problem.Status)
			assert.NotEmpty(t, problem.Detail)
		})
	}
}

func TestResourceHandler_List(t *testing.T) {
	router, _ := setupRouter(t)

	for i, name := range []string{"a", "b", "c"} {
		body := fmt.Sprintf(`{"apiVersion":"v1alpha1","kind":"User","metadata":{"name":%q,"labels":{"idx":"%d"}},"spec":{"displayName":%q}}`, name, i, name)
		w := do(router, http.MethodPost, "/api/v1alpha1/users", "application/json", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(router, http.MethodGet, "/api/v1alpha1/users?page=1&size=2&sort=metadata.name,desc", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list models.UserList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "c", list.Items[0].Metadata.Name)
	assert.Equal(t, "b", list.Items[1].Metadata.Name)
	assert.True(t, list.HasNext)

	w = do(router, http.MethodGet, "/api/v1alpha1/users?labelSelector=idx%3D1&fieldSelector=metadata.name%3Db", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	list = models.UserList{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "b", list.Items[0].Metadata.Name)
}

func TestResourceHandler_EscapedName(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(router, http.MethodPost, "/apis/storage.halo.run/v1alpha1/attachments", "application/json",
		`{"apiVersion":"storage.halo.run/v1alpha1","kind":"Attachment","metadata":{"name":"a/b"},"spec":{"displayName":"x"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/apis/storage.halo.run/v1alpha1/attachments/a%2Fb", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var a models.Attachment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, "a/b", a.Metadata.Name)
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		ping     error
		path     string
		expected int
	}{
		{"live", nil, "/health/live", http.StatusOK},
		{"live ignores database", errors.New("down"), "/health/live", http.StatusOK},
		{"ready", nil, "/health/ready", http.StatusOK},
		{"not ready", errors.New("down"), "/health/ready", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(pingerFunc(func(context.Context) error { return tt.ping }))
			router := gin.New()
			router.GET("/health/live", h.Liveness)
			router.GET("/health/ready", h.Readiness)

			w := do(router, http.MethodGet, tt.path, "", "")
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", models.ErrAlreadyExists), http.StatusConflict},
		{models.ErrVersionConflict, http.StatusConflict},
		{models.ErrInvalidRequest, http.StatusBadRequest},
		{models.ErrInvalidPatch, http.StatusBadRequest},
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{models.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusFor(tt.err), tt.err.Error())
	}
}
