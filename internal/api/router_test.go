package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/yaroslav/haloclient/internal/api/middleware"
	"github.com/yaroslav/haloclient/internal/metrics"
	"github.com/yaroslav/haloclient/internal/store"
	"github.com/yaroslav/haloclient/models"
	"github.com/yaroslav/haloclient/pkg/selector"
	"github.com/yaroslav/haloclient/pkg/token"
	"github.com/yaroslav/haloclient/sdk"
)

type testServer struct {
	URL     string
	Metrics *metrics.Metrics
}

func setupServer(t *testing.T, auth *middleware.AuthConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := metrics.New()
	s, err := store.Open("", nil, m)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	srv := httptest.NewServer(SetupRouter(&RouterConfig{
		Store:   s,
		Metrics: m,
		Auth:    auth,
	}))
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Metrics: m}
}

func newClient(t *testing.T, url string, mutate func(*sdk.ClientConfig)) *sdk.Client {
	t.Helper()

	config := sdk.ClientConfig{BaseURL: url}
	if mutate != nil {
		mutate(&config)
	}
	client, err := sdk.NewClient(config)
	require.NoError(t, err)
	return client
}

func TestE2E_UserLifecycle(t *testing.T) {
	srv := setupServer(t, nil)
	users := newClient(t, srv.URL, nil).Users()
	ctx := context.Background()

	created, err := users.Create(ctx, &models.User{
		APIVersion: models.UserAPIVersion,
		Kind:       models.UserKind,
		Metadata:   models.Metadata{Name: "alice", Labels: map[string]string{"team": "docs"}},
		Spec:       models.UserSpec{DisplayName: "Alice", Email: "alice@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Metadata.Name)
	require.NotNil(t, created.Metadata.Version)
	require.NotNil(t, created.Metadata.CreationTimestamp)

	got, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Spec.Email)

	got.Spec.DisplayName = "Alice A."
	updated, err := users.Update(ctx, "alice", got)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Spec.DisplayName)
	assert.Equal(t, *created.Metadata.Version+1, *updated.Metadata.Version)
	assert.True(t, created.Metadata.CreationTimestamp.Equal(*updated.Metadata.CreationTimestamp))

	patched, err := users.Patch(ctx, "alice", []models.JSONPatchOperation{
		models.PatchReplace("/spec/displayName", "Patched"),
		models.PatchAdd("/metadata/annotations", map[string]string{"note": "x"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Patched", patched.Spec.DisplayName)
	assert.Equal(t, "x", patched.Metadata.Annotations["note"])

	labelSelector, err := selector.Labels().Equals("team", "docs").Build()
	require.NoError(t, err)

	list, err := users.List(ctx, &sdk.ListOptions{LabelSelector: labelSelector})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, users.Delete(ctx, "alice"))

	_, err = users.Get(ctx, "alice")
	assert.True(t, sdk.IsNotFound(err))

	var apiErr *sdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.NotNil(t, apiErr.Problem)
	assert.Equal(t, http.StatusNotFound, apiErr.Problem.Status)
}

func TestE2E_Conflicts(t *testing.T) {
	srv := setupServer(t, nil)
	users := newClient(t, srv.URL, nil).Users()
	ctx := context.Background()

	user := &models.User{
		APIVersion: models.UserAPIVersion,
		Kind:       models.UserKind,
		Metadata:   models.Metadata{Name: "bob"},
	}
	_, err := users.Create(ctx, user)
	require.NoError(t, err)

	_, err = users.Create(ctx, user)
	assert.True(t, sdk.IsConflict(err))

	stale, err := users.Get(ctx, "bob")
	require.NoError(t, err)

	fresh := *stale
	fresh.Spec.DisplayName = "first"
	_, err = users.Update(ctx, "bob", &fresh)
	require.NoError(t, err)

	stale.Spec.DisplayName = "second"
	_, err = users.Update(ctx, "bob", stale)
	assert.True(t, sdk.IsConflict(err))
}

func TestE2E_AttachmentsAndDynamic(t *testing.T) {
	srv := setupServer(t, nil)
	client := newClient(t, srv.URL, nil)
	ctx := context.Background()

	for _, name := range []string{"b.png", "a.png", "c.png"} {
		_, err := client.Attachments().Create(ctx, &models.Attachment{
			APIVersion: models.AttachmentAPIVersion,
			Kind:       models.AttachmentKind,
			Metadata:   models.Metadata{Name: name},
			Spec:       models.AttachmentSpec{DisplayName: name},
		})
		require.NoError(t, err)
	}

	list, err := client.Attachments().List(ctx, &sdk.ListOptions{
		Page: sdk.Int(1),
		Size: sdk.Int(2),
		Sort: []string{selector.Sort("metadata.name", selector.Asc)},
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "a.png", list.Items[0].Metadata.Name)
	assert.Equal(t, "b.png", list.Items[1].Metadata.Name)
	assert.Equal(t, int64(3), list.Total)

	dynamic := client.Dynamic(schema.GroupVersionResource{
		Group:    models.AttachmentGroup,
		Version:  "v1alpha1",
		Resource: "attachments",
	})
	obj, err := dynamic.Get(ctx, "c.png")
	require.NoError(t, err)
	assert.Equal(t, models.AttachmentKind, obj.GetKind())

	// Attachments live in their own group, so users are untouched
	users, err := client.Users().List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users.Items)
}

func TestE2E_Authentication(t *testing.T) {
	keyring := token.NewKeyring("secret")
	tok, err := token.Generate()
	require.NoError(t, err)
	keyring.Add(tok)

	srv := setupServer(t, &middleware.AuthConfig{Username: "admin", Password: "pw", Tokens: keyring})
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*sdk.ClientConfig)
		wantErr error
	}{
		{"anonymous", nil, sdk.ErrUnauthorized},
		{"basic", func(c *sdk.ClientConfig) { c.Username, c.Password = "admin", "pw" }, nil},
		{"wrong basic", func(c *sdk.ClientConfig) { c.Username, c.Password = "admin", "bad" }, sdk.ErrUnauthorized},
		{"bearer", func(c *sdk.ClientConfig) { c.Token = tok }, nil},
		{"wrong bearer", func(c *sdk.ClientConfig) { c.Token = "pat_wrong" }, sdk.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClient(t, srv.URL, tt.mutate).Users().List(ctx, nil)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	srv := setupServer(t, &middleware.AuthConfig{Username: "admin", Password: "pw"})

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "halo_mock_http_requests_total"))
}

func TestRouter_NoRoute(t *testing.T) {
	srv := setupServer(t, nil)

	resp, err := http.Get(srv.URL + "/nowhere")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, middleware.ContentTypeProblem, resp.Header.Get("Content-Type"))
}
