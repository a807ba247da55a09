package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.RateLimitExceeded.Inc()

	if got := testutil.ToFloat64(a.RateLimitExceeded); got != 1 {
		t.Errorf("a.RateLimitExceeded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.RateLimitExceeded); got != 0 {
		t.Errorf("b.RateLimitExceeded = %v, want 0", got)
	}
}

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodGet, "/api/:version/:plural", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/:version/:plural", http.StatusOK, 20*time.Millisecond)

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/:version/:plural", "200"))
	if got != 2 {
		t.Errorf("http_requests_total = %v, want 2", got)
	}
}

func TestObserveStore(t *testing.T) {
	m := New()

	m.ObserveStore("get", time.Now(), nil)
	m.ObserveStore("get", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("get", "success")); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("get", "error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.StoredObjects.WithLabelValues("users").Set(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `halo_mock_stored_objects{resource="users"} 3`) {
		t.Error("stored_objects gauge missing from output")
	}
}
