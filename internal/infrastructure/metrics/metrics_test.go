package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := NewRecorder()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/cashcards/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/cashcards/1", "/cashcards/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/cashcards/{id}", "404")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestObserve(t *testing.T) {
	m := NewRecorder()
	ctx := context.Background()

	m.Observe(ctx, "find_by_id", true, time.Millisecond)
	m.Observe(ctx, "find_by_id", false, time.Millisecond)
	m.Observe(ctx, "find_by_id", true, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.storageOps.WithLabelValues("find_by_id", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("find_by_id", "error")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewRecorder()
	m.Observe(context.Background(), "create", true, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.Contains(body, `cashcards_storage_operations_total{operation="create",outcome="success"} 1`), body)
	require.Contains(t, body, "go_goroutines")
}

func TestRegistryCollectsStorageFamilies(t *testing.T) {
	m := NewRecorder()
	m.Observe(context.Background(), "list_by_owner", false, 2*time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["cashcards_storage_operations_total"])
	require.True(t, names["cashcards_storage_operation_duration_seconds"])
	require.Equal(t, 1, testutil.CollectAndCount(m.storageOps))
}
