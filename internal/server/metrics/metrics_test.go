package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/idkeeper/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAuth_CountsByOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAuth("login", nil)
	m.ObserveAuth("login", nil)
	m.ObserveAuth("login", &common.InvalidCredentialsError{Reason: common.CredentialsReasonPassword})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOperations.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOperations.WithLabelValues("login", "invalid_credentials")))
}

func TestObserveAuth_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveAuth("login", nil) })
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/users/{id}", "418")))

	n, err := testutil.GatherAndCount(reg, "idkeeper_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
