package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentCountsByStatus(t *testing.T) {
	m := New(nil)

	h := m.Instrument("GET /api/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("missing") != "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/students/1", nil))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/students/1", nil))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/students/1?missing=1", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /api/students/{id}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /api/students/{id}", "GET", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency))
}

func TestObserveSummary(t *testing.T) {
	m := New(nil)

	m.ObserveSummary(OutcomeOK)
	m.ObserveSummary(OutcomeUnavailable)
	m.ObserveSummary(OutcomeUnavailable)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.summaries.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.summaries.WithLabelValues(OutcomeUnavailable)))
}

func TestHandlerExposesStoredGauge(t *testing.T) {
	m := New(func() float64 { return 3 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "students_api_students_stored 3"))
}
