package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/activities", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{})
	})
	e.POST("/activities/:name/signup", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
	})
	e.GET("/health/live", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/activities", nil),
		httptest.NewRequest(http.MethodGet, "/activities", nil),
		httptest.NewRequest(http.MethodPost, "/activities/Nope/signup?email=a@b.c", nil),
		httptest.NewRequest(http.MethodGet, "/health/live", nil),
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/activities", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodPost, "/activities/:name/signup", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))

	count, err := testutil.GatherAndCount(reg, "activity_signup_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "health probes are not recorded")
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "handler_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()
	RosterOperationsTotal.WithLabelValues("list", ResultSuccess).Add(0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "handler_test_total 1")
	assert.Contains(t, rec.Body.String(), "activity_signup_roster_operations_total")
}
