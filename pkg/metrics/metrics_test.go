package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Outcome(OutcomeStored)
	m.Outcome(OutcomeStored)
	m.Outcome(OutcomeUnsupported)
	m.Fraud()
	m.ObserveStage("decode", 20*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeStored)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeUnsupported)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.fraud))
	require.Equal(t, 1, testutil.CollectAndCount(m.stages))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/5", nil))
	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/items/:id", "GET", "418")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.Contains(body, "checkparser_http_requests_total"))
	require.True(t, strings.Contains(body, `route="/items/:id"`))
}
