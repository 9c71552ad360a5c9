package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	m := NewHTTPMetrics("acta-test")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/v1/companies/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("acta-test", http.MethodGet, "/api/v1/companies/:id", "404"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/companies/42", nil))

	after := testutil.ToFloat64(RequestCounter.WithLabelValues("acta-test", http.MethodGet, "/api/v1/companies/:id", "404"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, 1.0, testutil.ToFloat64(StatusCodeCategoryCounter.WithLabelValues("acta-test", "4xx", http.MethodGet, "/api/v1/companies/:id")))
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(201))
	assert.Equal(t, "3xx", statusCategory(302))
	assert.Equal(t, "4xx", statusCategory(409))
	assert.Equal(t, "5xx", statusCategory(503))
	assert.Equal(t, "", statusCategory(0))
}
