package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/incidents/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/incidents/:id", "200"))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/incidents/"+string(rune('a'+i)), nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/incidents/:id", "200"))
	assert.Equal(t, before+2, after)
}

func TestStatusTransition(t *testing.T) {
	before := testutil.ToFloat64(statusTransitionsTotal.WithLabelValues("pending", "resolved"))
	StatusTransition("pending", "resolved")
	assert.Equal(t, before+1, testutil.ToFloat64(statusTransitionsTotal.WithLabelValues("pending", "resolved")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", Handler())
	IncidentCreated()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "incidents_created_total")
}
