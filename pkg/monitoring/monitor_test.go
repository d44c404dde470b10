package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()
	Init()

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/api/modules/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(RequestCounter.WithLabelValues(http.MethodGet, "/api/modules/:id", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/modules/3", nil))
	after := testutil.ToFloat64(RequestCounter.WithLabelValues(http.MethodGet, "/api/modules/:id", "200"))

	assert.Equal(t, before+1, after)
}

func TestObserveSubmission(t *testing.T) {
	before := testutil.ToFloat64(AssessmentSubmissions.WithLabelValues("true"))
	ObserveSubmission(true)
	assert.Equal(t, before+1, testutil.ToFloat64(AssessmentSubmissions.WithLabelValues("true")))
}
