package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveOp_ErrorLabel(t *testing.T) {
	dup := errors.New("DUPLICATE_VOTE")

	before := promtest.ToFloat64(operations.WithLabelValues("test_op", "error", "DUPLICATE_VOTE"))
	ObserveOp("test_op", time.Now(), fmt.Errorf("%w: team t1 award a1", dup))
	ObserveOp("test_op", time.Now(), dup)

	after := promtest.ToFloat64(operations.WithLabelValues("test_op", "error", "DUPLICATE_VOTE"))
	require.Equal(t, before+2, after)
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinMiddleware)
	router.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	counted := func(route, code string) float64 {
		return promtest.ToFloat64(httpRequests.WithLabelValues(route, http.MethodGet, code))
	}

	beforeRoute := counted("/events/:id", "200")
	beforeHealth := counted("/health", "200")
	beforeUnmatched := counted("unmatched", "404")

	for _, path := range []string{"/events/a", "/events/b", "/health", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, beforeRoute+2, counted("/events/:id", "200"))
	require.Equal(t, beforeHealth, counted("/health", "200"))
	require.Equal(t, beforeUnmatched+1, counted("unmatched", "404"))
}
