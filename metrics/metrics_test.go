package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	router := gin.New()
	router.Use(Middleware(registry))
	router.GET("/api/things/:id", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})

	for _, path := range []string{"/api/things/1", "/api/things/2", "/missing"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	counts := map[string]uint64{}
	for _, family := range families {
		if family.GetName() != "http_request_duration_seconds" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			counts[labels["path"]+" "+labels["status"]] = metric.GetHistogram().GetSampleCount()
		}
	}

	assert.Equal(t, map[string]uint64{
		"/api/things/:id 418": 2,
		"unmatched 404":       1,
	}, counts)
}

func TestNewHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: Namespace, Name: "things"})
	gauge.Set(3)
	registry.MustRegister(gauge)

	srv := httptest.NewServer(NewHandler(registry))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "unpublished_things 3")
}
