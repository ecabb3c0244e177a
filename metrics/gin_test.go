package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type captureCounter struct {
	records [][]Label
}

func (c *captureCounter) Inc(_ context.Context, labels ...Label) {
	c.records = append(c.records, append([]Label(nil), labels...))
}

func (c *captureCounter) Add(_ context.Context, _ float64, labels ...Label) {
	c.Inc(context.Background(), labels...)
}

type captureHistogram struct {
	records [][]Label
	values  []float64
}

func (h *captureHistogram) Record(_ context.Context, val float64, labels ...Label) {
	h.records = append(h.records, append([]Label(nil), labels...))
	h.values = append(h.values, val)
}

func labelValue(labels []Label, key string) (string, bool) {
	for _, label := range labels {
		if label.Key == key {
			return label.Value, true
		}
	}
	return "", false
}

func newCaptureMetrics() (*HTTPServerMetrics, *captureCounter, *captureHistogram) {
	counter := &captureCounter{}
	histogram := &captureHistogram{}
	return &HTTPServerMetrics{
		requestTotal: counter,
		duration:     histogram,
		baseLabels:   []Label{
			L("env", "test"),
			L(LabelService, "flaked"),
			L(LabelOperation, OperationHTTPServer),
		},
	}, counter, histogram
}

func TestGinHTTPMiddlewareUnknownRouteForUnmatchedPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	httpMetrics, counter, _ := newCaptureMetrics()

	router := gin.New()
	router.Use(GinHTTPMiddleware(httpMetrics))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/random-scan-value", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if len(counter.records) != 1 {
		t.Fatalf("counter records = %d, want 1", len(counter.records))
	}
	if route, _ := labelValue(counter.records[0], LabelRoute); route != UnknownRoute {
		t.Fatalf("route label = %q, want %q", route, UnknownRoute)
	}
	if outcome, _ := labelValue(counter.records[0], LabelOutcome); outcome != OutcomeError {
		t.Fatalf("outcome label = %q, want %q", outcome, OutcomeError)
	}
}

func TestGinHTTPMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	httpMetrics, counter, histogram := newCaptureMetrics()

	router := gin.New()
	router.Use(GinHTTPMiddleware(httpMetrics))
	router.GET("/v1/snowflakes/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"snowflake": c.Param("id")})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/snowflakes/130660958208131072", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(counter.records) != 1 || len(histogram.records) != 1 {
		t.Fatalf("records = %d/%d, want 1/1", len(counter.records), len(histogram.records))
	}

	labels := counter.records[0]
	want := map[string]string{
		"env":            "test",
		LabelService:     "flaked",
		LabelOperation:   OperationHTTPServer,
		LabelMethod:      http.MethodGet,
		LabelRoute:       "/v1/snowflakes/:id",
		LabelStatusClass: "2xx",
		LabelOutcome:     OutcomeSuccess,
	}
	for key, value := range want {
		if got, ok := labelValue(labels, key); !ok || got != value {
			t.Errorf("label %q = %q, want %q", key, got, value)
		}
	}
	if histogram.values[0] < 0 || histogram.values[0] > float64(time.Second) {
		t.Errorf("duration = %v out of range", histogram.values[0])
	}
}

func TestGinHTTPMiddlewareNilMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinHTTPMiddleware(nil))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
