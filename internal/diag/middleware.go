package diag

import (
	"strconv"
	"time"

	"github.com/annel0/bullethell/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// httpMetrics базовые HTTP-метрики диагностического сервера:
// * bullethell_diag_http_request_duration_seconds{method,path,status}
// * bullethell_diag_http_requests_inflight
type httpMetrics struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bullethell",
			Subsystem: "diag",
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов диагностики.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bullethell",
			Subsystem: "diag",
			Name:      "http_requests_inflight",
			Help:      "Текущее количество обрабатываемых HTTP-запросов.",
		}),
	}
	reg.MustRegister(m.reqDuration, m.reqInflight)
	return m
}

func (m *httpMetrics) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.reqInflight.Inc()
		c.Next()
		m.reqInflight.Dec()

		m.reqDuration.WithLabelValues(c.Request.Method, routePath(c), strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// requestLogger снабжает запрос trace-ID: из span OpenTelemetry, если он есть, иначе uuid
func requestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Header("X-Trace-ID", traceID)

		start := time.Now()
		c.Next()
		log.Debug("[HTTP] %s %s %d %s trace=%s", c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start), traceID)
	}
}

func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
