package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SubmissionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mandabem",
		Name:      "submissions_created_total",
		Help:      "Submissions accepted in pending_payment",
	})

	PaymentsConfirmed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mandabem",
			Name:      "payments_confirmed_total",
			Help:      "Submissions moved to paid, by payment method",
		},
		[]string{"method"},
	)

	EvaluationsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mandabem",
		Name:      "evaluations_recorded_total",
		Help:      "Judge evaluations persisted",
	})

	SubmissionsEvaluated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mandabem",
		Name:      "submissions_evaluated_total",
		Help:      "Submissions that reached the evaluated state",
	})

	// GuardRejections 按错误 code 统计被拒绝的状态变更
	GuardRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mandabem",
			Name:      "guard_rejections_total",
			Help:      "Lifecycle operations rejected by a guard",
		},
		[]string{"operation", "code"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			SubmissionsCreated,
			PaymentsConfirmed,
			EvaluationsRecorded,
			SubmissionsEvaluated,
			GuardRejections,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
