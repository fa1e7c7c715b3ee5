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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ReconcileTotal result: ok, invalid, conflict, failed
	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_question_reconcile_total",
			Help: "Question set saves by result",
		},
		[]string{"result"},
	)

	ReconcileChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_question_changes_total",
			Help: "Questions written by question set saves",
		},
		[]string{"op"},
	)

	InvitationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_invitations_total",
			Help: "Invitation emails by delivery result",
		},
		[]string{"result"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Response submissions by result",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ReconcileTotal)
		prometheus.MustRegister(ReconcileChanges)
		prometheus.MustRegister(InvitationsTotal)
		prometheus.MustRegister(SubmissionsTotal)
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
