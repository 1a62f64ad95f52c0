package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hackvote"

var (
	registry = prometheus.DefaultRegisterer

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route and method. Live feed connections are not observed.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations by op and result with error code.",
		},
		[]string{"op", "result", "error"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine repo operations by op and result.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "result"},
	)

	votesCast = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Votes persisted in the ledger.",
		},
	)

	phaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Admin lifecycle transitions by target phase.",
		},
		[]string{"phase"},
	)

	liveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Connected live-feed websocket clients.",
		},
	)
)

// skipRoute reports routes that stay out of the request metrics.
func skipRoute(route string) bool {
	return route == "/metrics" || route == "/health" || strings.HasPrefix(route, "/debug/pprof/")
}

func GinMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		// unmatched paths would explode the label set
		route = "unmatched"
	}
	if skipRoute(route) {
		return
	}

	method := c.Request.Method
	httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()

	if strings.HasSuffix(route, "/live") {
		return
	}
	httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveOp is deferred by repo mutations with their named error result.
func ObserveOp(op string, start time.Time, err error) {
	result := "success"
	errLabel := ""
	if err != nil {
		result = "error"
		// wrapped errors carry ids after the code
		errLabel, _, _ = strings.Cut(err.Error(), ":")
	}
	operations.WithLabelValues(op, result, errLabel).Inc()
	operationDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

func IncVotesCast() {
	votesCast.Inc()
}

func IncPhaseTransition(phase string) {
	phaseTransitions.WithLabelValues(phase).Inc()
}

func AddLiveSubscribers(delta float64) {
	liveSubscribers.Add(delta)
}

func init() {
	for _, c := range []prometheus.Collector{
		httpRequests,
		httpDuration,
		operations,
		operationDuration,
		votesCast,
		phaseTransitions,
		liveSubscribers,
	} {
		_ = registry.Register(c)
	}
}
