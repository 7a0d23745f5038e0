package metrics

import (
	"strconv"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "delivery",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "delivery",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "delivery",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	entriesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "delivery",
			Subsystem: "ledger",
			Name:      "entries_written_total",
			Help:      "Delivery entries created, updated or deleted.",
		},
		[]string{"op"},
	)

	entryRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "delivery",
			Subsystem: "ledger",
			Name:      "entry_rejections_total",
			Help:      "Entry writes rejected, by error kind.",
		},
		[]string{"reason"},
	)

	overridesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "delivery",
			Subsystem: "pricing",
			Name:      "overrides_written_total",
			Help:      "Route/product pricing rows inserted or updated.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		entriesWritten,
		entryRejections,
		overridesWritten,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency. The path label is the
// route pattern so ids do not explode the series count.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.Status(err)
		}
		path := c.Route().Path

		httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

func EntryWritten(op string) {
	entriesWritten.WithLabelValues(op).Inc()
}

// EntryRejected counts a failed entry write by its client error kind.
func EntryRejected(err error) {
	for _, kind := range []apperr.Kind{
		apperr.KindValidation,
		apperr.KindInvalidReference,
		apperr.KindProductUnavailable,
		apperr.KindNotFound,
	} {
		if apperr.Is(err, kind) {
			entryRejections.WithLabelValues(string(kind)).Inc()
			return
		}
	}
}

func OverridesWritten(n int) {
	overridesWritten.Add(float64(n))
}
