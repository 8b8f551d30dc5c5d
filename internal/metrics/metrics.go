package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/atomic"

	"github.com/i474232898/regional-weather/internal/weather"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regional_weather",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "regional_weather",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regional_weather",
		Subsystem: "provider",
		Name:      "fetches_total",
		Help:      "Weather fetches by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "regional_weather",
		Subsystem: "provider",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of a single weather fetch",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	networkActivity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "regional_weather",
		Subsystem: "provider",
		Name:      "network_activity",
		Help:      "Number of fetch batches currently in flight",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// Indicator is a weather.ActivityIndicator that stays visible while at least
// one Begin has not been matched by End.
type Indicator struct {
	active atomic.Int64
}

// NewIndicator returns an idle Indicator.
func NewIndicator() *Indicator {
	return &Indicator{}
}

func (i *Indicator) Begin() {
	i.active.Inc()
	networkActivity.Inc()
}

func (i *Indicator) End() {
	if i.active.Dec() < 0 {
		i.active.Store(0)
		return
	}
	networkActivity.Dec()
}

// Visible reports whether any batch is in flight.
func (i *Indicator) Visible() bool {
	return i.active.Load() > 0
}

// InstrumentedClient wraps a weather.Client with fetch metrics.
type InstrumentedClient struct {
	next weather.Client
}

// Instrument wraps next.
func Instrument(next weather.Client) *InstrumentedClient {
	return &InstrumentedClient{next: next}
}

func (c *InstrumentedClient) Fetch(ctx context.Context, coord weather.Coordinate) (weather.Snapshot, error) {
	start := time.Now()
	snap, err := c.next.Fetch(ctx, coord)
	fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		return snap, err
	}
	fetchesTotal.WithLabelValues("success").Inc()
	return snap, nil
}
