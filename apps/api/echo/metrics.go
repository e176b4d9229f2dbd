package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus metrics of the API.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	IndexTransforms *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tourney",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tourney",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		IndexTransforms: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tourney",
				Name:      "index_transforms_total",
				Help:      "Total index content transformations",
			},
			[]string{"result"}, // result=ok/parse_error/source_error
		),
	}
}

func (m *Metrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				// let the error handler write the response so its code is recorded
				ctx.Error(err)
			}

			req := ctx.Request()
			route := ctx.Path()
			m.RequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(ctx.Response().Status)).Inc()
			m.RequestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func (m *Metrics) observeTransform(result string) {
	if m != nil {
		m.IndexTransforms.WithLabelValues(result).Inc()
	}
}
