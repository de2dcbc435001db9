// Package middleware instruments the router with Prometheus metrics and
// OpenTelemetry traces. Both attach from the outside, through the
// router's public subscribe/navigate surface; the core stays free of
// observability concerns.
package middleware

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/routekit-dev/routekit/pkg/history"
	"github.com/routekit-dev/routekit/pkg/router"
)

// MetricsConfig configures the Prometheus navigation metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "routekit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the navigation metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "routekit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the navigation metric instruments.
type Metrics struct {
	navigationsTotal  *prometheus.CounterVec
	navigateDuration  prometheus.Histogram
	routeMatchesTotal *prometheus.CounterVec
	noMatchTotal      prometheus.Counter
}

// Navigation result label values.
const (
	resultOK           = "ok"
	resultDenied       = "denied"
	resultRejected     = "rejected"
	resultRedirectLoop = "redirect_loop"
	resultError        = "error"
)

// NewMetrics registers the navigation instruments.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "navigations_total",
			Help:        "Programmatic navigations by result.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"result"}),
		navigateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "navigate_duration_seconds",
			Help:        "End-to-end duration of the navigate pipeline.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		routeMatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "route_matches_total",
			Help:        "State changes by matched route pattern.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"pattern"}),
		noMatchTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "no_match_total",
			Help:        "State changes that matched no route.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// Observe subscribes to the router and counts every state change,
// including external navigations, by matched pattern. It returns the
// unsubscribe handle.
func (m *Metrics) Observe(r *router.Router) func() {
	return r.Subscribe(func(s *router.State) {
		if s.Match != nil {
			m.routeMatchesTotal.WithLabelValues(s.Match.Route.Pattern.String()).Inc()
		} else {
			m.noMatchTotal.Inc()
		}
	})
}

// Navigator wraps the router's Navigate with result counting and timing.
type Navigator struct {
	router  *router.Router
	metrics *Metrics
}

// Navigator returns an instrumented navigator for the router.
func (m *Metrics) Navigator(r *router.Router) *Navigator {
	return &Navigator{router: r, metrics: m}
}

// Navigate performs the navigation, recording its duration and result.
func (n *Navigator) Navigate(target string, opts ...router.NavigateOption) error {
	start := time.Now()
	err := n.router.Navigate(target, opts...)
	n.metrics.navigateDuration.Observe(time.Since(start).Seconds())
	n.metrics.navigationsTotal.WithLabelValues(resultLabel(err)).Inc()
	return err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, router.ErrNavigationDenied):
		return resultDenied
	case errors.Is(err, history.ErrNavigationRejected):
		return resultRejected
	case errors.Is(err, router.ErrRedirectLoop):
		return resultRedirectLoop
	default:
		return resultError
	}
}
