package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/routekit-dev/routekit/pkg/router"
)

// Default tracer name for routekit applications.
const defaultTracerName = "routekit"

// OTelConfig configures the OpenTelemetry navigation tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "routekit").
	TracerName string

	// Filter determines which navigations to trace. Return true to trace
	// the navigation, false to skip. If nil, all navigations are traced.
	Filter func(target string) bool

	// AttributeExtractor extracts custom attributes from the state after
	// a successful navigation.
	AttributeExtractor func(s *router.State) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry navigation tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithFilter sets the navigation filter.
func WithFilter(filter func(target string) bool) OTelOption {
	return func(c *OTelConfig) { c.Filter = filter }
}

// WithAttributeExtractor sets the custom attribute extractor.
func WithAttributeExtractor(fn func(s *router.State) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) { c.AttributeExtractor = fn }
}

// TracedNavigator wraps the router's Navigate in a span per navigation.
type TracedNavigator struct {
	router *router.Router
	cfg    OTelConfig
}

// NewTracedNavigator creates a navigator that traces each navigation.
func NewTracedNavigator(r *router.Router, opts ...OTelOption) *TracedNavigator {
	cfg := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.tracer = otel.Tracer(cfg.TracerName)
	return &TracedNavigator{router: r, cfg: cfg}
}

// Navigate performs the navigation inside a span named
// "router.navigate". The span records the target, the matched pattern and
// the navigation outcome.
func (n *TracedNavigator) Navigate(ctx context.Context, target string, opts ...router.NavigateOption) error {
	if n.cfg.Filter != nil && !n.cfg.Filter(target) {
		return n.router.Navigate(target, opts...)
	}

	_, span := n.cfg.tracer.Start(ctx, "router.navigate",
		trace.WithAttributes(attribute.String("routekit.target", target)))
	defer span.End()

	err := n.router.Navigate(target, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	if s := n.router.CurrentState(); s != nil {
		if s.Match != nil {
			span.SetAttributes(attribute.String("routekit.pattern", s.Match.Route.Pattern.String()))
		} else {
			span.SetAttributes(attribute.Bool("routekit.no_match", true))
		}
		if n.cfg.AttributeExtractor != nil {
			span.SetAttributes(n.cfg.AttributeExtractor(s)...)
		}
	}
	return nil
}
