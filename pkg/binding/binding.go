// Package binding is the thin observer between the router core and a host
// view layer.
//
// Routes carry an opaque componentRef token, not a pointer into the view
// tree; the binding resolves tokens through a caller-supplied Registry at
// render time. The view layer subscribes once and re-renders from the
// binding's accessors, all of which read the same RouterState within a
// single notification.
package binding

import (
	"github.com/routekit-dev/routekit/pkg/history"
	"github.com/routekit-dev/routekit/pkg/route"
	"github.com/routekit-dev/routekit/pkg/router"
)

// NotFound is the sentinel returned by CurrentComponent when no route
// matched and the registry has no not-found component of its own.
var NotFound = &notFoundSentinel{}

type notFoundSentinel struct{}

func (*notFoundSentinel) String() string { return "routekit: not found" }

// Registry resolves componentRef tokens to whatever the view layer
// renders. The router never inspects the registered values.
type Registry struct {
	components map[string]any
	notFound   any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]any)}
}

// Register maps a componentRef token to a renderable value. Registering a
// token again replaces the previous value.
func (reg *Registry) Register(ref string, component any) {
	reg.components[ref] = component
}

// SetNotFound sets the component rendered when no route matches.
func (reg *Registry) SetNotFound(component any) {
	reg.notFound = component
}

// Resolve looks up a componentRef token.
func (reg *Registry) Resolve(ref string) (any, bool) {
	c, ok := reg.components[ref]
	return c, ok
}

// Binding exposes router state to view-layer consumers.
type Binding struct {
	router   *router.Router
	registry *Registry
}

// New creates a binding over a router and a component registry.
func New(r *router.Router, registry *Registry) *Binding {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Binding{router: r, registry: registry}
}

// Registry returns the component registry.
func (b *Binding) Registry() *Registry {
	return b.registry
}

// Location returns the current location.
func (b *Binding) Location() history.Location {
	if s := b.router.CurrentState(); s != nil {
		return s.Location
	}
	return history.Location{}
}

// Match returns the current match, or nil when no route matched.
func (b *Binding) Match() *route.Match {
	if s := b.router.CurrentState(); s != nil {
		return s.Match
	}
	return nil
}

// Params returns the current match's parameters. Nil when no route
// matched.
func (b *Binding) Params() map[string]string {
	if m := b.Match(); m != nil {
		return m.Params
	}
	return nil
}

// Param returns a single parameter value, or "" when absent.
func (b *Binding) Param(name string) string {
	return b.Match().Param(name)
}

// Navigate performs a programmatic navigation.
func (b *Binding) Navigate(target string, opts ...router.NavigateOption) error {
	return b.router.Navigate(target, opts...)
}

// IsActive reports whether the pathname is active for the current
// location.
func (b *Binding) IsActive(path string, exact bool) bool {
	return b.router.IsActive(path, exact)
}

// Subscribe registers a re-render callback and returns its unsubscribe
// handle.
func (b *Binding) Subscribe(fn func(*router.State)) func() {
	return b.router.Subscribe(fn)
}

// CurrentComponent resolves the matched route's componentRef. When no
// route matched, it returns the registry's not-found component, falling
// back to the NotFound sentinel. An unregistered componentRef also yields
// the not-found component: a route that cannot be rendered is a 404 from
// the view's perspective.
func (b *Binding) CurrentComponent() any {
	m := b.Match()
	if m != nil {
		if c, ok := b.registry.Resolve(m.Route.Component); ok {
			return c
		}
	}
	if b.registry.notFound != nil {
		return b.registry.notFound
	}
	return NotFound
}
