package router

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/routekit-dev/routekit/pkg/diag"
	"github.com/routekit-dev/routekit/pkg/history"
	"github.com/routekit-dev/routekit/pkg/route"
)

// Sentinel errors for navigation and lifecycle failures.
var (
	// ErrNotRunning is returned when an operation requires a started,
	// non-stopped router.
	ErrNotRunning = errors.New("router: not running")

	// ErrAlreadyStarted is returned by Start on a running router.
	ErrAlreadyStarted = errors.New("router: already started")

	// ErrNavigationDenied is returned when a beforeNavigate hook denies
	// the navigation. No side effects have occurred.
	ErrNavigationDenied = errors.New("router: navigation denied")

	// ErrRedirectLoop is returned when beforeNavigate redirects exceed
	// MaxRedirects. The navigation is aborted, state unchanged.
	ErrRedirectLoop = errors.New("router: redirect loop")

	// ErrReentrancy is returned for unsupported re-entrant operations,
	// such as Start or Stop from inside a subscriber notification.
	ErrReentrancy = errors.New("router: unsupported re-entrant operation")
)

// MaxRedirects caps how often beforeNavigate may redirect a single
// navigation before it is aborted with ErrRedirectLoop.
const MaxRedirects = 5

// State is the RouterState: the current location, its match (nil when no
// route matched) and the opaque history state of the current entry.
// Replaced wholesale on every navigation, never mutated in place.
type State struct {
	Location     history.Location
	Match        *route.Match
	HistoryState any
}

// Candidate describes a navigation presented to beforeNavigate hooks.
type Candidate struct {
	// Location is the target of the navigation.
	Location history.Location

	// Replace reports whether the navigation replaces the current entry.
	Replace bool
}

// Decision is a beforeNavigate verdict.
type Decision struct {
	kind     decisionKind
	redirect string
}

type decisionKind int

const (
	decisionAllow decisionKind = iota
	decisionDeny
	decisionRedirect
)

// Allow lets the navigation proceed unchanged.
func Allow() Decision { return Decision{kind: decisionAllow} }

// Deny cancels the navigation without side effects.
func Deny() Decision { return Decision{kind: decisionDeny} }

// Redirect replaces the navigation target and restarts the pipeline.
func Redirect(target string) Decision {
	return Decision{kind: decisionRedirect, redirect: target}
}

// Hook is the beforeNavigate extension point, consulted synchronously
// before the history write.
type Hook func(c Candidate) Decision

// RouteDef declares a route at construction time.
type RouteDef struct {
	Pattern   string
	Component string
	Exact     bool
}

// Config configures a Router.
type Config struct {
	// History is the host URL surface. Required.
	History history.Adapter

	// Routes are compiled into the route table at construction.
	// Additional routes may be registered later through Table(); the
	// table keeps them in precedence order.
	Routes []RouteDef

	// BeforeNavigate is the optional navigation guard hook.
	BeforeNavigate Hook

	// Reporter receives subscriber failures and errors from deferred
	// navigations. Defaults to a slog-backed reporter.
	Reporter diag.Reporter

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// StrictTrailing makes the trailing slash significant in patterns
	// and paths. Default: "/users/" and "/users" match the same route.
	StrictTrailing bool
}

type status int

const (
	statusIdle status = iota
	statusRunning
	statusStopped
)

type subscription struct {
	id int
	fn func(*State)
}

// Router owns the current RouterState and drives the navigate pipeline.
// It is single-threaded: all methods must be called from the same
// goroutine that runs the history adapter's deliveries.
type Router struct {
	table    *route.Table
	hist     history.Adapter
	hook     Hook
	reporter diag.Reporter
	logger   *slog.Logger

	status status
	state  *State

	subs      []subscription
	nextSubID int

	notifying     bool
	queue         []queuedNavigation
	unsubExternal func()
}

type queuedNavigation struct {
	run func() error
}

// New creates a Router and compiles its initial route table.
func New(cfg Config) (*Router, error) {
	if cfg.History == nil {
		return nil, errors.New("router: Config.History is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = diag.NewLogReporter(logger)
	}

	var tableOpts []route.TableOption
	if cfg.StrictTrailing {
		tableOpts = append(tableOpts, route.WithStrictTrailing())
	}
	table := route.NewTable(tableOpts...)
	for _, def := range cfg.Routes {
		var opts []route.RegisterOption
		if def.Exact {
			opts = append(opts, route.WithExact())
		}
		if err := table.Register(def.Pattern, def.Component, opts...); err != nil {
			return nil, err
		}
	}

	return &Router{
		table:    table,
		hist:     cfg.History,
		hook:     cfg.BeforeNavigate,
		reporter: reporter,
		logger:   logger,
	}, nil
}

// Table exposes the route table for dynamic registration and inspection.
// Routes registered while running take part in subsequent matches; the
// current state is not recomputed.
func (r *Router) Table() *route.Table {
	return r.table
}

// Start reads the initial URL, computes the initial match and installs the
// external-navigation listener. A stopped router cannot be restarted.
func (r *Router) Start() error {
	if r.notifying {
		return ErrReentrancy
	}
	switch r.status {
	case statusRunning:
		return ErrAlreadyStarted
	case statusStopped:
		return ErrNotRunning
	}

	entry := r.hist.Read()
	r.state = r.buildState(entry)
	r.unsubExternal = r.hist.OnExternalNavigation(r.onExternal)
	r.status = statusRunning

	r.logger.Debug("router started", "pathname", r.state.Location.Pathname)
	return nil
}

// Stop tears the router down: the external listener is removed and all
// subscribers are cleared. Terminal.
func (r *Router) Stop() error {
	if r.notifying {
		return ErrReentrancy
	}
	if r.status != statusRunning {
		return ErrNotRunning
	}

	if r.unsubExternal != nil {
		r.unsubExternal()
		r.unsubExternal = nil
	}
	r.subs = nil
	r.queue = nil
	r.status = statusStopped
	return nil
}

// CurrentState returns the current RouterState. Nil before Start.
func (r *Router) CurrentState() *State {
	return r.state
}

// Subscribe registers a listener for state changes and returns its
// unsubscribe handle. Subscribers are notified synchronously in
// subscription order, each receiving the same *State.
func (r *Router) Subscribe(fn func(*State)) (unsubscribe func()) {
	id := r.nextSubID
	r.nextSubID++
	r.subs = append(r.subs, subscription{id: id, fn: fn})

	return func() {
		for i, s := range r.subs {
			if s.id == id {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

// NavigateOption configures a single navigation.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	replace bool
	force   bool
	state   any
}

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *navigateOptions) { o.replace = true }
}

// WithForce re-runs the pipeline even when the target pathname equals the
// current one.
func WithForce() NavigateOption {
	return func(o *navigateOptions) { o.force = true }
}

// WithState attaches an opaque state value to the new history entry.
func WithState(state any) NavigateOption {
	return func(o *navigateOptions) { o.state = state }
}

// Navigate performs a programmatic navigation to a path+query+fragment
// target starting at "/".
//
// A navigation to the current pathname without WithForce is a no-op: no
// subscriber runs and history is untouched. When called from inside a
// subscriber notification, the navigation is queued and executed after the
// notification completes; errors from deferred navigations go to the
// diagnostic reporter.
func (r *Router) Navigate(target string, opts ...NavigateOption) error {
	loc, err := history.Parse(target)
	if err != nil {
		return err
	}
	return r.NavigateTo(loc, opts...)
}

// NavigateTo is Navigate for a structured target location.
func (r *Router) NavigateTo(loc history.Location, opts ...NavigateOption) error {
	if r.status != statusRunning {
		return ErrNotRunning
	}

	var o navigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	canonical, err := route.CanonicalizePath(loc.Pathname)
	if err != nil {
		return err
	}
	loc.Pathname = canonical

	// Cancellation by idempotence.
	if !o.force && loc.Pathname == r.state.Location.Pathname {
		return nil
	}

	if r.notifying {
		r.queue = append(r.queue, queuedNavigation{run: func() error {
			return r.navigate(loc, o)
		}})
		return nil
	}
	return r.navigate(loc, o)
}

// navigate runs the pipeline: hooks, history write, state swap, notify.
func (r *Router) navigate(loc history.Location, o navigateOptions) error {
	// Re-checked here because a queued navigation may have become a no-op
	// by the time it runs.
	if !o.force && loc.Pathname == r.state.Location.Pathname {
		return nil
	}

	loc, err := r.consultHook(loc)
	if err != nil {
		return err
	}

	if err := r.hist.Write(loc, history.WriteOptions{Replace: o.replace, State: o.state}); err != nil {
		return err
	}

	r.state = r.buildState(history.Entry{Location: loc, State: o.state})
	r.notify()
	return nil
}

// consultHook runs beforeNavigate, following redirects up to MaxRedirects.
func (r *Router) consultHook(loc history.Location) (history.Location, error) {
	if r.hook == nil {
		return loc, nil
	}

	for redirects := 0; ; redirects++ {
		if redirects > MaxRedirects {
			return loc, ErrRedirectLoop
		}
		d := r.hook(Candidate{Location: loc})
		switch d.kind {
		case decisionAllow:
			return loc, nil
		case decisionDeny:
			return loc, ErrNavigationDenied
		case decisionRedirect:
			next, err := history.Parse(d.redirect)
			if err != nil {
				return loc, fmt.Errorf("router: redirect target: %w", err)
			}
			canonical, err := route.CanonicalizePath(next.Pathname)
			if err != nil {
				return loc, fmt.Errorf("router: redirect target: %w", err)
			}
			next.Pathname = canonical
			loc = next
		}
	}
}

// onExternal handles host-driven navigations (back/forward). The URL has
// already changed on the host side, so there is no write and no hook; the
// router recomputes its state and notifies.
func (r *Router) onExternal(entry history.Entry) {
	if r.status != statusRunning {
		return
	}

	canonical, err := route.CanonicalizePath(entry.Location.Pathname)
	if err != nil {
		r.reporter.ReportError("external-navigation", err)
		return
	}
	entry.Location.Pathname = canonical

	if r.notifying {
		r.queue = append(r.queue, queuedNavigation{run: func() error {
			r.state = r.buildState(entry)
			r.notify()
			return nil
		}})
		return
	}

	r.state = r.buildState(entry)
	r.notify()
}

// buildState computes the RouterState for an entry.
func (r *Router) buildState(entry history.Entry) *State {
	match, _ := r.table.Find(entry.Location.Pathname)
	return &State{
		Location:     entry.Location,
		Match:        match,
		HistoryState: entry.State,
	}
}

// notify calls every subscriber with the current state, then drains the
// re-entrancy queue in submission order. A panicking subscriber is
// reported and must not prevent the remaining subscribers from running.
func (r *Router) notify() {
	r.notifying = true

	state := r.state
	subs := make([]subscription, len(r.subs))
	copy(subs, r.subs)
	for _, s := range subs {
		r.callSubscriber(s, state)
	}

	r.notifying = false

	for len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		if err := next.run(); err != nil {
			r.reporter.ReportError("deferred-navigation", err)
		}
	}
}

func (r *Router) callSubscriber(s subscription, state *State) {
	defer func() {
		if rec := recover(); rec != nil {
			r.reporter.ReportPanic("subscriber", rec, debug.Stack())
		}
	}()
	s.fn(state)
}

// IsActive reports whether the given pathname is active for the current
// location. Exact compares full pathnames; non-exact is a segment-aligned
// prefix test, so "/users" is active for "/users/42" but not "/usersx".
func (r *Router) IsActive(pathname string, exact bool) bool {
	if r.state == nil {
		return false
	}
	canonical, err := route.CanonicalizePath(pathname)
	if err != nil {
		return false
	}
	current := r.state.Location.Pathname

	if exact || canonical == current {
		return canonical == current
	}
	if canonical == "/" {
		return true
	}
	return strings.HasPrefix(current, canonical+"/")
}
