// Package urlstate provides typed query-string state on top of the
// router.
//
// The router treats query strings as opaque and never matches on them;
// views still want to keep ephemeral state (active tab, search text,
// filters) in the URL so it survives reloads and sharing. A Param binds
// one query key to a typed value with encode/decode and a history mode.
//
//	tab := urlstate.String("tab", "info")
//	tab.Get(b.Location())          // "info" or the value from ?tab=...
//	tab.Set(r, "activity")         // rewrites ?tab=activity in place
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/routekit-dev/routekit/pkg/history"
	"github.com/routekit-dev/routekit/pkg/router"
)

// Mode determines how a Set updates history.
type Mode int

const (
	// ModeReplace rewrites the current entry. The default: query-state
	// churn should not spam the back button.
	ModeReplace Mode = iota

	// ModePush adds a new history entry per update.
	ModePush
)

// Option configures a Param.
type Option func(*config)

type config struct {
	mode Mode
}

// WithMode sets the history mode for updates.
func WithMode(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// Param binds a query key to a typed value.
type Param[T any] struct {
	key     string
	initial T
	encode  func(T) string
	decode  func(string) (T, bool)
	mode    Mode
}

// String declares a string-valued query parameter.
func String(key, initial string, opts ...Option) *Param[string] {
	return newParam(key, initial,
		func(v string) string { return v },
		func(s string) (string, bool) { return s, true },
		opts)
}

// Int declares an integer-valued query parameter.
func Int(key string, initial int, opts ...Option) *Param[int] {
	return newParam(key, initial,
		strconv.Itoa,
		func(s string) (int, bool) {
			n, err := strconv.Atoi(s)
			return n, err == nil
		},
		opts)
}

// Bool declares a boolean query parameter.
func Bool(key string, initial bool, opts ...Option) *Param[bool] {
	return newParam(key, initial,
		strconv.FormatBool,
		func(s string) (bool, bool) {
			b, err := strconv.ParseBool(s)
			return b, err == nil
		},
		opts)
}

// Strings declares a comma-encoded string-slice parameter:
// ?tags=go,web,api.
func Strings(key string, initial []string, opts ...Option) *Param[[]string] {
	return newParam(key, initial,
		func(v []string) string { return strings.Join(v, ",") },
		func(s string) ([]string, bool) {
			if s == "" {
				return nil, true
			}
			return strings.Split(s, ","), true
		},
		opts)
}

func newParam[T any](key string, initial T, enc func(T) string, dec func(string) (T, bool), opts []Option) *Param[T] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Param[T]{
		key:     key,
		initial: initial,
		encode:  enc,
		decode:  dec,
		mode:    cfg.mode,
	}
}

// Get reads the parameter from a location's query string, falling back to
// the initial value when absent or undecodable.
func (p *Param[T]) Get(loc history.Location) T {
	values, err := url.ParseQuery(strings.TrimPrefix(loc.Query, "?"))
	if err != nil {
		return p.initial
	}
	if !values.Has(p.key) {
		return p.initial
	}
	v, ok := p.decode(values.Get(p.key))
	if !ok {
		return p.initial
	}
	return v
}

// Set writes the parameter into the router's current URL, preserving the
// pathname, the other query parameters and the fragment.
//
// Because the pathname does not change, the navigation is forced so
// subscribers still observe the update; ModeReplace keeps it out of the
// history stack.
func (p *Param[T]) Set(r *router.Router, value T) error {
	state := r.CurrentState()
	if state == nil {
		return router.ErrNotRunning
	}
	loc := state.Location

	values, err := url.ParseQuery(strings.TrimPrefix(loc.Query, "?"))
	if err != nil {
		values = url.Values{}
	}
	values.Set(p.key, p.encode(value))

	loc.Query = "?" + values.Encode()

	opts := []router.NavigateOption{router.WithForce()}
	if p.mode == ModeReplace {
		opts = append(opts, router.WithReplace())
	}
	return r.NavigateTo(loc, opts...)
}

// Clear removes the parameter from the router's current URL.
func (p *Param[T]) Clear(r *router.Router) error {
	state := r.CurrentState()
	if state == nil {
		return router.ErrNotRunning
	}
	loc := state.Location

	values, err := url.ParseQuery(strings.TrimPrefix(loc.Query, "?"))
	if err != nil {
		values = url.Values{}
	}
	values.Del(p.key)

	if encoded := values.Encode(); encoded != "" {
		loc.Query = "?" + encoded
	} else {
		loc.Query = ""
	}

	opts := []router.NavigateOption{router.WithForce()}
	if p.mode == ModeReplace {
		opts = append(opts, router.WithReplace())
	}
	return r.NavigateTo(loc, opts...)
}

// Key returns the query key this parameter binds.
func (p *Param[T]) Key() string {
	return p.key
}
