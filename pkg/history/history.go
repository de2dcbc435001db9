// Package history abstracts the process-wide URL and history surface.
//
// The router core never touches the host directly; it reads the current
// entry, pushes or replaces entries, and receives external navigations
// (back/forward, host scripts) through the Adapter interface. Two
// implementations ship with routekit: Memory (tests and headless
// embedding) and the WebSocket browser bridge in pkg/bridge.
package history

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNavigationRejected is returned when the host refuses a URL write,
// for example because an entry limit was exceeded. The caller's state must
// not change when a write fails.
var ErrNavigationRejected = errors.New("history: navigation rejected by host")

// Location is the immutable {pathname, query, fragment} tuple describing a
// URL relative to origin. Pathname begins with "/"; Query is empty or
// begins with "?"; Fragment is empty or begins with "#".
type Location struct {
	Pathname string
	Query    string
	Fragment string
}

// Parse splits a path+query+fragment URL string into a Location.
// The input must start at "/" (full URLs with scheme or authority are
// rejected; the router only ever navigates within its own origin).
func Parse(target string) (Location, error) {
	if target == "" {
		return Location{}, fmt.Errorf("history: empty navigation target")
	}
	if strings.HasPrefix(target, "//") ||
		strings.Contains(target, "://") {
		return Location{}, fmt.Errorf("history: target %q is not origin-relative", target)
	}
	if !strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "?") && !strings.HasPrefix(target, "#") {
		return Location{}, fmt.Errorf("history: target %q must start at /", target)
	}

	rest := target
	var loc Location
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		loc.Fragment = rest[i:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		loc.Query = rest[i:]
		rest = rest[:i]
	}
	loc.Pathname = rest
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	return loc, nil
}

// String formats the location back into a path+query+fragment URL.
func (l Location) String() string {
	return l.Pathname + l.Query + l.Fragment
}

// Entry is a history entry: a location plus the opaque state value the
// caller associated with it. State is never interpreted by the router.
type Entry struct {
	Location Location
	State    any
}

// WriteOptions configures a history write.
type WriteOptions struct {
	// Replace replaces the current entry instead of pushing a new one.
	Replace bool

	// State is an opaque value stored with the entry and surfaced on
	// subsequent reads.
	State any
}

// Listener receives external navigations. Deliveries are coalesced: when
// several external events occur before the listener runs, it observes only
// the latest entry.
type Listener func(Entry)

// Adapter is the host URL/history surface.
//
// Only one listener is ever active: OnExternalNavigation is idempotent and
// a later registration replaces the earlier one. The returned handle
// removes the listener; calling it more than once is harmless.
type Adapter interface {
	// Read returns the current entry.
	Read() Entry

	// Write pushes or replaces an entry without a host-level reload. A
	// refused write returns an error wrapping ErrNavigationRejected and
	// leaves the host state untouched.
	Write(loc Location, opts WriteOptions) error

	// OnExternalNavigation registers the external-navigation listener.
	OnExternalNavigation(l Listener) (unsubscribe func())
}
