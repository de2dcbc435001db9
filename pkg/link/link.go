// Package link decides whether an activation event on an anchor becomes an
// in-app navigation or falls through to the host URL surface.
//
// The DOM side of this policy lives in the embedded thin client; this
// package is the canonical rule set, shared by the bridge (which receives
// activation events over the wire) and by headless hosts.
package link

import (
	"github.com/routekit-dev/routekit/pkg/router"
)

// PrimaryButton is the button value of a primary activation (left mouse
// button, or the Enter-key equivalent).
const PrimaryButton = 0

// Activation describes a link activation event as reported by the host.
type Activation struct {
	// Href is the link target as path+query+fragment. Only meaningful
	// when SameOrigin is true.
	Href string

	// Button identifies the activating button; PrimaryButton intercepts.
	Button int

	// Modifier keys active during the activation.
	MetaKey  bool
	CtrlKey  bool
	ShiftKey bool
	AltKey   bool

	// DefaultPrevented reports that an upstream handler already
	// suppressed the default action.
	DefaultPrevented bool

	// SameOrigin reports that the target's authority matches the current
	// document's, so interception is safe and reversible.
	SameOrigin bool

	// Target is the anchor's target attribute. Anything other than ""
	// or "_self" addresses another browsing context.
	Target string

	// Download is set when the anchor requests a download.
	Download bool
}

// ShouldIntercept reports whether the activation translates into an in-app
// navigation. All conditions must hold; otherwise the host handles the
// activation normally.
func ShouldIntercept(a Activation) bool {
	if a.Button != PrimaryButton {
		return false
	}
	if a.MetaKey || a.CtrlKey || a.ShiftKey || a.AltKey {
		return false
	}
	if a.DefaultPrevented || a.Download {
		return false
	}
	if !a.SameOrigin {
		return false
	}
	if a.Target != "" && a.Target != "_self" {
		return false
	}
	return true
}

// Activate applies the policy: when the activation qualifies, it navigates
// the router to the link target and reports true (the caller must then
// suppress the default host navigation). Otherwise it reports false and
// does nothing.
func Activate(r *router.Router, a Activation) (intercepted bool, err error) {
	if !ShouldIntercept(a) {
		return false, nil
	}
	return true, r.Navigate(a.Href)
}

// Attrs returns the anchor attributes that mark a link for client-side
// navigation. The thin client intercepts anchors carrying data-link.
func Attrs(href string) map[string]string {
	return map[string]string{
		"href":      href,
		"data-link": "true",
	}
}

// ActiveAttrs is Attrs plus an active class when href is active for the
// router's current location.
func ActiveAttrs(r *router.Router, href, activeClass string, exact bool) map[string]string {
	attrs := Attrs(href)
	if r.IsActive(href, exact) {
		attrs["class"] = activeClass
	}
	return attrs
}
