package bridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/routekit-dev/routekit/pkg/history"
)

// sessionHistory adapts a bridge session to the history.Adapter contract.
// The browser owns the real history stack; this adapter mirrors the
// current entry and forwards writes as push/replace frames. Reads and
// external deliveries happen on the session's frame loop, so the router
// observes them single-threaded.
type sessionHistory struct {
	sess *Session

	mu          sync.Mutex
	current     history.Entry
	listener    history.Listener
	listenerGen int
}

func newSessionHistory(sess *Session, initial history.Entry) *sessionHistory {
	return &sessionHistory{sess: sess, current: initial}
}

// Read returns the last entry reported by the browser or written by the
// router.
func (h *sessionHistory) Read() history.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Write forwards the new entry to the browser as a push or replace frame.
// A closed session rejects the write, which the router surfaces as a
// rejected navigation with state untouched.
func (h *sessionHistory) Write(loc history.Location, opts history.WriteOptions) error {
	typ := FramePush
	if opts.Replace {
		typ = FrameReplace
	}

	var raw json.RawMessage
	if opts.State != nil {
		data, err := json.Marshal(opts.State)
		if err != nil {
			return fmt.Errorf("%w: encode state: %v", history.ErrNavigationRejected, err)
		}
		raw = data
	}

	if err := h.sess.sendFrame(&Frame{Type: typ, URL: loc.String(), State: raw}); err != nil {
		return fmt.Errorf("%w: %v", history.ErrNavigationRejected, err)
	}

	h.mu.Lock()
	h.current = history.Entry{Location: loc, State: opts.State}
	h.mu.Unlock()
	return nil
}

// OnExternalNavigation registers the listener invoked for popstate frames.
// A superseded unsubscribe handle is inert.
func (h *sessionHistory) OnExternalNavigation(l history.Listener) func() {
	h.mu.Lock()
	h.listenerGen++
	gen := h.listenerGen
	h.listener = l
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		if h.listenerGen == gen {
			h.listener = nil
		}
		h.mu.Unlock()
	}
}

// deliverExternal records a browser-initiated entry and notifies the
// listener. Called from the session's frame loop only.
func (h *sessionHistory) deliverExternal(e history.Entry) {
	h.mu.Lock()
	h.current = e
	l := h.listener
	h.mu.Unlock()
	if l != nil {
		l(e)
	}
}
