package history

import "fmt"

// Memory is an in-process history host. It keeps the full entry stack, so
// tests and headless embeddings can simulate back/forward navigation the
// way a browser would.
type Memory struct {
	entries     []Entry
	index       int
	listener    Listener
	listenerGen int

	maxEntries int

	// Coalescing: while a delivery (or a Batch) is in flight, later
	// external events only overwrite pending; the listener sees the
	// latest entry once the current delivery returns.
	delivering bool
	batching   bool
	pending    *Entry
}

// MemoryOption configures a Memory host.
type MemoryOption func(*Memory)

// WithMaxEntries bounds the entry stack. A push beyond the limit is
// refused with ErrNavigationRejected, mimicking host storage limits.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		m.maxEntries = n
	}
}

// NewMemory creates a memory host whose initial entry is the given URL
// (path+query+fragment, starting at "/"). An unparsable initial URL falls
// back to "/".
func NewMemory(initial string, opts ...MemoryOption) *Memory {
	loc, err := Parse(initial)
	if err != nil {
		loc = Location{Pathname: "/"}
	}
	m := &Memory{entries: []Entry{{Location: loc}}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Read returns the current entry.
func (m *Memory) Read() Entry {
	return m.entries[m.index]
}

// Write pushes or replaces the current entry. A push truncates any forward
// entries, exactly like browser history.
func (m *Memory) Write(loc Location, opts WriteOptions) error {
	entry := Entry{Location: loc, State: opts.State}

	if opts.Replace {
		m.entries[m.index] = entry
		return nil
	}

	if m.maxEntries > 0 && m.index+1 >= m.maxEntries {
		return fmt.Errorf("%w: entry limit %d reached", ErrNavigationRejected, m.maxEntries)
	}

	m.entries = append(m.entries[:m.index+1], entry)
	m.index++
	return nil
}

// OnExternalNavigation registers the listener, replacing any previous one.
// An unsubscribe handle goes inert once a later registration supersedes it,
// so it can never remove a listener it did not install.
func (m *Memory) OnExternalNavigation(l Listener) func() {
	m.listenerGen++
	gen := m.listenerGen
	m.listener = l
	return func() {
		if m.listenerGen == gen {
			m.listener = nil
		}
	}
}

// Back moves one entry back, delivering an external navigation. At the
// oldest entry it is a no-op, like the browser ignoring an impossible back.
func (m *Memory) Back() {
	if m.index == 0 {
		return
	}
	m.index--
	m.deliver(m.entries[m.index])
}

// Forward moves one entry forward, delivering an external navigation.
func (m *Memory) Forward() {
	if m.index >= len(m.entries)-1 {
		return
	}
	m.index++
	m.deliver(m.entries[m.index])
}

// Batch coalesces all external navigations triggered inside fn into a
// single listener call carrying the final entry. This models several host
// events arriving in the same tick.
func (m *Memory) Batch(fn func()) {
	if m.batching {
		fn()
		return
	}
	m.batching = true
	fn()
	m.batching = false

	if m.pending != nil {
		entry := *m.pending
		m.pending = nil
		m.deliver(entry)
	}
}

// Len returns the number of entries on the stack.
func (m *Memory) Len() int {
	return len(m.entries)
}

func (m *Memory) deliver(entry Entry) {
	if m.listener == nil {
		return
	}
	if m.batching || m.delivering {
		m.pending = &Entry{Location: entry.Location, State: entry.State}
		return
	}

	m.delivering = true
	m.listener(entry)
	// Events that arrived while the listener ran collapse to the latest.
	for m.pending != nil {
		next := *m.pending
		m.pending = nil
		m.listener(next)
	}
	m.delivering = false
}
