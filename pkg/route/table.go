// Package route implements the ordered route table and path matching.
//
// A Table holds compiled routes in precedence order and answers Find
// queries. For a fixed table, Find is a pure function of the path, which
// makes results safe to memoize; the table keeps a small LRU cache of
// recent lookups that is purged whenever the table changes.
package route

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/routekit-dev/routekit/pkg/pattern"
)

// Route is a single registered route. Immutable after registration.
type Route struct {
	// Pattern is the compiled URL pattern.
	Pattern *pattern.Compiled

	// Component is the opaque componentRef token the view binding resolves
	// at render time. The table never interprets it.
	Component string

	// Exact marks the route as exact-match for precedence purposes.
	Exact bool

	// seq is the registration order, used as the final precedence tiebreak.
	seq int
}

// Match pairs a route with the parameter values extracted from a path.
type Match struct {
	Route  *Route
	Params map[string]string
}

// Param returns the named parameter value, or "" when absent.
func (m *Match) Param(name string) string {
	if m == nil {
		return ""
	}
	return m.Params[name]
}

// DefaultCacheSize is the default capacity of the Find memoization cache.
const DefaultCacheSize = 512

// Table is an ordered, de-duplicated set of routes.
//
// The table is owned by a single router instance and is not safe for
// concurrent mutation; the embedded lookup cache is itself thread-safe.
type Table struct {
	routes  []*Route
	nextSeq int
	strict  bool
	cache   *lru.Cache[string, *Match]
}

// TableOption configures a Table.
type TableOption func(*tableConfig)

type tableConfig struct {
	cacheSize      int
	strictTrailing bool
}

// WithCacheSize sets the Find cache capacity. Zero disables caching.
func WithCacheSize(n int) TableOption {
	return func(c *tableConfig) {
		c.cacheSize = n
	}
}

// WithStrictTrailing compiles all patterns in strict trailing-slash mode.
func WithStrictTrailing() TableOption {
	return func(c *tableConfig) {
		c.strictTrailing = true
	}
}

// NewTable creates an empty route table.
func NewTable(opts ...TableOption) *Table {
	cfg := tableConfig{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Table{strict: cfg.strictTrailing}
	if cfg.cacheSize > 0 {
		// New only fails for non-positive sizes.
		t.cache, _ = lru.New[string, *Match](cfg.cacheSize)
	}
	return t
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	exact bool
}

// WithExact flags the route as exact, giving it top matching precedence.
func WithExact() RegisterOption {
	return func(c *registerConfig) {
		c.exact = true
	}
}

// Register compiles the pattern and adds it to the table.
//
// Registering a pattern that is already present replaces the existing entry
// in place: its position in the precedence order and its registration rank
// are preserved.
func (t *Table) Register(pat, component string, opts ...RegisterOption) error {
	var cfg registerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var compileOpts []pattern.Option
	if t.strict {
		compileOpts = append(compileOpts, pattern.WithStrictTrailing())
	}
	compiled, err := pattern.Compile(pat, compileOpts...)
	if err != nil {
		return fmt.Errorf("route: register %q: %w", pat, err)
	}

	t.purge()

	// In-place replacement keeps the original seq, so the precedence sort
	// leaves the entry where it was.
	for i, existing := range t.routes {
		if existing.Pattern.String() == compiled.String() {
			t.routes[i] = &Route{
				Pattern:   compiled,
				Component: component,
				Exact:     cfg.exact,
				seq:       existing.seq,
			}
			t.sortRoutes()
			return nil
		}
	}

	t.routes = append(t.routes, &Route{
		Pattern:   compiled,
		Component: component,
		Exact:     cfg.exact,
		seq:       t.nextSeq,
	})
	t.nextSeq++
	t.sortRoutes()
	return nil
}

// sortRoutes orders the table most specific first: exact entries, then more
// segments, then fewer dynamic segments, then earlier registration.
func (t *Table) sortRoutes() {
	sort.SliceStable(t.routes, func(i, j int) bool {
		a, b := t.routes[i], t.routes[j]
		if a.Exact != b.Exact {
			return a.Exact
		}
		if a.Pattern.NumSegments() != b.Pattern.NumSegments() {
			return a.Pattern.NumSegments() > b.Pattern.NumSegments()
		}
		if a.Pattern.NumDynamic() != b.Pattern.NumDynamic() {
			return a.Pattern.NumDynamic() < b.Pattern.NumDynamic()
		}
		return a.seq < b.seq
	})
}

// Find returns the highest-precedence route matching the path, with
// percent-decoded parameters, or nil/false when no route matches or the
// path is not a valid pathname.
//
// Every call gets its own Match; mutating its Params cannot leak into
// later lookups.
func (t *Table) Find(path string) (*Match, bool) {
	if t.cache != nil {
		if m, ok := t.cache.Get(path); ok {
			return copyMatch(m), m != nil
		}
	}

	m := t.find(path)
	if t.cache != nil {
		t.cache.Add(path, m)
	}
	return copyMatch(m), m != nil
}

func copyMatch(m *Match) *Match {
	if m == nil {
		return nil
	}
	params := make(map[string]string, len(m.Params))
	for k, v := range m.Params {
		params[k] = v
	}
	return &Match{Route: m.Route, Params: params}
}

func (t *Table) find(path string) *Match {
	canonical, err := CanonicalizePath(path)
	if err != nil {
		return nil
	}
	segments, err := decodeSegments(canonical)
	if err != nil {
		return nil
	}
	decoded := "/" + strings.Join(segments, "/")
	// Canonicalization strips the trailing slash; in strict mode it is
	// significant, so restore it for the matchers.
	if t.strict && len(path) > 1 && strings.HasSuffix(path, "/") && len(decoded) > 1 {
		decoded += "/"
	}

	for _, r := range t.routes {
		caps, ok := r.Pattern.Match(decoded)
		if !ok {
			continue
		}
		names := r.Pattern.ParamNames()
		params := make(map[string]string, len(names))
		for i, name := range names {
			params[name] = caps[i]
		}
		return &Match{Route: r, Params: params}
	}
	return nil
}

// Routes returns the routes in precedence order. The returned slice is a
// snapshot; entries are shared and must not be modified.
func (t *Table) Routes() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.routes)
}

func (t *Table) purge() {
	if t.cache != nil {
		t.cache.Purge()
	}
}
