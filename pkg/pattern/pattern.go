package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is the sentinel for all registration-time pattern
// failures. Errors returned by Compile wrap it, so callers can test with
// errors.Is while still seeing the specific reason in the message.
var ErrInvalidPattern = errors.New("pattern: invalid pattern")

// WildcardName is the parameter name under which a wildcard segment's
// capture is exposed.
const WildcardName = "wildcard"

// Compiled is an immutable compiled route pattern.
//
// A pattern is a "/"-separated string of segments:
//   - literal segments match byte-for-byte after per-segment decoding
//   - ":name" captures exactly one non-"/" run under "name"
//   - "*" captures the remaining path (possibly empty, possibly containing
//     "/") under WildcardName and must be the final segment
type Compiled struct {
	pattern     string
	re          *regexp.Regexp
	paramNames  []string
	numSegments int
	numDynamic  int
	hasWildcard bool
	strict      bool
}

// Option configures pattern compilation.
type Option func(*compileConfig)

type compileConfig struct {
	strictTrailing bool
}

// WithStrictTrailing makes the trailing slash significant: "/users/" and
// "/users" become distinct paths. The default is non-strict, where both
// match the same route.
func WithStrictTrailing() Option {
	return func(c *compileConfig) {
		c.strictTrailing = true
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compile turns a pattern string into an anchored matcher plus the
// parameter names in declaration order.
//
// The pattern must begin with "/", or be exactly "*" or "" (both read as
// catch-all-free root handling: "" is interpreted as "/", "*" as "/*").
func Compile(pat string, opts ...Option) (*Compiled, error) {
	var cfg compileConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	switch pat {
	case "":
		pat = "/"
	case "*":
		pat = "/*"
	}
	if !strings.HasPrefix(pat, "/") {
		return nil, fmt.Errorf("%w: %q must begin with /", ErrInvalidPattern, pat)
	}

	// Canonicalize the trailing slash away unless strict mode keeps it.
	canonical := pat
	if !cfg.strictTrailing && len(canonical) > 1 && strings.HasSuffix(canonical, "/") {
		canonical = strings.TrimSuffix(canonical, "/")
	}

	segments := strings.Split(canonical[1:], "/")
	if canonical == "/" {
		segments = nil
	}

	var (
		sb          strings.Builder
		paramNames  []string
		seen        = map[string]bool{}
		numDynamic  int
		hasWildcard bool
	)
	sb.WriteString("^")

	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: %q contains consecutive slashes", ErrInvalidPattern, pat)
		}
		if hasWildcard {
			return nil, fmt.Errorf("%w: %q has segments after wildcard", ErrInvalidPattern, pat)
		}

		switch {
		case seg == "*":
			if i != len(segments)-1 {
				return nil, fmt.Errorf("%w: %q has segments after wildcard", ErrInvalidPattern, pat)
			}
			if seen[WildcardName] {
				return nil, fmt.Errorf("%w: %q declares parameter %q twice", ErrInvalidPattern, pat, WildcardName)
			}
			seen[WildcardName] = true
			paramNames = append(paramNames, WildcardName)
			numDynamic++
			hasWildcard = true
			// The separating slash is optional so that "/docs/*" also
			// matches "/docs" with an empty capture.
			sb.WriteString("(?:/(.*))?")

		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: %q has an empty parameter name", ErrInvalidPattern, pat)
			}
			if !identRe.MatchString(name) {
				return nil, fmt.Errorf("%w: %q is not a valid parameter name", ErrInvalidPattern, name)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: %q declares parameter %q twice", ErrInvalidPattern, pat, name)
			}
			seen[name] = true
			paramNames = append(paramNames, name)
			numDynamic++
			sb.WriteString("/([^/]+)")

		default:
			sb.WriteString("/")
			sb.WriteString(regexp.QuoteMeta(seg))
		}
	}

	if len(segments) == 0 {
		sb.WriteString("/")
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pat, err)
	}

	return &Compiled{
		pattern:     canonical,
		re:          re,
		paramNames:  paramNames,
		numSegments: len(segments),
		numDynamic:  numDynamic,
		hasWildcard: hasWildcard,
		strict:      cfg.strictTrailing,
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for static
// route tables declared at program start.
func MustCompile(pat string, opts ...Option) *Compiled {
	c, err := Compile(pat, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Match tests path against the compiled pattern. On success it returns the
// captured segment values aligned with ParamNames and true. A wildcard
// capture may be empty.
func (c *Compiled) Match(path string) ([]string, bool) {
	if !c.strict && len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	m := c.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// String returns the canonical pattern. Compiling a pattern and formatting
// it back yields the original pattern modulo the canonicalized trailing
// slash.
func (c *Compiled) String() string {
	return c.pattern
}

// ParamNames returns the parameter names in declaration order. The returned
// slice must not be modified.
func (c *Compiled) ParamNames() []string {
	return c.paramNames
}

// NumSegments returns the number of segments in the pattern. "/" has zero.
func (c *Compiled) NumSegments() int {
	return c.numSegments
}

// NumDynamic returns how many segments are parameters or wildcards.
// Literal-heavy patterns report lower values and win precedence ties.
func (c *Compiled) NumDynamic() int {
	return c.numDynamic
}

// HasWildcard reports whether the pattern ends in a wildcard segment.
func (c *Compiled) HasWildcard() bool {
	return c.hasWildcard
}
