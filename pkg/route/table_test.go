package route

import (
	"errors"
	"net/url"
	"testing"

	"github.com/routekit-dev/routekit/pkg/pattern"
)

func TestRegisterInvalidPattern(t *testing.T) {
	tbl := NewTable()

	err := tbl.Register("/a//b", "X")
	if err == nil {
		t.Fatal("expected error for /a//b")
	}
	if !errors.Is(err, pattern.ErrInvalidPattern) {
		t.Errorf("error = %v, want ErrInvalidPattern", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("table length = %d after failed registration, want 0", tbl.Len())
	}
}

func TestFindBasic(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/", "A")
	mustRegister(t, tbl, "/about", "B")

	m, ok := tbl.Find("/")
	if !ok || m.Route.Component != "A" {
		t.Fatalf("Find(/) = %+v, %v; want component A", m, ok)
	}

	m, ok = tbl.Find("/about")
	if !ok || m.Route.Component != "B" {
		t.Fatalf("Find(/about) = %+v, %v; want component B", m, ok)
	}

	if _, ok := tbl.Find("/nope"); ok {
		t.Error("Find(/nope) matched, want no match")
	}
}

func TestFindParamsDecoded(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/users/:id", "U")

	m, ok := tbl.Find("/users/42")
	if !ok {
		t.Fatal("expected match for /users/42")
	}
	if got := m.Param("id"); got != "42" {
		t.Errorf("id = %q, want %q", got, "42")
	}

	m, ok = tbl.Find("/users/jo%20anne")
	if !ok {
		t.Fatal("expected match for /users/jo%20anne")
	}
	if got := m.Param("id"); got != "jo anne" {
		t.Errorf("id = %q, want %q", got, "jo anne")
	}
}

func TestFindParamsRoundTrip(t *testing.T) {
	// Re-encoding a captured value yields the original segment, for
	// values without reserved delimiters.
	tbl := NewTable()
	mustRegister(t, tbl, "/users/:id", "U")

	for _, seg := range []string{"jo%20anne", "caf%C3%A9", "plain"} {
		m, ok := tbl.Find("/users/" + seg)
		if !ok {
			t.Fatalf("expected match for /users/%s", seg)
		}
		if got := url.PathEscape(m.Param("id")); got != seg {
			t.Errorf("re-encoded id = %q, want %q", got, seg)
		}
	}
}

func TestFindResultsAreIndependent(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/users/:id", "U")

	first, ok := tbl.Find("/users/42")
	if !ok {
		t.Fatal("expected match")
	}
	first.Params["id"] = "tampered"

	// The second lookup is a cache hit; the mutation must not show.
	second, ok := tbl.Find("/users/42")
	if !ok {
		t.Fatal("expected match")
	}
	if got := second.Param("id"); got != "42" {
		t.Errorf("id = %q, want %q after mutating an earlier result", got, "42")
	}
}

func TestFindRejectsEncodedSlash(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/users/:id", "U")

	if _, ok := tbl.Find("/users/a%2Fb"); ok {
		t.Error("encoded slash in a segment must not match")
	}
}

func TestPrecedenceLiteralOverParam(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/a/:x", "P")
	mustRegister(t, tbl, "/a/b", "L")

	m, _ := tbl.Find("/a/b")
	if m == nil || m.Route.Component != "L" {
		t.Errorf("Find(/a/b) = %+v, want literal route L", m)
	}

	m, _ = tbl.Find("/a/z")
	if m == nil || m.Route.Component != "P" {
		t.Errorf("Find(/a/z) = %+v, want param route P", m)
	}
}

func TestPrecedenceExactFirst(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/users/:id", "U")
	if err := tbl.Register("/users/new", "N", WithExact()); err != nil {
		t.Fatal(err)
	}

	m, _ := tbl.Find("/users/new")
	if m == nil || m.Route.Component != "N" {
		t.Errorf("Find(/users/new) = %+v, want exact route N", m)
	}

	m, _ = tbl.Find("/users/42")
	if m == nil || m.Route.Component != "U" {
		t.Errorf("Find(/users/42) = %+v, want param route U", m)
	}
}

func TestPrecedenceMoreSegmentsFirst(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/*", "W")
	mustRegister(t, tbl, "/docs/*", "D")

	m, _ := tbl.Find("/docs/a/b/c")
	if m == nil || m.Route.Component != "D" {
		t.Errorf("Find(/docs/a/b/c) = %+v, want D", m)
	}
	if got := m.Param(pattern.WildcardName); got != "a/b/c" {
		t.Errorf("wildcard = %q, want %q", got, "a/b/c")
	}

	m, _ = tbl.Find("/other")
	if m == nil || m.Route.Component != "W" {
		t.Errorf("Find(/other) = %+v, want W", m)
	}
}

func TestPrecedenceRegistrationOrderInvariance(t *testing.T) {
	// The same route set in two registration orders produces identical
	// Find results.
	patterns := []struct {
		pat  string
		comp string
	}{
		{"/a/:x", "P"},
		{"/a/b", "L"},
		{"/a/*", "W"},
	}

	forward := NewTable()
	for _, p := range patterns {
		mustRegister(t, forward, p.pat, p.comp)
	}
	reverse := NewTable()
	for i := len(patterns) - 1; i >= 0; i-- {
		mustRegister(t, reverse, patterns[i].pat, patterns[i].comp)
	}

	for _, path := range []string{"/a/b", "/a/z", "/a/b/c", "/a"} {
		mf, okf := forward.Find(path)
		mr, okr := reverse.Find(path)
		if okf != okr {
			t.Fatalf("Find(%q) ok mismatch: %v vs %v", path, okf, okr)
		}
		if okf && mf.Route.Component != mr.Route.Component {
			t.Errorf("Find(%q) component mismatch: %q vs %q",
				path, mf.Route.Component, mr.Route.Component)
		}
	}
}

func TestRegisterReplacesInPlace(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/users/:id", "U1")
	mustRegister(t, tbl, "/posts/:id", "P")
	mustRegister(t, tbl, "/users/:id", "U2")

	if tbl.Len() != 2 {
		t.Fatalf("table length = %d, want 2", tbl.Len())
	}

	m, _ := tbl.Find("/users/7")
	if m == nil || m.Route.Component != "U2" {
		t.Errorf("Find(/users/7) = %+v, want replaced component U2", m)
	}

	// Replacement keeps the original position.
	routes := tbl.Routes()
	if routes[0].Pattern.String() != "/users/:id" {
		t.Errorf("routes[0] = %q, want /users/:id", routes[0].Pattern.String())
	}
}

func TestFindCanonicalizesPath(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "/users/:id", "U")

	for _, path := range []string{"/users//42", "/users/./42", "/users/42/", "/a/../users/42"} {
		m, ok := tbl.Find(path)
		if !ok {
			t.Errorf("Find(%q) did not match", path)
			continue
		}
		if m.Param("id") != "42" {
			t.Errorf("Find(%q) id = %q, want 42", path, m.Param("id"))
		}
	}

	if _, ok := tbl.Find("/../etc/passwd"); ok {
		t.Error("path escaping root must not match")
	}
}

func TestFindCachePurgedOnRegister(t *testing.T) {
	tbl := NewTable(WithCacheSize(16))
	mustRegister(t, tbl, "/a", "A1")

	if m, _ := tbl.Find("/a"); m == nil || m.Route.Component != "A1" {
		t.Fatal("expected A1")
	}

	mustRegister(t, tbl, "/a", "A2")
	if m, _ := tbl.Find("/a"); m == nil || m.Route.Component != "A2" {
		t.Error("cache returned stale match after re-registration")
	}
}

func TestFindDeterministic(t *testing.T) {
	tbl := NewTable(WithCacheSize(0))
	mustRegister(t, tbl, "/a/:x", "P")
	mustRegister(t, tbl, "/a/b", "L")

	first, _ := tbl.Find("/a/b")
	for i := 0; i < 10; i++ {
		m, _ := tbl.Find("/a/b")
		if m.Route != first.Route {
			t.Fatal("Find is not deterministic")
		}
	}
}

func mustRegister(t *testing.T, tbl *Table, pat, comp string) {
	t.Helper()
	if err := tbl.Register(pat, comp); err != nil {
		t.Fatalf("Register(%q): %v", pat, err)
	}
}
