package history

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Location
		wantErr bool
	}{
		{"root", "/", Location{Pathname: "/"}, false},
		{"plain", "/users/42", Location{Pathname: "/users/42"}, false},
		{"query", "/users/42?tab=info", Location{Pathname: "/users/42", Query: "?tab=info"}, false},
		{"fragment", "/users/42#top", Location{Pathname: "/users/42", Fragment: "#top"}, false},
		{"full", "/users/42?tab=info#top", Location{Pathname: "/users/42", Query: "?tab=info", Fragment: "#top"}, false},
		{"query_only", "?q=1", Location{Pathname: "/", Query: "?q=1"}, false},
		{"empty", "", Location{}, true},
		{"scheme", "https://evil.test/x", Location{}, true},
		{"protocol_relative", "//evil.test/x", Location{}, true},
		{"relative", "users/42", Location{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	loc := Location{Pathname: "/users/42", Query: "?tab=info", Fragment: "#top"}
	if got := loc.String(); got != "/users/42?tab=info#top" {
		t.Errorf("String() = %q", got)
	}
}

func TestMemoryPushAndRead(t *testing.T) {
	m := NewMemory("/")

	if got := m.Read().Location.Pathname; got != "/" {
		t.Fatalf("initial pathname = %q, want /", got)
	}

	loc, _ := Parse("/about")
	if err := m.Write(loc, WriteOptions{State: "s1"}); err != nil {
		t.Fatal(err)
	}

	entry := m.Read()
	if entry.Location.Pathname != "/about" {
		t.Errorf("pathname = %q, want /about", entry.Location.Pathname)
	}
	if entry.State != "s1" {
		t.Errorf("state = %v, want s1", entry.State)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMemoryReplace(t *testing.T) {
	m := NewMemory("/")
	loc, _ := Parse("/about")

	if err := m.Write(loc, WriteOptions{Replace: true}); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d after replace, want 1", m.Len())
	}
	if m.Read().Location.Pathname != "/about" {
		t.Errorf("pathname = %q, want /about", m.Read().Location.Pathname)
	}
}

func TestMemoryRejectsAtLimit(t *testing.T) {
	m := NewMemory("/", WithMaxEntries(2))
	loc, _ := Parse("/a")
	if err := m.Write(loc, WriteOptions{}); err != nil {
		t.Fatal(err)
	}

	loc2, _ := Parse("/b")
	err := m.Write(loc2, WriteOptions{})
	if !errors.Is(err, ErrNavigationRejected) {
		t.Fatalf("error = %v, want ErrNavigationRejected", err)
	}
	// Host state must be untouched by the refused write.
	if m.Read().Location.Pathname != "/a" {
		t.Errorf("pathname = %q after refused write, want /a", m.Read().Location.Pathname)
	}
}

func TestMemoryBackForward(t *testing.T) {
	m := NewMemory("/")
	for _, p := range []string{"/about", "/users/1"} {
		loc, _ := Parse(p)
		if err := m.Write(loc, WriteOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	var seen []string
	m.OnExternalNavigation(func(e Entry) {
		seen = append(seen, e.Location.Pathname)
	})

	m.Back()
	m.Back()
	m.Forward()

	want := []string{"/about", "/", "/about"}
	if len(seen) != len(want) {
		t.Fatalf("deliveries = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("delivery[%d] = %q, want %q", i, seen[i], want[i])
		}
	}

	// Back at the oldest entry is a no-op.
	seen = nil
	m.Back()
	m.Back()
	m.Back()
	if len(seen) != 1 {
		t.Errorf("deliveries = %v, want exactly one", seen)
	}
}

func TestMemoryBatchCoalesces(t *testing.T) {
	m := NewMemory("/")
	for _, p := range []string{"/about", "/users/1"} {
		loc, _ := Parse(p)
		if err := m.Write(loc, WriteOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	var seen []string
	m.OnExternalNavigation(func(e Entry) {
		seen = append(seen, e.Location.Pathname)
	})

	// Rapid back-then-forward in the same tick coalesces into a single
	// delivery landing on the later URL.
	m.Batch(func() {
		m.Back()
		m.Forward()
	})

	if len(seen) != 1 || seen[0] != "/users/1" {
		t.Errorf("deliveries = %v, want [/users/1]", seen)
	}
}

func TestMemoryUnsubscribe(t *testing.T) {
	m := NewMemory("/")
	loc, _ := Parse("/a")
	if err := m.Write(loc, WriteOptions{}); err != nil {
		t.Fatal(err)
	}

	calls := 0
	unsub := m.OnExternalNavigation(func(Entry) { calls++ })
	unsub()
	unsub() // calling twice is harmless

	m.Back()
	if calls != 0 {
		t.Errorf("listener called %d times after unsubscribe", calls)
	}
}

func TestMemoryStaleUnsubscribeIsInert(t *testing.T) {
	m := NewMemory("/")
	loc, _ := Parse("/a")
	if err := m.Write(loc, WriteOptions{}); err != nil {
		t.Fatal(err)
	}

	oldCalls, newCalls := 0, 0
	oldUnsub := m.OnExternalNavigation(func(Entry) { oldCalls++ })
	m.OnExternalNavigation(func(Entry) { newCalls++ })

	// The replaced registration's handle must not remove its successor.
	oldUnsub()

	m.Back()
	if newCalls != 1 {
		t.Errorf("current listener called %d times, want 1", newCalls)
	}
	if oldCalls != 0 {
		t.Errorf("replaced listener called %d times, want 0", oldCalls)
	}
}

func TestMemoryPushTruncatesForward(t *testing.T) {
	m := NewMemory("/")
	for _, p := range []string{"/a", "/b"} {
		loc, _ := Parse(p)
		if err := m.Write(loc, WriteOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	m.OnExternalNavigation(func(Entry) {})
	m.Back()

	loc, _ := Parse("/c")
	if err := m.Write(loc, WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (forward entries truncated)", m.Len())
	}
	m.Forward() // nothing ahead
	if m.Read().Location.Pathname != "/c" {
		t.Errorf("pathname = %q, want /c", m.Read().Location.Pathname)
	}
}
