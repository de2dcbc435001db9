package binding

import (
	"testing"

	"github.com/routekit-dev/routekit/pkg/history"
	"github.com/routekit-dev/routekit/pkg/router"
)

type fakeComponent struct {
	name string
}

func newBinding(t *testing.T) (*Binding, *router.Router) {
	t.Helper()
	r, err := router.New(router.Config{
		History: history.NewMemory("/"),
		Routes: []router.RouteDef{
			{Pattern: "/", Component: "home"},
			{Pattern: "/users/:id", Component: "user"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	reg.Register("home", &fakeComponent{name: "home"})
	reg.Register("user", &fakeComponent{name: "user"})
	return New(r, reg), r
}

func TestCurrentComponent(t *testing.T) {
	b, _ := newBinding(t)

	c, ok := b.CurrentComponent().(*fakeComponent)
	if !ok || c.name != "home" {
		t.Fatalf("CurrentComponent() = %v, want home component", b.CurrentComponent())
	}

	if err := b.Navigate("/users/42"); err != nil {
		t.Fatal(err)
	}
	c, ok = b.CurrentComponent().(*fakeComponent)
	if !ok || c.name != "user" {
		t.Fatalf("CurrentComponent() = %v, want user component", b.CurrentComponent())
	}
}

func TestCurrentComponentNotFoundSentinel(t *testing.T) {
	b, _ := newBinding(t)

	if err := b.Navigate("/nope"); err != nil {
		t.Fatal(err)
	}
	if got := b.CurrentComponent(); got != NotFound {
		t.Errorf("CurrentComponent() = %v, want NotFound sentinel", got)
	}
}

func TestCurrentComponentCustomNotFound(t *testing.T) {
	b, _ := newBinding(t)
	custom := &fakeComponent{name: "404"}
	b.Registry().SetNotFound(custom)

	if err := b.Navigate("/nope"); err != nil {
		t.Fatal(err)
	}
	if got := b.CurrentComponent(); got != custom {
		t.Errorf("CurrentComponent() = %v, want custom not-found", got)
	}
}

func TestUnregisteredComponentRefIsNotFound(t *testing.T) {
	b, r := newBinding(t)
	if err := r.Table().Register("/ghost", "ghost"); err != nil {
		t.Fatal(err)
	}

	if err := b.Navigate("/ghost"); err != nil {
		t.Fatal(err)
	}
	if got := b.CurrentComponent(); got != NotFound {
		t.Errorf("CurrentComponent() = %v, want NotFound for unregistered ref", got)
	}
}

func TestAccessors(t *testing.T) {
	b, _ := newBinding(t)

	if err := b.Navigate("/users/42?tab=info"); err != nil {
		t.Fatal(err)
	}

	if got := b.Location().Pathname; got != "/users/42" {
		t.Errorf("Location().Pathname = %q", got)
	}
	if got := b.Location().Query; got != "?tab=info" {
		t.Errorf("Location().Query = %q", got)
	}
	if got := b.Param("id"); got != "42" {
		t.Errorf("Param(id) = %q, want 42", got)
	}
	if got := b.Params()["id"]; got != "42" {
		t.Errorf("Params()[id] = %q, want 42", got)
	}
	if !b.IsActive("/users", false) {
		t.Error("IsActive(/users, prefix) = false, want true")
	}
}

func TestSubscribersObserveSameState(t *testing.T) {
	b, _ := newBinding(t)

	var fromCallback, fromAccessor string
	unsub := b.Subscribe(func(s *router.State) {
		fromCallback = s.Location.Pathname
		fromAccessor = b.Location().Pathname
	})
	defer unsub()

	if err := b.Navigate("/users/1"); err != nil {
		t.Fatal(err)
	}
	if fromCallback != fromAccessor {
		t.Errorf("callback saw %q, accessor saw %q", fromCallback, fromAccessor)
	}
}
