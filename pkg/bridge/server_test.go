package bridge

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/routekit-dev/routekit/pkg/router"
)

var testRoutes = []router.RouteDef{
	{Pattern: "/", Component: "home"},
	{Pattern: "/users/:id", Component: "user-profile"},
	{Pattern: "*", Component: "not-found"},
}

func dialTestServer(t *testing.T, cfg Config) (*Server, *websocket.Conn) {
	t.Helper()

	if cfg.Routes == nil {
		cfg.Routes = testRoutes
	}
	cfg.AllowedOrigins = []string{"*"}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return srv, conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, f *Frame) {
	t.Helper()
	data, err := EncodeFrame(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) *Frame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &f
}

func TestHandshakeDeliversInitialState(t *testing.T) {
	srv, conn := dialTestServer(t, Config{})

	sendFrame(t, conn, &Frame{Type: FrameHello, URL: "/users/42"})

	state := readFrame(t, conn)
	if state.Type != FrameState {
		t.Fatalf("type = %q, want state", state.Type)
	}
	if state.Component != "user-profile" {
		t.Errorf("component = %q, want user-profile", state.Component)
	}
	if got := state.Params["id"]; got != "42" {
		t.Errorf("params[id] = %q, want 42", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("session count = %d, want 1", srv.SessionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLinkActivationPushesAndNotifies(t *testing.T) {
	_, conn := dialTestServer(t, Config{})

	sendFrame(t, conn, &Frame{Type: FrameHello, URL: "/"})
	if f := readFrame(t, conn); f.Component != "home" {
		t.Fatalf("initial component = %q, want home", f.Component)
	}

	sendFrame(t, conn, &Frame{Type: FrameLink, Href: "/users/7", SameOrigin: true})

	push := readFrame(t, conn)
	if push.Type != FramePush {
		t.Fatalf("type = %q, want push", push.Type)
	}
	if push.URL != "/users/7" {
		t.Errorf("push url = %q, want /users/7", push.URL)
	}

	state := readFrame(t, conn)
	if state.Type != FrameState || state.Component != "user-profile" {
		t.Fatalf("got %q/%q, want state/user-profile", state.Type, state.Component)
	}
}

func TestModifiedClickIsNotIntercepted(t *testing.T) {
	_, conn := dialTestServer(t, Config{})

	sendFrame(t, conn, &Frame{Type: FrameHello, URL: "/"})
	readFrame(t, conn)

	sendFrame(t, conn, &Frame{Type: FrameLink, Href: "/users/7", SameOrigin: true, MetaKey: true})

	// The navigation must not happen; confirm the session is still
	// responsive and on the old path by navigating normally after.
	sendFrame(t, conn, &Frame{Type: FrameLink, Href: "/users/9", SameOrigin: true})

	push := readFrame(t, conn)
	if push.Type != FramePush || push.URL != "/users/9" {
		t.Fatalf("got %q %q, want push /users/9", push.Type, push.URL)
	}
}

func TestPopStateUpdatesStateWithoutPush(t *testing.T) {
	_, conn := dialTestServer(t, Config{})

	sendFrame(t, conn, &Frame{Type: FrameHello, URL: "/users/42"})
	readFrame(t, conn)

	sendFrame(t, conn, &Frame{Type: FramePopState, URL: "/"})

	state := readFrame(t, conn)
	if state.Type != FrameState {
		t.Fatalf("type = %q, want state", state.Type)
	}
	if state.Component != "home" {
		t.Errorf("component = %q, want home", state.Component)
	}
}

func TestDenyGuardSendsError(t *testing.T) {
	_, conn := dialTestServer(t, Config{
		BeforeNavigate: func(c router.Candidate) router.Decision {
			if c.Location.Pathname == "/users/7" {
				return router.Deny()
			}
			return router.Allow()
		},
	})

	sendFrame(t, conn, &Frame{Type: FrameHello, URL: "/"})
	readFrame(t, conn)

	sendFrame(t, conn, &Frame{Type: FrameLink, Href: "/users/7", SameOrigin: true})

	errFrame := readFrame(t, conn)
	if errFrame.Type != FrameError {
		t.Fatalf("type = %q, want error", errFrame.Type)
	}
	if errFrame.Message == "" {
		t.Error("expected error message")
	}
}

func TestBadFrameClosesSession(t *testing.T) {
	_, conn := dialTestServer(t, Config{})

	sendFrame(t, conn, &Frame{Type: FrameHello, URL: "/"})
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"warp"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to close")
	}
}

func TestSessionEviction(t *testing.T) {
	cfg := Config{MaxSessions: 2, Routes: testRoutes}
	cfg.AllowedOrigins = []string{"*"}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	for i := 0; i < 3; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		t.Cleanup(func() { conn.Close() })
		sendFrame(t, conn, &Frame{Type: FrameHello, URL: "/"})
		readFrame(t, conn)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() > 2 {
		if time.Now().After(deadline) {
			t.Fatalf("session count = %d, want <= 2", srv.SessionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
