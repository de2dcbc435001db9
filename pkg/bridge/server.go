package bridge

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/routekit-dev/routekit/pkg/diag"
	"github.com/routekit-dev/routekit/pkg/router"
)

// Config configures the bridge server. Routes is required; everything
// else has a usable default.
type Config struct {
	// Routes is the route table installed in every session's router.
	Routes []router.RouteDef

	// BeforeNavigate is the optional navigation guard, shared by all
	// sessions.
	BeforeNavigate router.Hook

	// Reporter receives subscriber panics and deferred-navigation
	// failures. Defaults to a diag.LogReporter on Logger.
	Reporter diag.Reporter

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// StrictTrailing makes "/users" and "/users/" distinct paths.
	StrictTrailing bool

	// AllowedOrigins restricts websocket upgrades by Origin header.
	// Empty means same-host only; "*" allows any origin.
	AllowedOrigins []string

	// MaxSessions caps live sessions; the oldest is evicted beyond it.
	MaxSessions int

	// HandshakeTimeout bounds the wait for the hello frame.
	HandshakeTimeout time.Duration

	// ReadTimeout is the idle deadline, refreshed by pongs and frames.
	ReadTimeout time.Duration

	// WriteTimeout bounds each outbound write.
	WriteTimeout time.Duration

	// PingInterval is the keepalive ping cadence.
	PingInterval time.Duration

	// Clock is swappable for tests. Defaults to the real clock.
	Clock clock.Clock
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Reporter == nil {
		c.Reporter = diag.NewLogReporter(c.Logger)
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 1024
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return c
}

// Server upgrades websocket connections and runs one router per browser
// tab. It implements http.Handler for the websocket endpoint.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	sessions *sessionManager
}

// NewServer validates the config and builds the server.
func NewServer(cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()

	sessions, err := newSessionManager(cfg.MaxSessions)
	if err != nil {
		return nil, err
	}

	srv := &Server{cfg: cfg, sessions: sessions}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     srv.checkOrigin,
	}
	return srv, nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		return equalHost(origin, r.Host)
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the connection and runs the session loop until the
// socket closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	id, err := newSessionID()
	if err != nil {
		s.cfg.Logger.Error("session id generation failed", "error", err)
		_ = conn.Close()
		return
	}

	sess := newSession(id, conn, s)
	s.sessions.add(sess)
	s.cfg.Logger.Debug("session opened", "session", id, "remote", r.RemoteAddr)
	sess.run()
}

// SessionCount reports the number of live sessions.
func (s *Server) SessionCount() int {
	return s.sessions.len()
}

// Session looks up a live session by id.
func (s *Server) Session(id string) (*Session, bool) {
	return s.sessions.get(id)
}

// Each visits every live session, for server-initiated navigation or
// broadcast.
func (s *Server) Each(fn func(*Session)) {
	s.sessions.each(fn)
}

// Close shuts down every live session.
func (s *Server) Close() {
	s.sessions.each(func(sess *Session) {
		sess.Close()
	})
}

func equalHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
