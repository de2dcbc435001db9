// Package routekit is a server-driven single-page-application router.
//
// The route table, matching, and navigation policy live on the server; a
// thin embedded JavaScript client mirrors the browser's history surface
// over a websocket. Applications declare routes as patterns mapped to
// componentRefs and react to state frames on the client, or embed the
// router packages directly for headless use.
//
//	app, err := routekit.New(routekit.Config{
//	    Routes: []router.RouteDef{
//	        {Pattern: "/", Component: "home"},
//	        {Pattern: "/users/:id", Component: "user-profile"},
//	        {Pattern: "*", Component: "not-found"},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", app)
package routekit

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/routekit-dev/routekit/pkg/bridge"
	"github.com/routekit-dev/routekit/pkg/route"
	"github.com/routekit-dev/routekit/pkg/router"
)

// Paths under which the framework claims the URL space. Everything else
// is static files or the SPA shell.
const (
	ClientPath = "/_routekit/client.js"
	SocketPath = "/_routekit/ws"
)

// App is the application entry point. It wraps the bridge server, shell
// rendering, and static file serving into a single http.Handler.
type App struct {
	config Config
	logger *slog.Logger
	bridge *bridge.Server
	table  *route.Table
	shell  []byte
}

// New validates the configuration, compiles the route table, and builds
// the app. Invalid route patterns fail here, not at request time.
func New(cfg Config) (*App, error) {
	if cfg.Shell.Title == "" {
		cfg.Shell.Title = DefaultShellConfig().Title
	}
	if cfg.Static.Prefix == "" {
		cfg.Static.Prefix = "/"
	}
	def := DefaultBridgeConfig()
	if cfg.Bridge.MaxSessions <= 0 {
		cfg.Bridge.MaxSessions = def.MaxSessions
	}
	if cfg.Bridge.HandshakeTimeout <= 0 {
		cfg.Bridge.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.Bridge.ReadTimeout <= 0 {
		cfg.Bridge.ReadTimeout = def.ReadTimeout
	}
	if cfg.Bridge.WriteTimeout <= 0 {
		cfg.Bridge.WriteTimeout = def.WriteTimeout
	}
	if cfg.Bridge.PingInterval <= 0 {
		cfg.Bridge.PingInterval = def.PingInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Compile eagerly so a bad pattern is a startup error.
	var tableOpts []route.TableOption
	if cfg.StrictTrailing {
		tableOpts = append(tableOpts, route.WithStrictTrailing())
	}
	table := route.NewTable(tableOpts...)
	for _, rd := range cfg.Routes {
		var regOpts []route.RegisterOption
		if rd.Exact {
			regOpts = append(regOpts, route.WithExact())
		}
		if err := table.Register(rd.Pattern, rd.Component, regOpts...); err != nil {
			return nil, fmt.Errorf("routekit: route %q: %w", rd.Pattern, err)
		}
	}

	origins := cfg.Bridge.AllowedOrigins
	if cfg.DevMode && len(origins) == 0 {
		origins = []string{"*"}
	}

	br, err := bridge.NewServer(bridge.Config{
		Routes:           cfg.Routes,
		BeforeNavigate:   cfg.BeforeNavigate,
		Reporter:         cfg.Reporter,
		Logger:           logger,
		StrictTrailing:   cfg.StrictTrailing,
		AllowedOrigins:   origins,
		MaxSessions:      cfg.Bridge.MaxSessions,
		HandshakeTimeout: cfg.Bridge.HandshakeTimeout,
		ReadTimeout:      cfg.Bridge.ReadTimeout,
		WriteTimeout:     cfg.Bridge.WriteTimeout,
		PingInterval:     cfg.Bridge.PingInterval,
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		logger: logger,
		bridge: br,
		table:  table,
	}
	app.shell = renderShell(cfg.Shell)
	return app, nil
}

// ServeHTTP dispatches framework endpoints, static files, and the shell.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case SocketPath:
		a.bridge.ServeHTTP(w, r)
		return
	case ClientPath:
		a.serveClient(w, r)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if a.serveStatic(w, r) {
		return
	}
	a.serveShell(w, r)
}

// serveStatic serves a file under Static.Dir if one exists for the
// request path. Returns false to fall through to the shell.
func (a *App) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if a.config.Static.Dir == "" {
		return false
	}
	rel, ok := strings.CutPrefix(r.URL.Path, a.config.Static.Prefix)
	if !ok {
		return false
	}
	rel = path.Clean("/" + rel)

	full := filepath.Join(a.config.Static.Dir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeFile(w, r, full)
	return true
}

// serveShell sends the SPA document. The route is resolved client side
// from the state frames, so every path gets the same document; paths
// with no matching route still get the shell and render the not-found
// component there.
func (a *App) serveShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if a.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(a.shell)
	}
}

// Bridge exposes the underlying websocket server, for server-initiated
// navigation across live sessions.
func (a *App) Bridge() *bridge.Server {
	return a.bridge
}

// Table exposes the compiled route table, for manifest listing and
// matching outside a session.
func (a *App) Table() *route.Table {
	return a.table
}

// Routes returns the declared route definitions.
func (a *App) Routes() []router.RouteDef {
	return append([]router.RouteDef(nil), a.config.Routes...)
}

// Close shuts down all live bridge sessions.
func (a *App) Close() {
	a.bridge.Close()
}
