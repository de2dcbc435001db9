package routekit

import (
	"log/slog"
	"time"

	"github.com/routekit-dev/routekit/pkg/diag"
	"github.com/routekit-dev/routekit/pkg/router"
)

// Config is the main application configuration. This is the user-facing
// entry point for configuring a routekit app.
type Config struct {
	// Routes declares the route table. Precedence follows specificity,
	// not declaration order, so routes can be listed in any order.
	Routes []router.RouteDef

	// BeforeNavigate is the optional navigation guard applied to every
	// session. Return Allow, Deny, or Redirect.
	BeforeNavigate router.Hook

	// Shell configures the HTML document served for every page request.
	Shell ShellConfig

	// Static configures static file serving.
	Static StaticConfig

	// Bridge configures the websocket history bridge.
	Bridge BridgeConfig

	// StrictTrailing makes "/users" and "/users/" distinct paths.
	// Default: trailing slashes are equivalent.
	StrictTrailing bool

	// DevMode relaxes origin checks and disables client caching.
	// Never enable in production.
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Reporter receives subscriber panics and deferred-navigation
	// failures. If nil, failures are logged through Logger.
	Reporter diag.Reporter
}

// ShellConfig configures the served HTML document.
type ShellConfig struct {
	// Title is the document title. Default: "routekit app".
	Title string

	// Head is raw HTML injected before </head>, for stylesheets and
	// meta tags.
	Head string

	// Body is raw HTML injected inside <body> before the client script.
	// Typically the mount point markup.
	Body string
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory containing static files (e.g., "public").
	// Empty disables static serving.
	Dir string

	// Prefix is the URL path prefix for static files. Default: "/".
	Prefix string
}

// BridgeConfig configures the websocket history bridge endpoints.
type BridgeConfig struct {
	// AllowedOrigins restricts websocket upgrades by Origin header.
	// Empty means same-host only; "*" allows any origin. DevMode
	// implies "*".
	AllowedOrigins []string

	// MaxSessions caps concurrently connected tabs. Default: 1024.
	MaxSessions int

	// HandshakeTimeout bounds the wait for the client's first frame.
	// Default: 10s.
	HandshakeTimeout time.Duration

	// ReadTimeout is the idle connection deadline. Default: 60s.
	ReadTimeout time.Duration

	// WriteTimeout bounds each outbound write. Default: 10s.
	WriteTimeout time.Duration

	// PingInterval is the keepalive cadence. Default: 25s.
	PingInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Shell:  DefaultShellConfig(),
		Static: DefaultStaticConfig(),
		Bridge: DefaultBridgeConfig(),
	}
}

// DefaultShellConfig returns a ShellConfig with sensible defaults.
func DefaultShellConfig() ShellConfig {
	return ShellConfig{Title: "routekit app"}
}

// DefaultStaticConfig returns a StaticConfig with sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{Prefix: "/"}
}

// DefaultBridgeConfig returns a BridgeConfig with sensible defaults.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		MaxSessions:      1024,
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     25 * time.Second,
	}
}
