package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/routekit-dev/routekit"
	"github.com/routekit-dev/routekit/pkg/router"
)

func serveCmd() *cobra.Command {
	var (
		host      string
		port      int
		file      string
		staticDir string
		title     string
		devMode   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an app from a route manifest",
		Long: `Serve a routekit app.

Routes come from the manifest file; static assets come from the
static directory. Environment variables are loaded from .env when
present; ROUTEKIT_HOST and ROUTEKIT_PORT act as defaults for the
corresponding flags.

Examples:
  routekit serve
  routekit serve --routes=app.routes --static=public --port=8080
  routekit serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, file, staticDir, title, devMode)
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default $ROUTEKIT_HOST or 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default $ROUTEKIT_PORT or 8080)")
	cmd.Flags().StringVarP(&file, "routes", "r", defaultRoutesFile, "Routes manifest file")
	cmd.Flags().StringVar(&staticDir, "static", "", "Static files directory")
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Development mode (relaxed origins, no client caching)")

	return cmd
}

func runServe(host string, port int, file, staticDir, title string, devMode bool) error {
	// .env is optional; flags beat env, env beats defaults.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warn("could not load .env: %v", err)
	}
	if host == "" {
		host = os.Getenv("ROUTEKIT_HOST")
	}
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		fmt.Sscanf(os.Getenv("ROUTEKIT_PORT"), "%d", &port)
	}
	if port == 0 {
		port = 8080
	}

	defs, diags, err := loadManifest(file)
	if err != nil {
		return err
	}
	if failed := reportDiagnostics(diags); failed {
		return fmt.Errorf("manifest has errors")
	}

	routes := make([]router.RouteDef, 0, len(defs))
	for _, d := range defs {
		routes = append(routes, router.RouteDef{
			Pattern:   d.pattern,
			Component: d.component,
			Exact:     d.exact,
		})
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := routekit.DefaultConfig()
	cfg.Routes = routes
	cfg.Static.Dir = staticDir
	cfg.DevMode = devMode
	cfg.Logger = logger
	if title != "" {
		cfg.Shell.Title = title
	}

	app, err := routekit.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/", app)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	fmt.Println()
	info("routes:  %s (%d routes)", file, len(routes))
	if staticDir != "" {
		info("static:  %s", staticDir)
	}
	if devMode {
		warn("development mode: do not use in production")
	}
	success("listening on http://%s", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stop:
		fmt.Println()
		info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
