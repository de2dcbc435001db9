package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┬ ┬┌┬┐┌─┐┬┌─┬┌┬┐
  ├┬┘│ ││ │ │ ├┤ ├┴┐│ │
  ┴└─└─┘└─┘ ┴ └─┘┴ ┴┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "routekit",
		Short: "Server-driven SPA routing for Go",
		Long: `Routekit runs a single-page application's router on the server.

Routes are declared as patterns mapped to componentRefs; a thin
JavaScript client mirrors the browser history surface over a
websocket. The CLI serves apps, validates route manifests, and
publishes client assets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		routesCmd(),
		publishCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the routekit ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
