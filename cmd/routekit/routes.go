package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/routekit-dev/routekit/internal/errors"
	"github.com/routekit-dev/routekit/pkg/pattern"
	"github.com/routekit-dev/routekit/pkg/route"
)

const defaultRoutesFile = "routekit.routes"

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect and validate route manifests",
		Long: `Work with route manifest files.

A manifest declares one route per line:

  PATTERN COMPONENT [exact]

Lines starting with # are comments. Example:

  /              home        exact
  /users/:id     user-profile
  *              not-found`,
	}

	cmd.AddCommand(routesListCmd(), routesCheckCmd())
	return cmd
}

func routesListCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List routes in matching precedence order",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, diags, err := loadManifest(file)
			if err != nil {
				return err
			}
			if failed := reportDiagnostics(diags); failed {
				return fmt.Errorf("manifest has errors")
			}

			table := route.NewTable()
			for _, d := range defs {
				var opts []route.RegisterOption
				if d.exact {
					opts = append(opts, route.WithExact())
				}
				if err := table.Register(d.pattern, d.component, opts...); err != nil {
					return err
				}
			}

			fmt.Printf("%-30s %-24s %-8s %s\n", "PATTERN", "COMPONENT", "EXACT", "PARAMS")
			for _, r := range table.Routes() {
				exact := ""
				if r.Exact {
					exact = "yes"
				}
				fmt.Printf("%-30s %-24s %-8s %s\n",
					r.Pattern.String(), r.Component, exact, strings.Join(r.Pattern.ParamNames(), ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "routes", "r", defaultRoutesFile, "Routes manifest file")
	return cmd
}

func routesCheckCmd() *cobra.Command {
	var (
		file    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a route manifest",
		Long: `Validate a route manifest.

Errors (bad patterns, missing components) fail the check. Warnings
(duplicate patterns, missing catch-all) are reported but pass.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, diags, err := loadManifest(file)
			if err != nil {
				return err
			}

			if jsonOut {
				failed := false
				for _, d := range diags {
					fmt.Println(d.FormatJSON())
					if d.Severity != errors.SeverityWarning {
						failed = true
					}
				}
				if failed {
					return fmt.Errorf("manifest has errors")
				}
				return nil
			}

			if failed := reportDiagnostics(diags); failed {
				return fmt.Errorf("manifest has errors")
			}
			success("%s is valid", file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "routes", "r", defaultRoutesFile, "Routes manifest file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit diagnostics as JSON")
	return cmd
}

type manifestDef struct {
	pattern   string
	component string
	exact     bool
	line      int
}

// loadManifest parses the manifest and collects diagnostics. I/O
// failures return an error; content problems become diagnostics.
func loadManifest(file string) ([]manifestDef, []*errors.Diagnostic, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, errors.FromError(err, "X001").
			WithSuggestion(fmt.Sprintf("Create %s or pass --routes", file))
	}
	defer f.Close()

	var (
		defs  []manifestDef
		diags []*errors.Diagnostic
		seen  = map[string]int{}
	)

	scanner := bufio.NewScanner(f)
	lineNum := 0
	hasCatchAll := false
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 || (len(fields) == 3 && fields[2] != "exact") {
			diags = append(diags, errors.New("X002").
				WithDetail(fmt.Sprintf("Line %d: %q", lineNum, line)).
				WithExample("/users/:id user-profile"))
			continue
		}

		def := manifestDef{
			pattern:   fields[0],
			component: fields[1],
			exact:     len(fields) == 3,
			line:      lineNum,
		}

		compiled, err := pattern.Compile(def.pattern)
		if err != nil {
			diags = append(diags, patternDiagnostic(def.pattern, err))
			continue
		}
		if compiled.HasWildcard() {
			hasCatchAll = true
		}

		canonical := compiled.String()
		if prev, ok := seen[canonical]; ok {
			diags = append(diags, errors.New("R101").
				WithPattern(def.pattern, 0).
				WithDetail(fmt.Sprintf("Line %d repeats the pattern from line %d.", lineNum, prev)))
		}
		seen[canonical] = lineNum

		defs = append(defs, def)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.FromError(err, "X001")
	}

	if len(defs) == 0 {
		diags = append(diags, errors.New("C001"))
	} else if !hasCatchAll {
		diags = append(diags, errors.New("R103").
			WithExample("* not-found"))
	}

	return defs, diags, nil
}

// patternDiagnostic maps a compile failure to a coded diagnostic.
func patternDiagnostic(pat string, err error) *errors.Diagnostic {
	msg := err.Error()
	var d *errors.Diagnostic
	switch {
	case strings.Contains(msg, "must begin with /"):
		d = errors.New("R001").WithPattern(pat, 1).
			WithSuggestion(fmt.Sprintf("Did you mean %q?", "/"+pat))
	case strings.Contains(msg, "after wildcard"):
		d = errors.New("R002").WithPattern(pat, strings.Index(pat, "*")+1).
			WithSuggestion("Move the wildcard to the final segment")
	case strings.Contains(msg, "twice"):
		d = errors.New("R003").WithPattern(pat, 0)
	case strings.Contains(msg, "parameter name"):
		d = errors.New("R004").WithPattern(pat, strings.Index(pat, ":")+1)
	case strings.Contains(msg, "consecutive slashes"):
		d = errors.New("R005").WithPattern(pat, strings.Index(pat, "//")+2)
	default:
		d = errors.Newf(errors.CategoryPattern, "Invalid pattern").WithPattern(pat, 0)
	}
	return d.Wrap(err)
}

// reportDiagnostics prints every diagnostic and reports whether any is
// an error.
func reportDiagnostics(diags []*errors.Diagnostic) (failed bool) {
	for _, d := range diags {
		errors.PrintDiagnostic(d)
		if d.Severity != errors.SeverityWarning {
			failed = true
		}
	}
	return failed
}
