// Package errors provides structured, actionable diagnostics for the
// routekit CLI.
//
// Each diagnostic has a unique code (e.g., "R001") that maps to a short
// message, a detailed explanation, and a documentation URL. Diagnostics
// about route patterns carry the offending pattern and a column, which
// the terminal formatter renders with a caret:
//
//	err := errors.New("R002").
//	    WithPattern("/docs/*/edit", 7).
//	    WithSuggestion("Move the wildcard to the final segment")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R002: Wildcard must be the final segment
//	//
//	//   /docs/*/edit
//	//         ^
//	//
//	//   Hint: Move the wildcard to the final segment
//	//
//	//   Learn more: https://routekit.dev/docs/errors/R002
package errors
