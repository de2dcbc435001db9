package errors

// template defines a registered diagnostic.
type template struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
	DocURL   string
}

// registry maps diagnostic codes to their templates.
var registry = map[string]template{
	// ============================================
	// Pattern diagnostics (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryPattern,
		Severity: SeverityError,
		Message:  "Pattern must start with a slash",
		Detail:   "Route patterns are absolute paths. Only the bare wildcard \"*\" and the empty pattern are accepted without a leading slash.",
		DocURL:   "https://routekit.dev/docs/errors/R001",
	},
	"R002": {
		Category: CategoryPattern,
		Severity: SeverityError,
		Message:  "Wildcard must be the final segment",
		Detail:   "A \"*\" segment captures the remainder of the path, so nothing can follow it.",
		DocURL:   "https://routekit.dev/docs/errors/R002",
	},
	"R003": {
		Category: CategoryPattern,
		Severity: SeverityError,
		Message:  "Duplicate parameter name",
		Detail:   "Each :name in a pattern must be unique so extracted parameters are unambiguous.",
		DocURL:   "https://routekit.dev/docs/errors/R003",
	},
	"R004": {
		Category: CategoryPattern,
		Severity: SeverityError,
		Message:  "Invalid parameter name",
		Detail:   "Parameter names must start with a letter or underscore and contain only letters, digits, and underscores.",
		DocURL:   "https://routekit.dev/docs/errors/R004",
	},
	"R005": {
		Category: CategoryPattern,
		Severity: SeverityError,
		Message:  "Empty path segment",
		Detail:   "Consecutive slashes produce an empty segment, which can never match.",
		DocURL:   "https://routekit.dev/docs/errors/R005",
	},

	// ============================================
	// Table diagnostics (R100-R199)
	// ============================================

	"R101": {
		Category: CategoryTable,
		Severity: SeverityWarning,
		Message:  "Duplicate pattern replaces earlier registration",
		Detail:   "Registering the same pattern twice replaces the earlier component in place. Only the last registration takes effect.",
		DocURL:   "https://routekit.dev/docs/errors/R101",
	},
	"R102": {
		Category: CategoryTable,
		Severity: SeverityWarning,
		Message:  "Route is shadowed by a more specific one",
		Detail:   "A route earlier in precedence order matches every path this route matches, so this route can never win.",
		DocURL:   "https://routekit.dev/docs/errors/R102",
	},
	"R103": {
		Category: CategoryTable,
		Severity: SeverityWarning,
		Message:  "No catch-all route declared",
		Detail:   "Without a \"*\" route, unmatched paths render the built-in not-found sentinel. Declare a catch-all to control that view.",
		DocURL:   "https://routekit.dev/docs/errors/R103",
	},

	// ============================================
	// Config diagnostics (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  "No routes declared",
		Detail:   "The route table is empty. Declare at least one route.",
		DocURL:   "https://routekit.dev/docs/errors/C001",
	},
	"C002": {
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  "Route has no component reference",
		Detail:   "Every route must name the componentRef the view layer resolves when the route matches.",
		DocURL:   "https://routekit.dev/docs/errors/C002",
	},

	// ============================================
	// CLI diagnostics (X001-X099)
	// ============================================

	"X001": {
		Category: CategoryCLI,
		Severity: SeverityError,
		Message:  "Routes file not found",
		Detail:   "The routes manifest could not be read. Pass the path with --routes or create routekit.routes in the working directory.",
		DocURL:   "https://routekit.dev/docs/errors/X001",
	},
	"X002": {
		Category: CategoryCLI,
		Severity: SeverityError,
		Message:  "Malformed routes file",
		Detail:   "Each non-empty line must be \"PATTERN COMPONENT\" with optional \"exact\" as a third field. Lines starting with # are comments.",
		DocURL:   "https://routekit.dev/docs/errors/X002",
	},
}
