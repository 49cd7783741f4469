package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Name       string
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Example    string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Recording Errors (E101-E199)
	// ============================================

	"E101": {
		Name:       "TypeMismatch",
		Category:   CategoryStyle,
		Message:    "Declarations must be a mapping",
		Detail:     "A style rule or keyframe stage was given a value that is not a mapping of property names to values.",
		Suggestion: "Pass style.Pairs, a map[string]string or an ordered map of declarations.",
		Example:    "sheet.Rule(\"h1\", style.Pairs{\"color\", \"red\"})",
	},
	"E102": {
		Name:       "InvalidArgument",
		Category:   CategoryTree,
		Message:    "Invalid element argument",
		Detail:     "An element was created with an argument the tree builder does not accept.",
		Suggestion: "Pass at most one leading text string followed by attributes. Bind event handlers with dom.Func.",
		Example:    "b.Create(\"button\", \"Go\", dom.A(\"onclick\", dom.Func(\"go\", \"def go(ev): pass\")))",
	},
	"E103": {
		Name:       "SourceUnavailable",
		Category:   CategoryRender,
		Message:    "Callback source unavailable",
		Detail:     "The source text of an event callback could not be recovered, so it was left out of the page script.",
		Suggestion: "Give the callback its source with dom.Func(name, source).",
	},
	"E104": {
		Name:     "StackInvariantViolation",
		Category: CategoryInternal,
		Message:  "Element scope closed out of order",
		Detail:   "A scope was closed while it was not the innermost open element, or with no element open.",
	},

	// ============================================
	// Build Errors (E201-E299)
	// ============================================

	"E201": {
		Name:       "ScriptFailed",
		Category:   CategoryScript,
		Message:    "Page script failed",
		Detail:     "The page script raised an exception while recording the document.",
		Suggestion: "Fix the script at the reported location and rebuild.",
	},
	"E202": {
		Name:       "ScriptTimeout",
		Category:   CategoryScript,
		Message:    "Page script timed out",
		Detail:     "The page script did not finish before the configured timeout or the build was cancelled.",
		Suggestion: "Look for unbounded loops, or raise scriptTimeout in webdsl.yaml.",
	},
	"E203": {
		Name:       "NoPages",
		Category:   CategoryBuild,
		Message:    "No pages to build",
		Detail:     "The page directory contains no page scripts.",
		Suggestion: "Add a .js page to the pages directory, or point the build at another directory.",
	},

	// ============================================
	// Configuration Errors (E301-E399)
	// ============================================

	"E301": {
		Name:       "ConfigInvalid",
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Detail:     "webdsl.yaml could not be parsed or contains an invalid value.",
		Suggestion: "Check the reported field in webdsl.yaml.",
	},
	"E302": {
		Name:     "ConfigNotFound",
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No webdsl.yaml, webdsl.yml or webdsl.json was found. Defaults are used.",
	},

	// ============================================
	// Output Errors (E401-E599)
	// ============================================

	"E401": {
		Name:       "PublishFailed",
		Category:   CategoryPublish,
		Message:    "Publishing failed",
		Detail:     "A generated file could not be written to the publishing target.",
		Suggestion: "Check credentials and connectivity for the configured target.",
	},
	"E501": {
		Name:       "VerifyFailed",
		Category:   CategoryVerify,
		Message:    "Output verification failed",
		Detail:     "The generated markup or stylesheet does not match what was recorded.",
		Suggestion: "Run `webdsl verify` for the list of findings.",
	},
}

// Registry sentinels. Use with errors.Is: any error created from the same
// code matches.
var (
	ErrTypeMismatch            = New("E101")
	ErrInvalidArgument         = New("E102")
	ErrSourceUnavailable       = New("E103")
	ErrStackInvariantViolation = New("E104")
	ErrScriptFailed            = New("E201")
	ErrScriptTimeout           = New("E202")
	ErrNoPages                 = New("E203")
	ErrConfigInvalid           = New("E301")
	ErrConfigNotFound          = New("E302")
	ErrPublishFailed           = New("E401")
	ErrVerifyFailed            = New("E501")
)

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
