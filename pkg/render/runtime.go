package render

import (
	"fmt"
	"strings"
)

// ClientRuntime describes the in-browser interpreter that runs the page's
// event callbacks.
type ClientRuntime struct {
	// Name identifies the runtime in configuration ("brython", "javascript").
	Name string

	// Includes are script URLs loaded in the document head.
	Includes []string

	// ScriptType is the type attribute of the callback script block.
	// Empty means a plain <script>.
	ScriptType string

	// Prelude is emitted at the top of the callback script block.
	Prelude string

	// BootCall is bound to the body's onload attribute, e.g. "brython()".
	BootCall string

	// Declare turns a callback's source into a top-level declaration.
	// nil emits the source unchanged.
	Declare func(name, source string) string
}

// Brython runs Python callbacks in the browser through Brython.
var Brython = ClientRuntime{
	Name: "brython",
	Includes: []string{
		"https://cdn.jsdelivr.net/npm/brython@3.11.2/brython.min.js",
		"https://cdn.jsdelivr.net/npm/brython@3.11.2/brython_stdlib.js",
	},
	ScriptType: "text/python",
	Prelude:    "from browser import document, alert, console",
	BootCall:   "brython()",
}

// JavaScript emits callbacks as plain browser JavaScript.
var JavaScript = ClientRuntime{
	Name:    "javascript",
	Declare: declareJS,
}

// declareJS keeps function declarations as they are and binds any other
// expression (arrow functions, function expressions) to a var named after
// the callback.
func declareJS(name, source string) string {
	src := strings.TrimSpace(source)
	for _, kw := range []string{"function", "async function"} {
		rest, ok := strings.CutPrefix(src, kw+" ")
		if !ok {
			continue
		}
		rest, ok = strings.CutPrefix(strings.TrimSpace(rest), name)
		if ok && strings.HasPrefix(strings.TrimSpace(rest), "(") {
			return src
		}
	}
	return fmt.Sprintf("var %s = %s;", name, strings.TrimSuffix(src, ";"))
}

// Runtimes lists the built-in runtimes by name.
var Runtimes = map[string]ClientRuntime{
	Brython.Name:    Brython,
	JavaScript.Name: JavaScript,
}

// RuntimeByName returns a built-in runtime.
func RuntimeByName(name string) (ClientRuntime, bool) {
	rt, ok := Runtimes[strings.ToLower(name)]
	return rt, ok
}
