// Package verify re-reads generated pages and stylesheets and reports
// inconsistencies between them.
package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/pkg/style"
)

// Finding is one problem in the generated output.
type Finding struct {
	File    string
	Message string
}

func (f Finding) String() string {
	return f.File + ": " + f.Message
}

// Options configures the checks.
type Options struct {
	// Globals are function names provided by included runtime scripts,
	// e.g. "brython". Bindings to them need no declaration.
	Globals []string
}

// Page is one generated document.
type Page struct {
	File   string
	Markup string
}

// callPattern matches an event attribute that calls a named function.
var callPattern = regexp.MustCompile(`^\s*([A-Za-z_$][\w$]*)\(\)\s*;?\s*$`)

// Markup checks one document: every on*="name()" binding must name a
// function declared in an inline script or listed in opts.Globals, and the
// document must link exactly one stylesheet.
func Markup(p Page, opts Options) []Finding {
	doc, err := htmlquery.Parse(strings.NewReader(p.Markup))
	if err != nil {
		return []Finding{{File: p.File, Message: fmt.Sprintf("markup does not parse: %v", err)}}
	}

	var findings []Finding
	add := func(format string, args ...any) {
		findings = append(findings, Finding{File: p.File, Message: fmt.Sprintf(format, args...)})
	}

	var inline strings.Builder
	for _, s := range htmlquery.Find(doc, "//script[not(@src)]") {
		inline.WriteString(htmlquery.InnerText(s))
		inline.WriteByte('\n')
	}
	scripts := inline.String()

	known := make(map[string]bool, len(opts.Globals))
	for _, g := range opts.Globals {
		known[g] = true
	}

	for _, n := range htmlquery.Find(doc, "//*") {
		for _, a := range n.Attr {
			if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
				continue
			}
			m := callPattern.FindStringSubmatch(a.Val)
			if m == nil {
				continue
			}
			name := m[1]
			if known[name] || declared(scripts, name) {
				continue
			}
			add("<%s %s=%q> calls %s, which no script declares", n.Data, a.Key, a.Val, name)
		}
	}

	links := stylesheetLinks(doc)
	if len(links) != 1 {
		add("found %d stylesheet links, want 1", len(links))
	}
	return findings
}

func stylesheetLinks(doc *html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range htmlquery.Find(doc, "//link[@rel]") {
		for _, rel := range strings.Fields(strings.ToLower(htmlquery.SelectAttr(n, "rel"))) {
			if rel == "stylesheet" {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// declared reports whether src declares a function called name, in Python
// (def name) or JavaScript (function name, var/let/const name =).
func declared(src, name string) bool {
	q := regexp.QuoteMeta(name)
	re := regexp.MustCompile(`(?m)(?:\bdef\s+` + q + `\s*\(|\bfunction\s*\*?\s*` + q + `\s*\(|\b(?:var|let|const)\s+` + q + `\s*=)`)
	return re.MatchString(src)
}

// Stylesheet checks that text holds exactly the rules and keyframes
// recorded in sheet.
func Stylesheet(file, text string, sheet *style.Sheet) []Finding {
	parsed, err := parser.Parse(text)
	if err != nil {
		return []Finding{{File: file, Message: fmt.Sprintf("stylesheet does not parse: %v", err)}}
	}

	rules, keyframes := 0, 0
	for _, r := range parsed.Rules {
		switch {
		case r.Kind == css.QualifiedRule:
			rules++
		case r.Kind == css.AtRule && strings.EqualFold(r.Name, "@keyframes"):
			keyframes++
		}
	}

	var findings []Finding
	if want := len(sheet.Rules()); rules != want {
		findings = append(findings, Finding{File: file, Message: fmt.Sprintf("%d rules, recorded %d", rules, want)})
	}
	if want := len(sheet.Animations()); keyframes != want {
		findings = append(findings, Finding{File: file, Message: fmt.Sprintf("%d keyframes blocks, recorded %d", keyframes, want)})
	}
	return findings
}

// Site checks every page and the site stylesheet.
func Site(pages []Page, stylesheetFile, stylesheet string, sheet *style.Sheet, opts Options) []Finding {
	var findings []Finding
	for _, p := range pages {
		findings = append(findings, Markup(p, opts)...)
	}
	if sheet != nil {
		findings = append(findings, Stylesheet(stylesheetFile, stylesheet, sheet)...)
	}
	return findings
}

// Err returns an ErrVerifyFailed error listing findings, or nil when there
// are none.
func Err(findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = f.String()
	}
	e := errors.Newf("E501", "%d problem(s) found", len(findings))
	e.Context = lines
	return e
}
