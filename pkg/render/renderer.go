package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/pkg/dom"
)

// ErrSourceUnavailable matches diagnostics for callbacks whose source could
// not be recovered.
var ErrSourceUnavailable = errors.ErrSourceUnavailable

// BaseDepth is the indentation depth of document roots inside the page
// scaffold (html > body > roots).
const BaseDepth = 2

// DefaultTitle is the page title used when none is configured.
const DefaultTitle = "WebDSL"

// RendererConfig configures the markup renderer.
type RendererConfig struct {
	// Indent is the string used for each indentation level.
	// Defaults to two spaces if not specified.
	Indent string

	// Title is the document title. Defaults to DefaultTitle.
	Title string

	// Runtime is the client-side interpreter for event callbacks.
	// Defaults to Brython.
	Runtime *ClientRuntime

	// Resolver recovers callback source text. Defaults to dom.ResolveSource.
	Resolver dom.SourceResolver

	// Logger receives a warning for every skipped callback.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Diagnostic records a recoverable rendering problem.
type Diagnostic struct {
	Callback string
	Err      error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Callback, d.Err)
}

// Renderer turns a recorded document into indented markup. A Renderer is
// not safe for concurrent use.
type Renderer struct {
	config      RendererConfig
	runtime     ClientRuntime
	diagnostics []Diagnostic
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	if config.Title == "" {
		config.Title = DefaultTitle
	}
	if config.Resolver == nil {
		config.Resolver = dom.ResolveSource
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	rt := Brython
	if config.Runtime != nil {
		rt = *config.Runtime
	}
	return &Renderer{config: config, runtime: rt}
}

// Runtime returns the client runtime the renderer emits for.
func (r *Renderer) Runtime() ClientRuntime {
	return r.runtime
}

// Render renders a complete page for doc with its event callbacks and a
// stylesheet link to stylesheetHref.
func (r *Renderer) Render(doc *dom.Document, scripts []dom.Callback, stylesheetHref string) (string, error) {
	var buf bytes.Buffer
	err := r.RenderPage(&buf, PageData{
		Document:       doc,
		Scripts:        scripts,
		StylesheetHref: stylesheetHref,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderNode renders a single node and its subtree at the given depth.
func (r *Renderer) RenderNode(w io.Writer, node *dom.Node, depth int) error {
	return r.renderNode(w, node, depth)
}

// Diagnostics returns the problems recorded by the most recent render.
func (r *Renderer) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), r.diagnostics...)
}

// renderNode renders an element. Elements without children render on one
// line; elements with children render the open tag, an optional text line,
// one line per child and the close tag.
func (r *Renderer) renderNode(w io.Writer, node *dom.Node, depth int) error {
	if node == nil {
		return nil
	}
	pad := strings.Repeat(r.config.Indent, depth)
	attrs := renderAttributes(node)

	if len(node.Children) == 0 {
		if node.Text == "" && isVoidElement(node.Tag) {
			_, err := fmt.Fprintf(w, "%s<%s%s>\n", pad, node.Tag, attrs)
			return err
		}
		_, err := fmt.Fprintf(w, "%s<%s%s>%s</%s>\n", pad, node.Tag, attrs, escapeHTML(node.Text), node.Tag)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s<%s%s>\n", pad, node.Tag, attrs); err != nil {
		return err
	}
	if node.Text != "" {
		if _, err := fmt.Fprintf(w, "%s%s%s\n", pad, r.config.Indent, escapeHTML(node.Text)); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s</%s>\n", pad, node.Tag)
	return err
}

// renderAttributes renders structural attributes followed by event bindings.
func renderAttributes(node *dom.Node) string {
	var b strings.Builder
	for _, a := range node.Attrs {
		switch v := a.Value.(type) {
		case nil:
			continue
		case bool:
			if v {
				b.WriteString(" ")
				b.WriteString(a.Key)
			}
			continue
		}
		fmt.Fprintf(&b, ` %s="%s"`, a.Key, escapeAttr(attrToString(a.Value)))
	}
	for _, e := range node.Events {
		fmt.Fprintf(&b, ` %s="%s()"`, e.Event, escapeAttr(e.Callback.Name()))
	}
	return b.String()
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
