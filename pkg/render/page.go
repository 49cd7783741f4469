package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/webdsl/pkg/dom"
)

// PageData contains everything needed to render a complete page.
type PageData struct {
	// Document holds the recorded roots, rendered inside the body.
	Document *dom.Document

	// Scripts are the page's event callbacks in discovery order.
	Scripts []dom.Callback

	// StylesheetHref is the link to the site stylesheet. Empty omits the link.
	StylesheetHref string

	// Title overrides the renderer's title for this page.
	Title string

	// Lang sets the lang attribute of the html element when non-empty.
	Lang string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	r.diagnostics = nil

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if page.Lang != "" {
		if _, err := fmt.Fprintf(w, "<html lang=\"%s\">\n", escapeAttr(page.Lang)); err != nil {
			return err
		}
	} else if _, err := io.WriteString(w, "<html>\n"); err != nil {
		return err
	}

	if err := r.renderHead(w, page); err != nil {
		return err
	}

	var roots []*dom.Node
	if page.Document != nil {
		roots = page.Document.Roots
	}
	body := "  <body>\n"
	if boot := r.runtime.BootCall; boot != "" && !hasBootOnload(roots, boot) {
		body = fmt.Sprintf("  <body onload=\"%s\">\n", escapeAttr(boot))
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}

	for _, root := range roots {
		if err := r.renderNode(w, root, BaseDepth); err != nil {
			return err
		}
	}

	if err := r.renderScriptBlock(w, page.Scripts); err != nil {
		return err
	}

	_, err := io.WriteString(w, "  </body>\n</html>\n")
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	title := page.Title
	if title == "" {
		title = r.config.Title
	}

	var b strings.Builder
	b.WriteString("  <head>\n")
	b.WriteString("    <meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", escapeHTML(title))
	if page.StylesheetHref != "" {
		fmt.Fprintf(&b, "    <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(page.StylesheetHref))
	}
	for _, src := range r.runtime.Includes {
		fmt.Fprintf(&b, "    <script src=\"%s\"></script>\n", escapeAttr(src))
	}
	b.WriteString("  </head>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// renderScriptBlock emits the verbatim source of every callback. Callbacks
// whose source cannot be recovered are skipped and recorded as diagnostics.
func (r *Renderer) renderScriptBlock(w io.Writer, scripts []dom.Callback) error {
	if len(scripts) == 0 {
		return nil
	}

	var sources []string
	for _, cb := range scripts {
		src, err := r.config.Resolver(cb)
		if err != nil {
			r.diagnostics = append(r.diagnostics, Diagnostic{Callback: cb.Name(), Err: err})
			r.config.Logger.Warn("skipping event callback", "callback", cb.Name(), "error", err)
			continue
		}
		if r.runtime.Declare != nil {
			src = r.runtime.Declare(cb.Name(), src)
		}
		sources = append(sources, strings.TrimRight(src, " \t\r\n"))
	}

	var b strings.Builder
	b.WriteString("    <script")
	if r.runtime.ScriptType != "" {
		fmt.Fprintf(&b, " type=\"%s\"", r.runtime.ScriptType)
	}
	b.WriteString(">\n")
	if r.runtime.Prelude != "" {
		b.WriteString(r.runtime.Prelude)
		b.WriteString("\n\n")
	}
	for i, src := range sources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(src)
		b.WriteString("\n")
	}
	b.WriteString("</script>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// hasBootOnload reports whether a root body already boots the runtime.
func hasBootOnload(roots []*dom.Node, boot string) bool {
	for _, n := range roots {
		if n.Tag != "body" {
			continue
		}
		for _, a := range n.Attrs {
			if !strings.EqualFold(a.Key, "onload") {
				continue
			}
			if s, ok := a.Value.(string); ok && strings.Contains(s, boot) {
				return true
			}
		}
	}
	return false
}
