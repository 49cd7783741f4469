// Package site holds the per-page build context handed to page authors.
package site

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/vango-dev/webdsl/pkg/dom"
	"github.com/vango-dev/webdsl/pkg/style"
)

// pageExtensions are stripped when a script or output file name is given
// where a page name is expected.
var pageExtensions = []string{".js", ".py", ".html", ".htm"}

// Context is the build context of one page. HTML is reset before every page;
// CSS is shared by all pages of a site build.
type Context struct {
	HTML   *dom.Builder
	CSS    *style.Sheet
	Page   string
	Logger *slog.Logger
}

// NewContext returns a context for page with a fresh builder and sheet.
func NewContext(page string) *Context {
	return &Context{
		HTML:   dom.NewBuilder(),
		CSS:    style.New(),
		Page:   PageName(page),
		Logger: slog.Default(),
	}
}

// URLFor returns a link from the current page to target. target may be a
// page name ("contact/form") or a script or output file name
// ("contact/form.js", "about.html"). Targets with a scheme or an absolute
// path are returned unchanged.
func (c *Context) URLFor(target string) string {
	if isExternal(target) {
		return target
	}
	return RelativeURL(c.Page, OutputPath(PageName(target)))
}

// StylesheetHref returns the link from the current page to the site
// stylesheet file.
func (c *Context) StylesheetHref(file string) string {
	if isExternal(file) {
		return file
	}
	return RelativeURL(c.Page, file)
}

// Page is a unit of the site that records one document.
type Page interface {
	Name() string
	Record(ctx context.Context, sc *Context) error
}

// PageFunc adapts a Go function into a Page.
type PageFunc struct {
	PageName string
	Fn       func(ctx context.Context, sc *Context) error
}

// Name returns the page name.
func (p PageFunc) Name() string { return PageName(p.PageName) }

// Record runs the page function.
func (p PageFunc) Record(ctx context.Context, sc *Context) error { return p.Fn(ctx, sc) }

// NewPage returns a Go page.
func NewPage(name string, fn func(ctx context.Context, sc *Context) error) Page {
	return PageFunc{PageName: name, Fn: fn}
}

// PageName normalizes a page or file name to a slash-separated,
// extension-less page name.
func PageName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	for _, ext := range pageExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// OutputPath returns the markup file path of a page.
func OutputPath(page string) string {
	return PageName(page) + ".html"
}

// RelativeURL returns the slash-separated path to target (relative to the
// site root) as seen from the directory of page.
func RelativeURL(page, target string) string {
	from := path.Dir(PageName(page))
	if from == "." {
		return target
	}
	fromParts := strings.Split(from, "/")
	toParts := strings.Split(target, "/")

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}
	var b strings.Builder
	for i := common; i < len(fromParts); i++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(toParts[common:], "/"))
	return b.String()
}

func isExternal(target string) bool {
	return strings.HasPrefix(target, "/") || strings.Contains(target, "://") ||
		strings.HasPrefix(target, "#") || strings.HasPrefix(target, "mailto:")
}
