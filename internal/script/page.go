package script

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/pkg/render"
	"github.com/vango-dev/webdsl/pkg/site"
)

// Page is a site page recorded by a script file.
type Page struct {
	name string
	path string
	host *Host
}

// NewPage returns the page for the script at path. The page name is the
// script path relative to root without its extension.
func NewPage(host *Host, root, path string) (*Page, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, errors.Newf("E102", "script %s is not under %s", path, root).Wrap(err)
	}
	return &Page{
		name: site.PageName(filepath.ToSlash(rel)),
		path: path,
		host: host,
	}, nil
}

// Pages returns one page per script path.
func Pages(host *Host, root string, paths []string) ([]site.Page, error) {
	pages := make([]site.Page, 0, len(paths))
	for _, p := range paths {
		page, err := NewPage(host, root, p)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Name implements site.Page.
func (p *Page) Name() string { return p.name }

// Path returns the script file path.
func (p *Page) Path() string { return p.path }

// ClientRuntime reports the runtime event handlers of script pages are
// written for.
func (p *Page) ClientRuntime() *render.ClientRuntime { return &render.JavaScript }

// Record implements site.Page by running the script.
func (p *Page) Record(ctx context.Context, sc *site.Context) error {
	src, err := os.ReadFile(p.path)
	if err != nil {
		return errors.Newf("E201", "reading %s", p.path).Wrap(err)
	}
	return p.host.Run(ctx, p.path, string(src), sc)
}
