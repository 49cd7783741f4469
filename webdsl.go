// Package webdsl builds static sites from Go page functions.
//
// Each page records its document through an element builder and its styles
// through a shared sheet; Build compiles every page into markup and the site
// into one stylesheet.
//
//	s := webdsl.New(webdsl.WithTitle("My Site"))
//	s.Page("index", func(ctx context.Context, sc *site.Context) error {
//	    if err := sc.CSS.Rule("h1", style.Pairs{"color", "navy"}); err != nil {
//	        return err
//	    }
//	    return sc.HTML.Within("body", func() error {
//	        _, err := sc.HTML.Create("h1", "Hello")
//	        return err
//	    })
//	})
//	if _, err := s.WriteTo(ctx, "build"); err != nil {
//	    log.Fatal(err)
//	}
package webdsl

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/webdsl/internal/build"
	"github.com/vango-dev/webdsl/internal/publish"
	"github.com/vango-dev/webdsl/pkg/render"
	"github.com/vango-dev/webdsl/pkg/site"
)

// PageFunc records one page.
type PageFunc func(ctx context.Context, sc *site.Context) error

// Result is the output of a build.
type Result = build.Result

// Option configures a Site.
type Option func(*build.Options)

// WithLogger sets the build logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *build.Options) { o.Logger = logger }
}

// WithRuntime renders every page for rt. By default pages use Brython.
func WithRuntime(rt render.ClientRuntime) Option {
	return func(o *build.Options) { o.Runtime = &rt }
}

// WithTitle sets the document title of every page.
func WithTitle(title string) Option {
	return func(o *build.Options) { o.Title = title }
}

// WithWorkers records up to n pages in parallel.
func WithWorkers(n int) Option {
	return func(o *build.Options) { o.Workers = n }
}

// WithRegistry registers the build metrics on reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *build.Options) { o.Registerer = reg }
}

// WithVerify checks the generated output after every build.
func WithVerify() Option {
	return func(o *build.Options) { o.Verify = true }
}

// Site is a set of pages built together. Builds of one Site must not run
// concurrently.
type Site struct {
	options build.Options
	pages   []site.Page
	builder *build.Builder
}

// New creates an empty site.
func New(opts ...Option) *Site {
	s := &Site{}
	for _, opt := range opts {
		opt(&s.options)
	}
	s.builder = build.New(s.options)
	return s
}

// Page adds a page. name is the page path without extension, e.g.
// "contact/form".
func (s *Site) Page(name string, fn PageFunc) *Site {
	s.pages = append(s.pages, site.NewPage(name, fn))
	return s
}

// Build records and renders every page.
func (s *Site) Build(ctx context.Context) (*Result, error) {
	return s.builder.Build(ctx, s.pages)
}

// WriteTo builds the site and writes it to dir together with the output
// manifest.
func (s *Site) WriteTo(ctx context.Context, dir string) (*Result, error) {
	result, err := s.Build(ctx)
	if err != nil {
		return result, err
	}
	sink := publish.NewDirSink(dir)
	if err := publish.Publish(ctx, sink, result.Files()); err != nil {
		return result, err
	}
	return result, build.WriteManifest(ctx, sink, result)
}
