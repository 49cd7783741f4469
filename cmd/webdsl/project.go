package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/webdsl/internal/build"
	"github.com/vango-dev/webdsl/internal/config"
	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/internal/logging"
	"github.com/vango-dev/webdsl/internal/script"
	"github.com/vango-dev/webdsl/pkg/render"
	"github.com/vango-dev/webdsl/pkg/site"
)

// project is a loaded site project.
type project struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
}

// openProject loads the configuration of the project containing dir, or
// the --config file when given.
func openProject(dir string) (*project, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.LoadOrDefault(dir)
	}
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.New("E301").WithDetail(err.Error())
	}
	return &project{
		cfg:      cfg,
		logger:   logging.New(level, cfg.Log.Format, os.Stderr),
		registry: prometheus.NewRegistry(),
	}, nil
}

// host returns a script host bounded by the configured timeout.
func (p *project) host() *script.Host {
	return script.New(script.Options{Timeout: p.cfg.ScriptTimeout, Logger: p.logger})
}

// pages discovers the page scripts.
func (p *project) pages() ([]site.Page, error) {
	root := p.cfg.PagesPath()
	paths, err := build.Discover(root)
	if err != nil {
		return nil, err
	}
	return script.Pages(p.host(), root, paths)
}

// runtime returns the configured client runtime, or nil to let pages choose.
func (p *project) runtime() (*render.ClientRuntime, error) {
	if p.cfg.Runtime == "" {
		return nil, nil
	}
	rt, ok := render.RuntimeByName(p.cfg.Runtime)
	if !ok {
		return nil, errors.New("E301").WithDetailf("unknown runtime %q", p.cfg.Runtime)
	}
	return &rt, nil
}

// builder returns a builder configured from the project. Options set in
// opts take precedence.
func (p *project) builder(opts build.Options) (*build.Builder, error) {
	rt, err := p.runtime()
	if err != nil {
		return nil, err
	}
	if opts.Runtime == nil {
		opts.Runtime = rt
	}
	if opts.Title == "" {
		opts.Title = p.cfg.Title
	}
	if opts.Indent == "" {
		opts.Indent = p.cfg.IndentString()
	}
	if opts.StylesheetFile == "" {
		opts.StylesheetFile = p.cfg.Stylesheet
	}
	if opts.Workers == 0 {
		opts.Workers = p.cfg.Workers
	}
	opts.Verify = opts.Verify || p.cfg.Verify
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	if opts.Registerer == nil {
		opts.Registerer = p.registry
	}
	return build.New(opts), nil
}

// build discovers the pages and builds them once.
func (p *project) build(ctx context.Context, opts build.Options) (*build.Result, error) {
	b, err := p.builder(opts)
	if err != nil {
		return nil, err
	}
	pages, err := p.pages()
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, pages)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// projectDir returns the directory argument, defaulting to ".".
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
