package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/webdsl/internal/build"
	"github.com/vango-dev/webdsl/internal/config"
	"github.com/vango-dev/webdsl/internal/dev"
	"github.com/vango-dev/webdsl/internal/publish"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		noWatch bool
		open    bool
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the site with live reload",
		Long: `Build the site, serve the output directory and rebuild when a page
script or the configuration changes.

Connected browsers reload after every build that changed a page and swap
the stylesheet in place when only styles changed. A failed build shows an
error overlay until the next good build.

Examples:
  webdsl serve
  webdsl serve --port=8080 --open`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(projectDir(args))
			if err != nil {
				return err
			}
			if port > 0 {
				p.cfg.Dev.Port = port
			}
			if host != "" {
				p.cfg.Dev.Host = host
			}
			if noWatch {
				p.cfg.Dev.Watch = false
			}
			if open {
				p.cfg.Dev.Open = true
			}
			return runServe(p)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default 3000)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (default localhost)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not rebuild on change")
	cmd.Flags().BoolVar(&open, "open", false, "Open the browser")

	return cmd
}

func runServe(p *project) error {
	out := p.cfg.OutputPath()
	sink := publish.NewDirSink(out)
	builder, err := p.builder(build.Options{Sink: sink})
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) (*build.Result, error) {
		pages, err := p.pages()
		if err != nil {
			return nil, err
		}
		result, err := builder.Build(ctx, pages)
		if err != nil {
			return result, err
		}
		return result, build.WriteManifest(ctx, sink, result)
	}

	printBanner()
	info("serve")
	info("")

	srv := dev.NewServer(dev.ServerOptions{
		Addr:      p.cfg.DevAddress(),
		OutputDir: out,
		Watch:     watchPaths(p.cfg),
		Rebuild:   rebuild,
		Gatherer:  p.registry,
		Logger:    p.logger,
		OnBuildComplete: func(result *build.Result, err error) {
			if err != nil {
				errorMsg("Build failed: %v", err)
				return
			}
			success("Built %d pages in %s", len(result.Pages), result.Duration.Round(time.Millisecond))
		},
		OnReload: func(clients int) {
			success("Reloaded %d browsers", clients)
		},
	})

	ctx, cancel := signalContext()
	defer cancel()

	if p.cfg.Dev.Open {
		go func() {
			time.Sleep(300 * time.Millisecond)
			_ = dev.OpenBrowser(p.cfg.DevURL())
		}()
	}

	info("Serving %s at %s", out, p.cfg.DevURL())
	return srv.Start(ctx)
}

// watchPaths returns the page directory and the configuration file, or
// nothing when watching is off.
func watchPaths(cfg *config.Config) []string {
	if !cfg.Dev.Watch {
		return nil
	}
	paths := []string{cfg.PagesPath()}
	if path := cfg.Path(); path != "" {
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, filepath.Clean(path))
		}
	}
	return paths
}
