package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/webdsl/internal/build"
	"github.com/vango-dev/webdsl/internal/dev"
	"github.com/vango-dev/webdsl/internal/publish"
	"github.com/vango-dev/webdsl/pkg/render"
)

func buildCmd() *cobra.Command {
	var (
		output  string
		runtime string
		workers int
		verify  bool
		open    bool
		clean   bool
	)

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Build the site",
		Long: `Record every page script and write the site to the output directory.

This command:
  • Runs each page script and records its document and styles
  • Writes one .html file per page and the site stylesheet
  • Writes manifest.json with a SHA-256 of every output file
  • Optionally re-reads the output and checks it

Examples:
  webdsl build
  webdsl build site --out=public
  webdsl build --runtime=brython --workers=4 --verify`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(projectDir(args))
			if err != nil {
				return err
			}
			if output != "" {
				p.cfg.Output = output
			}
			if runtime != "" {
				p.cfg.Runtime = runtime
			}
			if workers > 0 {
				p.cfg.Workers = workers
			}
			return runBuild(p, verify, open, clean)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "Output directory (default from webdsl.yaml)")
	cmd.Flags().StringVar(&runtime, "runtime", "", "Client runtime for every page: "+strings.Join(runtimeNames(), " or "))
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Pages built in parallel")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the generated output")
	cmd.Flags().BoolVar(&open, "open", false, "Open the index page in the browser")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output directory first")

	return cmd
}

func runBuild(p *project, verify, open, clean bool) error {
	out := p.cfg.OutputPath()
	if clean {
		info("Cleaning %s...", out)
		if err := build.Clean(out); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	sink := publish.NewDirSink(out)
	result, err := p.build(ctx, build.Options{
		Verify:     verify,
		Sink:       sink,
		OnProgress: func(step string) { info(step) },
	})
	if err != nil {
		return err
	}
	if err := build.WriteManifest(ctx, sink, result); err != nil {
		return err
	}

	fmt.Println()
	success("Built %d pages in %s", len(result.Pages), result.Duration.Round(1000000))
	printOutput(out, result)
	for _, d := range result.Diagnostics {
		warn("%s", d.String())
	}

	if open {
		if index, ok := result.Page("index"); ok {
			abs, err := filepath.Abs(filepath.Join(out, filepath.FromSlash(index.File)))
			if err == nil {
				_ = dev.OpenBrowser("file://" + filepath.ToSlash(abs))
			}
		}
	}
	return nil
}

// printOutput lists the generated files.
func printOutput(out string, result *build.Result) {
	fmt.Println()
	fmt.Printf("  %s/\n", out)
	for _, page := range result.Pages {
		fmt.Printf("    %-28s %s %s\n", page.File, faint(formatBytes(int64(len(page.Markup)))), faint(page.Runtime))
	}
	fmt.Printf("    %-28s %s\n", result.StylesheetFile, faint(formatBytes(int64(len(result.Stylesheet)))))
	fmt.Printf("    %-28s\n", build.ManifestFile)
	fmt.Println()
}

// runtimeNames lists the accepted --runtime values.
func runtimeNames() []string {
	return []string{render.Brython.Name, render.JavaScript.Name}
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
