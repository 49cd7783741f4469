// Package build turns site pages into markup files and one stylesheet.
//
// A build records every page into a fresh tree, renders the page with its
// event callbacks and a relative link to the site stylesheet, and compiles
// the stylesheet from the rules and keyframes all pages recorded.
//
// # Usage
//
//	paths, err := build.Discover("pages")
//	if err != nil {
//	    return err
//	}
//	pages, err := script.Pages(host, "pages", paths)
//	if err != nil {
//	    return err
//	}
//
//	builder := build.New(build.Options{Workers: 4, Sink: publish.NewDirSink("build")})
//	result, err := builder.Build(ctx, pages)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Built %d pages in %s\n", len(result.Pages), result.Duration)
//
// # Output Structure
//
//	build/
//	├── index.html
//	├── about.html
//	├── contact/
//	│   └── form.html
//	└── styles.css
//
// # Metrics
//
// When Options.Registerer is set the builder exports
// webdsl_pages_built_total{status}, webdsl_page_build_duration_seconds,
// webdsl_nodes_recorded_total, webdsl_callbacks_skipped_total and
// webdsl_stylesheet_rules. Spans site.build, page.record and page.render
// go to the global OpenTelemetry tracer provider.
package build
