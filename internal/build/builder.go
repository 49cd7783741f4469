package build

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/internal/publish"
	"github.com/vango-dev/webdsl/internal/verify"
	"github.com/vango-dev/webdsl/pkg/dom"
	"github.com/vango-dev/webdsl/pkg/render"
	"github.com/vango-dev/webdsl/pkg/site"
	"github.com/vango-dev/webdsl/pkg/style"
)

// DefaultStylesheet is the site stylesheet file name.
const DefaultStylesheet = "styles.css"

// ManifestFile is the name WriteManifest writes to.
const ManifestFile = "manifest.json"

const tracerName = "github.com/vango-dev/webdsl/internal/build"

// PageOutput is the generated markup of one page.
type PageOutput struct {
	// Name is the page name, e.g. "contact/form".
	Name string

	// File is the output file name, e.g. "contact/form.html".
	File string

	// Markup is the complete HTML document.
	Markup string

	// Document is the recorded tree.
	Document *dom.Document

	// Nodes is the number of recorded elements.
	Nodes int

	// Callbacks is the number of distinct event callbacks.
	Callbacks int

	// Runtime is the client runtime the page was rendered for.
	Runtime string

	// Diagnostics lists callbacks left out of the script block.
	Diagnostics []render.Diagnostic

	// Duration is how long recording and rendering took.
	Duration time.Duration
}

// Result contains the build output.
type Result struct {
	// Pages are the generated pages in page name order.
	Pages []PageOutput

	// Stylesheet is the site stylesheet text.
	Stylesheet string

	// StylesheetFile is the stylesheet file name.
	StylesheetFile string

	// Sheet is the merged site sheet.
	Sheet *style.Sheet

	// Manifest maps every output file to the SHA-256 of its content.
	Manifest map[string]string

	// Diagnostics lists the skipped callbacks of all pages.
	Diagnostics []render.Diagnostic

	// Findings are the verification problems, when verification ran.
	Findings []verify.Finding

	// Duration is how long the build took.
	Duration time.Duration
}

// Files returns the pages and the stylesheet as publishable files.
func (r *Result) Files() []publish.File {
	files := make([]publish.File, 0, len(r.Pages)+1)
	for _, p := range r.Pages {
		files = append(files, publish.File{Name: p.File, Data: []byte(p.Markup), ContentType: publish.ContentTypeHTML})
	}
	files = append(files, publish.File{Name: r.StylesheetFile, Data: []byte(r.Stylesheet), ContentType: publish.ContentTypeCSS})
	return files
}

// Page returns the output of the named page.
func (r *Result) Page(name string) (PageOutput, bool) {
	for _, p := range r.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return PageOutput{}, false
}

// Options configures the builder.
type Options struct {
	// Title is the document title of every page.
	Title string

	// Lang sets the lang attribute of every page.
	Lang string

	// Indent is the markup indentation unit. Defaults to two spaces.
	Indent string

	// Runtime forces the client runtime of every page. Nil lets each page
	// choose; pages without a preference use Brython.
	Runtime *render.ClientRuntime

	// StylesheetFile is the stylesheet file name. Defaults to DefaultStylesheet.
	StylesheetFile string

	// Workers is the number of pages recorded in parallel. Values below 1
	// mean 1.
	Workers int

	// Verify re-reads the generated output and fails the build when it
	// finds problems.
	Verify bool

	// Sink receives the generated files. Nil keeps them in the Result only.
	Sink publish.Sink

	// Logger receives build progress. Defaults to slog.Default().
	Logger *slog.Logger

	// Registerer receives the build metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// runtimePreference is implemented by pages that target a specific client
// runtime, such as script pages.
type runtimePreference interface {
	ClientRuntime() *render.ClientRuntime
}

// Builder builds sites. A Builder may be reused for several builds but
// must not run two builds at once when its metrics are registered.
type Builder struct {
	options Options
	logger  *slog.Logger
	metrics *metrics
	tracer  trace.Tracer
}

// New creates a new builder.
func New(options Options) *Builder {
	if options.StylesheetFile == "" {
		options.StylesheetFile = DefaultStylesheet
	}
	if options.Workers < 1 {
		options.Workers = 1
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		options: options,
		logger:  logger,
		metrics: newMetrics(options.Registerer),
		tracer:  otel.Tracer(tracerName),
	}
}

// Build records, renders and optionally verifies and publishes pages.
//
// Pages are built in name order. Each page records into its own tree and
// sheet; the sheets are merged into the site sheet in page order, so the
// stylesheet does not depend on Workers. The first page error aborts the
// build.
func (b *Builder) Build(ctx context.Context, pages []site.Page) (*Result, error) {
	start := time.Now()
	ctx, span := b.tracer.Start(ctx, "site.build", trace.WithAttributes(
		attribute.Int("webdsl.pages", len(pages)),
		attribute.Int("webdsl.workers", b.options.Workers),
	))
	defer span.End()

	result, err := b.build(ctx, pages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	result.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("webdsl.rules", result.Sheet.Len()))
	b.logger.Info("site built",
		"pages", len(result.Pages),
		"rules", result.Sheet.Len(),
		"duration", result.Duration)
	return result, nil
}

func (b *Builder) build(ctx context.Context, pages []site.Page) (*Result, error) {
	if len(pages) == 0 {
		return nil, errors.New("E203")
	}
	sorted, err := sortPages(pages)
	if err != nil {
		return nil, err
	}

	b.progress("Recording pages...")
	outputs := make([]PageOutput, len(sorted))
	sheets := make([]*style.Sheet, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.options.Workers)
	for i, page := range sorted {
		i, page := i, page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, sheet, err := b.buildPage(gctx, page)
			if err != nil {
				return err
			}
			outputs[i], sheets[i] = out, sheet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.progress("Compiling stylesheet...")
	siteSheet := style.New()
	for _, s := range sheets {
		siteSheet.Merge(s)
	}
	b.metrics.stylesheetRules.Set(float64(siteSheet.Len()))

	result := &Result{
		Pages:          outputs,
		Stylesheet:     render.SheetText(siteSheet),
		StylesheetFile: b.options.StylesheetFile,
		Sheet:          siteSheet,
	}
	for _, p := range outputs {
		result.Diagnostics = append(result.Diagnostics, p.Diagnostics...)
	}
	result.Manifest = manifest(result.Files())

	if b.options.Verify {
		b.progress("Verifying output...")
		result.Findings = b.verify(result)
		if err := verify.Err(result.Findings); err != nil {
			return result, err
		}
	}

	if b.options.Sink != nil {
		b.progress("Writing files...")
		if err := publish.Publish(ctx, b.options.Sink, result.Files()); err != nil {
			return result, err
		}
	}
	return result, nil
}

// renderFailed adds the page to a render error and keeps its code, if any.
func renderFailed(name string, err error) error {
	return fmt.Errorf("render page %s: %w", name, err)
}

// buildPage records and renders one page.
func (b *Builder) buildPage(ctx context.Context, page site.Page) (PageOutput, *style.Sheet, error) {
	start := time.Now()
	name := page.Name()
	logger := b.logger.With("page", name)

	sc := &site.Context{
		HTML:   dom.NewBuilder(),
		CSS:    style.New(),
		Page:   name,
		Logger: logger,
	}

	recCtx, span := b.tracer.Start(ctx, "page.record", trace.WithAttributes(attribute.String("webdsl.page", name)))
	logger.Debug("recording page")
	err := page.Record(recCtx, sc)
	if err == nil && sc.HTML.Depth() != 0 {
		err = errors.Newf("E104", "page %s left %d element(s) open", name, sc.HTML.Depth())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		b.metrics.pagesBuilt.WithLabelValues("error").Inc()
		return PageOutput{}, nil, err
	}
	doc := sc.HTML.Document()
	scripts := sc.HTML.EventScripts()
	span.SetAttributes(attribute.Int("webdsl.nodes", doc.Count()), attribute.Int("webdsl.callbacks", len(scripts)))
	span.End()

	runtime := b.runtimeFor(page)
	_, span = b.tracer.Start(ctx, "page.render", trace.WithAttributes(
		attribute.String("webdsl.page", name),
		attribute.String("webdsl.runtime", runtime.Name),
	))
	defer span.End()

	r := render.NewRenderer(render.RendererConfig{
		Indent:  b.options.Indent,
		Title:   b.options.Title,
		Runtime: runtime,
		Logger:  logger,
	})
	var buf bytes.Buffer
	err = r.RenderPage(&buf, render.PageData{
		Document:       doc,
		Scripts:        scripts,
		StylesheetHref: sc.StylesheetHref(b.options.StylesheetFile),
		Lang:           b.options.Lang,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.metrics.pagesBuilt.WithLabelValues("error").Inc()
		return PageOutput{}, nil, renderFailed(name, err)
	}

	diags := r.Diagnostics()
	out := PageOutput{
		Name:        name,
		File:        site.OutputPath(name),
		Markup:      buf.String(),
		Document:    doc,
		Nodes:       doc.Count(),
		Callbacks:   len(scripts),
		Runtime:     runtime.Name,
		Diagnostics: diags,
		Duration:    time.Since(start),
	}

	b.metrics.pagesBuilt.WithLabelValues("ok").Inc()
	b.metrics.pageDuration.Observe(out.Duration.Seconds())
	b.metrics.nodesRecorded.Add(float64(out.Nodes))
	b.metrics.callbacksSkipped.Add(float64(len(diags)))
	logger.Info("page built", "nodes", out.Nodes, "callbacks", out.Callbacks, "duration", out.Duration)
	return out, sc.CSS, nil
}

func (b *Builder) runtimeFor(page site.Page) *render.ClientRuntime {
	if b.options.Runtime != nil {
		return b.options.Runtime
	}
	if p, ok := page.(runtimePreference); ok {
		if rt := p.ClientRuntime(); rt != nil {
			return rt
		}
	}
	return &render.Brython
}

func (b *Builder) verify(result *Result) []verify.Finding {
	pages := make([]verify.Page, len(result.Pages))
	for i, p := range result.Pages {
		pages[i] = verify.Page{File: p.File, Markup: p.Markup}
	}
	return verify.Site(pages, result.StylesheetFile, result.Stylesheet, result.Sheet, verifyOptions(result))
}

// CheckDir verifies the output written to dir against the sheet result
// recorded. Files missing from dir are findings.
func CheckDir(result *Result, dir string) []verify.Finding {
	var findings []verify.Finding
	read := func(name string) (string, bool) {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			findings = append(findings, verify.Finding{File: name, Message: "missing from " + dir})
			return "", false
		}
		return string(data), true
	}

	var pages []verify.Page
	for _, p := range result.Pages {
		if markup, ok := read(p.File); ok {
			pages = append(pages, verify.Page{File: p.File, Markup: markup})
		}
	}
	stylesheet, ok := read(result.StylesheetFile)
	if !ok {
		for _, p := range pages {
			findings = append(findings, verify.Markup(p, verifyOptions(result))...)
		}
		return findings
	}
	return append(findings, verify.Site(pages, result.StylesheetFile, stylesheet, result.Sheet, verifyOptions(result))...)
}

// verifyOptions treats the boot functions of the page runtimes as globals.
func verifyOptions(result *Result) verify.Options {
	globals := map[string]bool{}
	for _, p := range result.Pages {
		if rt, ok := render.RuntimeByName(p.Runtime); ok && rt.BootCall != "" {
			globals[strings.TrimSuffix(rt.BootCall, "()")] = true
		}
	}
	opts := verify.Options{}
	for g := range globals {
		opts.Globals = append(opts.Globals, g)
	}
	sort.Strings(opts.Globals)
	return opts
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// sortPages orders pages by name and rejects duplicates.
func sortPages(pages []site.Page) ([]site.Page, error) {
	sorted := append([]site.Page(nil), pages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name() == sorted[i-1].Name() {
			return nil, errors.Newf("E102", "two pages are named %q", sorted[i].Name())
		}
	}
	return sorted, nil
}

// manifest hashes every file.
func manifest(files []publish.File) map[string]string {
	m := make(map[string]string, len(files))
	for _, f := range files {
		sum := sha256.Sum256(f.Data)
		m[f.Name] = hex.EncodeToString(sum[:])
	}
	return m
}

// WriteManifest writes the output manifest to sink.
func WriteManifest(ctx context.Context, sink publish.Sink, result *Result) error {
	data, err := json.MarshalIndent(result.Manifest, "", "  ")
	if err != nil {
		return errors.New("E401").Wrap(err)
	}
	return sink.Put(ctx, ManifestFile, append(data, '\n'), "application/json")
}

// Changed returns the output files whose content differs between two
// manifests, in sorted order. Files missing from either side count as
// changed.
func Changed(before, after map[string]string) []string {
	var out []string
	for name, sum := range after {
		if before[name] != sum {
			out = append(out, name)
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Clean removes a build output directory.
func Clean(dir string) error {
	return os.RemoveAll(dir)
}
