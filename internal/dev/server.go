package dev

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/webdsl/internal/build"
	"github.com/vango-dev/webdsl/internal/errors"
)

// MetricsPath serves the build metrics when ServerOptions.Gatherer is set.
const MetricsPath = "/metrics"

// RebuildFunc builds the site and writes it to the output directory.
type RebuildFunc func(ctx context.Context) (*build.Result, error)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Addr is the listen address, e.g. "localhost:3000".
	Addr string

	// OutputDir is the directory served to the browser.
	OutputDir string

	// Watch lists the files and directories that trigger a rebuild.
	Watch []string

	// Ignore is appended to DefaultIgnore.
	Ignore []string

	// Interval is the watcher polling interval.
	Interval time.Duration

	// Rebuild is called once on start and after every change.
	Rebuild RebuildFunc

	// Gatherer exposes build metrics on MetricsPath. Nil disables it.
	Gatherer prometheus.Gatherer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnBuildComplete is called after every build.
	OnBuildComplete func(result *build.Result, err error)

	// OnReload is called after browsers were told to reload.
	OnReload func(clients int)
}

// Server serves the build output, rebuilds on change and reloads the
// connected browsers.
type Server struct {
	options    ServerOptions
	logger     *slog.Logger
	hub        *Hub
	watcher    *Watcher
	router     chi.Router
	httpServer *http.Server

	mu      sync.Mutex
	running bool

	// buildMu serializes rebuilds. manifest is the last good build's.
	buildMu  sync.Mutex
	manifest map[string]string
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ignore := append(append([]string{}, DefaultIgnore...), options.Ignore...)
	if abs, err := filepath.Abs(options.OutputDir); err == nil {
		ignore = append(ignore, abs)
	}

	s := &Server{
		options: options,
		logger:  logger.With("component", "dev"),
		hub:     NewHub(),
		watcher: NewWatcher(WatcherConfig{
			Paths:    options.Watch,
			Ignore:   ignore,
			Interval: options.Interval,
		}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Handle(ReloadPath, s.hub)
	if s.options.Gatherer != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(s.options.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/*", s.serveFile)
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the reload hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start builds the site, then serves it and watches for changes until ctx
// is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.options.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.Rebuild(ctx, nil)

	s.watcher.OnChange(func(changes []Change) {
		s.Rebuild(ctx, changes)
	})
	go s.watcher.Start(ctx)

	s.logger.Info("serving", "addr", "http://"+s.options.Addr, "dir", s.options.OutputDir)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.watcher.Stop()
	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
	}
}

// Rebuild runs one build and notifies the browsers. A failed build shows
// the error overlay; a build that only changed the stylesheet swaps
// stylesheets in place instead of reloading.
func (s *Server) Rebuild(ctx context.Context, changes []Change) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	for _, change := range changes {
		s.logger.Debug("changed", "path", change.Path, "type", change.Type.String(), "removed", change.Removed)
	}
	if s.options.Rebuild == nil {
		return
	}

	result, err := s.options.Rebuild(ctx)
	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(result, err)
	}
	if err != nil {
		s.logger.Error("build failed", "error", err)
		s.hub.Error(overlayText(err))
		return
	}
	s.logger.Info("built", "pages", len(result.Pages), "duration", result.Duration.Round(time.Millisecond))

	before := s.manifest
	s.manifest = result.Manifest
	s.hub.Clear()
	if before == nil {
		return
	}

	changed := build.Changed(before, result.Manifest)
	switch {
	case len(changed) == 0:
		return
	case len(changed) == 1 && changed[0] == result.StylesheetFile:
		s.hub.ReloadCSS(result.StylesheetFile)
	default:
		s.hub.Reload()
	}
	if s.options.OnReload != nil {
		s.options.OnReload(s.hub.ClientCount())
	}
}

func overlayText(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		text := e.FormatCompact()
		if len(e.Context) > 0 {
			text += "\n\n" + strings.Join(e.Context, "\n")
		}
		return text
	}
	return err.Error()
}

// serveFile serves the output directory. Directory paths serve their
// index.html and extensionless paths fall back to the .html page. HTML
// responses get the reload client injected.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + chi.URLParam(r, "*"))
	if strings.HasSuffix(r.URL.Path, "/") || name == "/" {
		name = path.Join(name, "index.html")
	}

	file, ok := s.resolve(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !strings.EqualFold(filepath.Ext(file), ".html") {
		http.ServeFile(w, r, file)
		return
	}

	data, err := os.ReadFile(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(InjectClient(data))
}

func (s *Server) resolve(name string) (string, bool) {
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = append(candidates, name+".html", path.Join(name, "index.html"))
	}
	for _, c := range candidates {
		file := filepath.Join(s.options.OutputDir, filepath.FromSlash(c))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return file, true
		}
	}
	return "", false
}

// InjectClient inserts ClientScript before the last </body>, or appends it
// when the document has none.
func InjectClient(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(append([]byte{}, page...), ClientScript...)
	}
	out := make([]byte, 0, len(page)+len(ClientScript))
	out = append(out, page[:i]...)
	out = append(out, ClientScript...)
	return append(out, page[i:]...)
}
