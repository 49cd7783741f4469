// Package script runs page scripts written in JavaScript.
//
// A script records its page through a small set of globals:
//
//	html.el(tag, ...args)   html.div(...args)   html.p("text")
//	css.rule(selector, {color: "red"})
//	css.keyframes(name, {from: {...}, to: {...}})
//	urlFor("about.js")
//	console.log(...), console.warn(...)
//
// Element arguments follow the Go builder: an optional leading string is
// the element text, plain objects are attributes and a trailing function is
// the body of a nested block. Functions bound to event attributes become
// page callbacks whose source is embedded in the generated markup.
package script

import (
	"context"
	"log/slog"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"

	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/pkg/site"
)

// DefaultTimeout bounds a single script run when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configures a Host.
type Options struct {
	// Timeout bounds every run. Zero means DefaultTimeout, negative means
	// no limit other than the context.
	Timeout time.Duration

	// Logger receives console output. Nil means slog.Default().
	Logger *slog.Logger
}

// Host executes page scripts. A Host is safe for concurrent use; every run
// gets its own interpreter.
type Host struct {
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Host.
func New(opts Options) *Host {
	h := &Host{timeout: opts.Timeout, logger: opts.Logger}
	if h.timeout == 0 {
		h.timeout = DefaultTimeout
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Run executes src, recording into sc. filename is used in error locations.
//
// Errors raised by the builder or the sheet are returned unchanged, with the
// script location added. Uncaught exceptions are ErrScriptFailed and an
// interrupted run (context done or timeout) is ErrScriptTimeout.
func (h *Host) Run(ctx context.Context, filename, src string, sc *site.Context) error {
	prg, err := goja.Compile(filename, src, false)
	if err != nil {
		return syntaxError(filename, src, err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	vm := goja.New()
	logger := h.logger
	if sc.Logger != nil {
		logger = sc.Logger
	}
	b := newBinder(vm, sc, logger.With("script", filename))
	if err := b.install(); err != nil {
		return errors.New("E201").WithDetail("installing globals").Wrap(err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err = vm.RunProgram(prg)
	vm.ClearInterrupt()
	if err != nil {
		return runError(filename, src, err)
	}
	return nil
}

func syntaxError(filename, src string, err error) error {
	e := errors.New("E201").WithDetail("syntax error").Wrap(err)
	if se, ok := err.(*goja.CompilerSyntaxError); ok && se.File != nil {
		pos := se.File.Position(se.Offset)
		return e.WithSource(filename, src, pos.Line, pos.Column)
	}
	// Parse errors lose their position on the way through Compile.
	if _, perr := parser.ParseFile(nil, filename, src, 0); perr != nil {
		var list parser.ErrorList
		if errors.As(perr, &list) && len(list) > 0 {
			e.Detail = list[0].Message
			return e.WithSource(filename, src, list[0].Position.Line, list[0].Position.Column)
		}
	}
	return e.WithLocation(filename, 0, 0)
}

func runError(filename, src string, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		e := errors.Newf("E202", "%s", filename)
		if cause, ok := interrupted.Value().(error); ok {
			e = e.Wrap(cause)
		}
		return e
	}

	var ex *goja.Exception
	line, col := 0, 0
	if errors.As(err, &ex) {
		line, col = position(ex, filename)
	}

	// Builder and sheet errors travel through the interpreter as Go errors.
	var host *errors.Error
	if errors.As(err, &host) {
		if host.Location == nil && line > 0 {
			host.WithSource(filename, src, line, col)
		}
		return host
	}

	e := errors.New("E201")
	if ex != nil {
		e = e.WithDetail(ex.Value().String())
	} else {
		e = e.Wrap(err)
	}
	if line > 0 {
		return e.WithSource(filename, src, line, col)
	}
	return e.WithLocation(filename, 0, 0)
}

// position returns the innermost script frame of ex that belongs to filename.
func position(ex *goja.Exception, filename string) (line, col int) {
	for _, frame := range ex.Stack() {
		pos := frame.Position()
		if pos.Line > 0 && (pos.Filename == filename || pos.Filename == "") {
			return pos.Line, pos.Column
		}
	}
	return 0, 0
}
