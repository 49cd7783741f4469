package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dop251/goja"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/pkg/dom"
	"github.com/vango-dev/webdsl/pkg/site"
	"github.com/vango-dev/webdsl/pkg/style"
)

// Tags get an html.<tag> shorthand in addition to html.el.
var Tags = []string{
	"html", "head", "body", "title", "meta", "link",
	"header", "footer", "nav", "main", "section", "article", "aside",
	"div", "span", "p", "a", "img", "br", "hr", "pre", "code", "blockquote",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li", "dl", "dt", "dd",
	"strong", "em", "small", "b", "i", "u",
	"table", "thead", "tbody", "tfoot", "tr", "th", "td",
	"form", "label", "input", "textarea", "select", "option", "button", "fieldset", "legend",
	"figure", "figcaption", "video", "audio", "source", "canvas",
}

// binder connects one interpreter to one page context.
type binder struct {
	vm     *goja.Runtime
	sc     *site.Context
	logger *slog.Logger

	// callbacks keeps one dom.Callback per function object so a handler
	// bound twice is emitted once.
	callbacks map[*goja.Object]*jsCallback
}

func newBinder(vm *goja.Runtime, sc *site.Context, logger *slog.Logger) *binder {
	return &binder{
		vm:        vm,
		sc:        sc,
		logger:    logger,
		callbacks: make(map[*goja.Object]*jsCallback),
	}
}

func (b *binder) install() error {
	html := b.vm.NewObject()
	if err := html.Set("el", func(call goja.FunctionCall) goja.Value {
		tag := call.Argument(0)
		if goja.IsUndefined(tag) || goja.IsNull(tag) {
			b.throw(errors.Newf("E102", "html.el: missing tag name"))
		}
		var args []goja.Value
		if len(call.Arguments) > 1 {
			args = call.Arguments[1:]
		}
		b.element(tag.String(), args)
		return goja.Undefined()
	}); err != nil {
		return err
	}
	for _, tag := range Tags {
		tag := tag
		if err := html.Set(tag, func(call goja.FunctionCall) goja.Value {
			b.element(tag, call.Arguments)
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}

	css := b.vm.NewObject()
	if err := css.Set("rule", b.rule); err != nil {
		return err
	}
	if err := css.Set("keyframes", b.keyframes); err != nil {
		return err
	}

	console := b.vm.NewObject()
	if err := console.Set("log", b.console(slog.LevelInfo)); err != nil {
		return err
	}
	if err := console.Set("warn", b.console(slog.LevelWarn)); err != nil {
		return err
	}
	if err := console.Set("error", b.console(slog.LevelError)); err != nil {
		return err
	}

	global := b.vm.GlobalObject()
	for name, v := range map[string]any{
		"html":    html,
		"css":     css,
		"console": console,
		"urlFor": func(target string) string {
			return b.sc.URLFor(target)
		},
		"stylesheetHref": func(file string) string {
			return b.sc.StylesheetHref(file)
		},
	} {
		if err := global.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// throw raises err inside the interpreter. The original error is recovered
// by Run through the exception's Unwrap.
func (b *binder) throw(err error) {
	panic(b.vm.NewGoError(err))
}

// element records one element. A trailing function argument is run as the
// body of a nested block; the block is closed before any exception it
// raised continues to unwind.
func (b *binder) element(tag string, args []goja.Value) {
	var body goja.Callable
	if n := len(args); n > 0 {
		if fn, ok := goja.AssertFunction(args[n-1]); ok {
			body = fn
			args = args[:n-1]
		}
	}

	goArgs := make([]any, 0, len(args))
	for i, arg := range args {
		v, err := b.argument(tag, i, arg)
		if err != nil {
			b.throw(err)
		}
		goArgs = append(goArgs, v)
	}

	if body == nil {
		if _, err := b.sc.HTML.Create(tag, goArgs...); err != nil {
			b.throw(err)
		}
		return
	}

	var bodyErr error
	err := b.sc.HTML.Within(tag, func() error {
		_, bodyErr = body(goja.Undefined())
		return nil
	}, goArgs...)
	if err != nil {
		b.throw(err)
	}
	if bodyErr != nil {
		// Exceptions and interrupts are re-raised as they are.
		panic(bodyErr)
	}
}

// argument converts one element argument to what dom.Builder.Create accepts.
func (b *binder) argument(tag string, i int, v goja.Value) (any, error) {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		// Primitives: strings stay text, anything else is rejected by the builder.
		return v.Export(), nil
	}
	if _, isFn := goja.AssertFunction(obj); isFn || obj.ClassName() == "Array" {
		return nil, errors.Newf("E102", "<%s> argument %d: expected text or an attribute object", tag, i).
			WithSuggestion("Only the last argument may be a function; it becomes the element body.")
	}

	attrs := make([]dom.Attr, 0, len(obj.Keys()))
	for _, key := range obj.Keys() {
		val := obj.Get(key)
		if fnObj, ok := val.(*goja.Object); ok {
			if _, isFn := goja.AssertFunction(fnObj); isFn {
				cb, err := b.callback(tag, key, fnObj)
				if err != nil {
					return nil, err
				}
				attrs = append(attrs, dom.A(key, cb))
				continue
			}
		}
		attrs = append(attrs, dom.A(key, exportAttr(val)))
	}
	return attrs, nil
}

func exportAttr(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	switch x := v.Export().(type) {
	case bool, string, int64, float64:
		return x
	default:
		return v.String()
	}
}

// callback returns the page callback for a function bound to an attribute.
func (b *binder) callback(tag, key string, fn *goja.Object) (dom.Callback, error) {
	if cb, ok := b.callbacks[fn]; ok {
		return cb, nil
	}
	name := ""
	if v := fn.Get("name"); v != nil && !goja.IsUndefined(v) {
		name = v.String()
	}
	if name == "" {
		return nil, errors.Newf("E102", "<%s %s>: anonymous function", tag, key).
			WithSuggestion("Declare the handler with a name, e.g. function greet(ev) { ... }, and pass greet.")
	}
	cb := &jsCallback{name: name, source: fn.String()}
	b.callbacks[fn] = cb
	return cb, nil
}

func (b *binder) rule(selector string, decls goja.Value) {
	pairs, err := b.pairs(fmt.Sprintf("rule %q", selector), decls)
	if err != nil {
		b.throw(err)
	}
	if err := b.sc.CSS.Rule(selector, pairs); err != nil {
		b.throw(err)
	}
}

func (b *binder) keyframes(name string, stages goja.Value) {
	obj, ok := plainObject(stages)
	if !ok {
		b.throw(errors.Newf("E101", "keyframes %q: stages must be an object, got %s", name, typeName(stages)))
	}
	m := orderedmap.New[string, any](len(obj.Keys()))
	for _, label := range obj.Keys() {
		pairs, err := b.pairs(fmt.Sprintf("keyframes %q stage %q", name, label), obj.Get(label))
		if err != nil {
			b.throw(err)
		}
		m.Set(label, pairs)
	}
	if err := b.sc.CSS.Keyframes(name, m); err != nil {
		b.throw(err)
	}
}

// pairs converts a declaration object to style.Pairs in key order.
func (b *binder) pairs(where string, v goja.Value) (style.Pairs, error) {
	obj, ok := plainObject(v)
	if !ok {
		return nil, errors.Newf("E101", "%s: declarations must be an object, got %s", where, typeName(v))
	}
	out := make(style.Pairs, 0, 2*len(obj.Keys()))
	for _, prop := range obj.Keys() {
		val := obj.Get(prop)
		if _, nested := val.(*goja.Object); nested || val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			return nil, errors.Newf("E101", "%s: value for %q must be a string, number or boolean, got %s", where, prop, typeName(val))
		}
		out = append(out, prop, exportAttr(val))
	}
	return out, nil
}

func (b *binder) console(level slog.Level) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		b.logger.Log(context.Background(), level, strings.Join(parts, " "), "page", b.sc.Page)
		return goja.Undefined()
	}
}

func plainObject(v goja.Value) (*goja.Object, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	if _, isFn := goja.AssertFunction(obj); isFn || obj.ClassName() == "Array" {
		return nil, false
	}
	return obj, true
}

func typeName(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if obj, ok := v.(*goja.Object); ok {
		if _, isFn := goja.AssertFunction(obj); isFn {
			return "function"
		}
		return strings.ToLower(obj.ClassName())
	}
	return fmt.Sprintf("%T", v.Export())
}

// jsCallback is an event handler declared in a page script.
type jsCallback struct {
	name   string
	source string
}

func (c *jsCallback) Name() string { return c.name }

func (c *jsCallback) Source() (string, error) {
	if strings.TrimSpace(c.source) == "" {
		return "", errors.Newf("E103", "function %s has no source text", c.name)
	}
	return c.source, nil
}
