package dom

import (
	"errors"
	"strings"
	"testing"
)

func mustCreate(t *testing.T, b *Builder, tag string, args ...any) *Node {
	t.Helper()
	n, err := b.Create(tag, args...)
	if err != nil {
		t.Fatalf("Create(%q): %v", tag, err)
	}
	return n
}

func TestNestingMirrorsCallStructure(t *testing.T) {
	b := NewBuilder()
	err := b.Within("body", func() error {
		return b.Within("div", func() error {
			mustCreate(t, b, "h1", "Hello")
			mustCreate(t, b, "p", "World")
			return nil
		}, A("class_", "container"))
	})
	if err != nil {
		t.Fatalf("Within: %v", err)
	}

	roots := b.Roots()
	if len(roots) != 1 || roots[0].Tag != "body" {
		t.Fatalf("roots = %v", roots)
	}
	div := roots[0].Children[0]
	if div.Tag != "div" || len(div.Children) != 2 {
		t.Fatalf("div = %+v", div)
	}
	if v, _ := div.Attr("class"); v != "container" {
		t.Errorf("class = %v, want container", v)
	}
	if div.Children[0].Text != "Hello" || div.Children[1].Tag != "p" {
		t.Errorf("children = %+v %+v", div.Children[0], div.Children[1])
	}
	if b.Depth() != 0 {
		t.Errorf("Depth() = %d after all scopes closed", b.Depth())
	}
	if got := b.Document().Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

func TestMultipleRoots(t *testing.T) {
	b := NewBuilder()
	mustCreate(t, b, "header")
	mustCreate(t, b, "main")
	roots := b.Roots()
	if len(roots) != 2 || roots[0].Tag != "header" || roots[1].Tag != "main" {
		t.Fatalf("roots = %+v", roots)
	}
}

func TestWithinPopsOnError(t *testing.T) {
	b := NewBuilder()
	boom := errors.New("boom")

	outer, err := b.Open("body")
	if err != nil {
		t.Fatal(err)
	}
	defer outer.Close()

	err = b.Within("div", func() error {
		mustCreate(t, b, "span")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Within error = %v, want boom", err)
	}
	if b.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", b.Depth())
	}

	// New elements land in body, not in the abandoned div.
	mustCreate(t, b, "p")
	body := b.Roots()[0]
	if len(body.Children) != 2 || body.Children[1].Tag != "p" {
		t.Errorf("body children = %+v", body.Children)
	}
}

func TestWithinPopsOnPanic(t *testing.T) {
	b := NewBuilder()
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic")
			}
		}()
		_ = b.Within("div", func() error {
			panic("body failed")
		})
	}()
	if b.Depth() != 0 {
		t.Fatalf("Depth() = %d after panic, want 0", b.Depth())
	}
}

func TestScopeCloseIdempotent(t *testing.T) {
	b := NewBuilder()
	s, err := b.Open("div")
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	s.Close()
	if b.Depth() != 0 {
		t.Fatalf("Depth() = %d", b.Depth())
	}
}

func TestScopeCloseOutOfOrderPanics(t *testing.T) {
	b := NewBuilder()
	outer, _ := b.Open("div")
	inner, _ := b.Open("span")
	defer inner.Close()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrStackInvariantViolation) {
			t.Fatalf("recover() = %v, want stack invariant violation", r)
		}
	}()
	outer.Close()
}

func TestScopeCloseAfterResetPanics(t *testing.T) {
	b := NewBuilder()
	s, _ := b.Open("div")
	b.Reset()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrStackInvariantViolation) {
			t.Fatalf("recover() = %v, want stack invariant violation", r)
		}
	}()
	s.Close()
}

func TestCreateRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []any
	}{
		{name: "second string", args: []any{"a", "b"}},
		{name: "string after attr", args: []any{A("id", "x"), "text"}},
		{name: "integer", args: []any{42}},
		{name: "child node", args: []any{&Node{Tag: "span"}}},
		{name: "plain func", args: []any{A("onclick", func() {})}},
		{name: "callback on non-event key", args: []any{A("data-cb", Func("f", "def f(ev): pass"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			_, err := b.Create("div", tt.args...)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
			if len(b.Roots()) != 0 || len(b.EventScripts()) != 0 {
				t.Error("rejected element must not be recorded")
			}
		})
	}
}

func TestCreateRejectsEmptyTag(t *testing.T) {
	if _, err := NewBuilder().Create(""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateIgnoresNil(t *testing.T) {
	b := NewBuilder()
	n := mustCreate(t, b, "p", "Hi", nil, A("id", "x"))
	if n.Text != "Hi" || len(n.Attrs) != 1 {
		t.Fatalf("node = %+v", n)
	}
}

func TestEventScriptsDistinctInDiscoveryOrder(t *testing.T) {
	b := NewBuilder()
	first := Func("first", "def first(ev): pass")
	second := Func("second", "def second(ev): pass")

	mustCreate(t, b, "button", A("onclick", first))
	mustCreate(t, b, "form", A("onsubmit", second), A("oninput", first))
	mustCreate(t, b, "button", OnClick(first))

	scripts := b.EventScripts()
	if len(scripts) != 2 || scripts[0] != first || scripts[1] != second {
		t.Fatalf("EventScripts() = %v", scripts)
	}
}

func TestFailedCreateDoesNotRegisterCallbacks(t *testing.T) {
	b := NewBuilder()
	cb := Func("go", "def go(ev): pass")
	if _, err := b.Create("button", A("onclick", cb), 7); err == nil {
		t.Fatal("expected error")
	}
	if len(b.EventScripts()) != 0 {
		t.Fatal("callback registered for rejected element")
	}
}

func TestReset(t *testing.T) {
	b := NewBuilder()
	_, _ = b.Open("div")
	mustCreate(t, b, "button", OnClick(Func("f", "def f(ev): pass")))
	b.Reset()

	if len(b.Roots()) != 0 || b.Depth() != 0 || len(b.EventScripts()) != 0 {
		t.Fatal("Reset left state behind")
	}
}

func TestDump(t *testing.T) {
	b := NewBuilder()
	_ = b.Within("body", func() error {
		mustCreate(t, b, "h1", "Hello", A("hidden", true))
		mustCreate(t, b, "button", "Go", OnClick(Func("go", "def go(ev): pass")))
		return nil
	})

	out := Dump(b.Document())
	for _, want := range []string{
		"document",
		"<body>",
		`<h1 hidden> "Hello"`,
		`<button onclick=go()> "Go"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump missing %q:\n%s", want, out)
		}
	}
}
