package dom

import (
	"fmt"

	"github.com/vango-dev/webdsl/internal/errors"
)

// Builder records a document from Create/Open/Within calls.
type Builder struct {
	roots   []*Node
	stack   []*Node
	scripts []Callback
	seen    map[Callback]struct{}
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[Callback]struct{})}
}

// Create records an element and appends it to the innermost open element,
// or to the document roots when no element is open.
//
// args may start with a string, used as the element text, followed by any
// number of Attr, []Attr or Attrs values. nil arguments are ignored.
func (b *Builder) Create(tag string, args ...any) (*Node, error) {
	if tag == "" {
		return nil, errors.Newf("E102", "empty tag name")
	}

	node := &Node{Tag: tag}
	var attrs []Attr
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case string:
			if i != 0 {
				return nil, errors.Newf("E102", "<%s> argument %d: text must be the first argument", tag, i)
			}
			node.Text = v
		case Attr:
			attrs = append(attrs, v)
		case []Attr:
			attrs = append(attrs, v...)
		case Attrs:
			attrs = append(attrs, v.List()...)
		default:
			return nil, errors.Newf("E102", "<%s> argument %d: unexpected %T", tag, i, arg).
				WithSuggestion("Pass text first, then dom.Attr values. Nest children with Open or Within.")
		}
	}

	// Callbacks are committed only once the whole element is accepted.
	var found []Callback
	structural, events, err := Normalize(attrs, func(cb Callback) error {
		found = append(found, cb)
		return nil
	})
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Detail != "" {
			e.Detail = fmt.Sprintf("<%s> %s", tag, e.Detail)
		}
		return nil, err
	}
	node.Attrs = structural
	node.Events = events

	for _, cb := range found {
		b.register(cb)
	}
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, node)
	} else {
		b.roots = append(b.roots, node)
	}
	return node, nil
}

func (b *Builder) register(cb Callback) {
	if b.seen == nil {
		b.seen = make(map[Callback]struct{})
	}
	if _, ok := b.seen[cb]; ok {
		return
	}
	b.seen[cb] = struct{}{}
	b.scripts = append(b.scripts, cb)
}

// Scope is an open element. Elements created while it is open become its
// children until Close is called.
type Scope struct {
	b      *Builder
	node   *Node
	closed bool
}

// Node returns the element the scope encloses.
func (s *Scope) Node() *Node { return s.node }

// Close ends the scope. Closing an already closed scope does nothing.
// Close panics with an ErrStackInvariantViolation error if the scope is not
// the innermost open element.
func (s *Scope) Close() {
	if s == nil || s.closed {
		return
	}
	stack := s.b.stack
	if len(stack) == 0 {
		panic(errors.Newf("E104", "closing <%s> with no open element", s.node.Tag))
	}
	if top := stack[len(stack)-1]; top != s.node {
		panic(errors.Newf("E104", "closing <%s> while <%s> is innermost", s.node.Tag, top.Tag))
	}
	s.b.stack = stack[:len(stack)-1]
	s.closed = true
}

// Open creates an element and makes it the innermost open element.
// The caller must Close the returned scope, usually with defer.
func (b *Builder) Open(tag string, args ...any) (*Scope, error) {
	node, err := b.Create(tag, args...)
	if err != nil {
		return nil, err
	}
	b.stack = append(b.stack, node)
	return &Scope{b: b, node: node}, nil
}

// Within opens an element, runs body and closes the element again, on
// every exit path including a panic in body.
func (b *Builder) Within(tag string, body func() error, args ...any) error {
	scope, err := b.Open(tag, args...)
	if err != nil {
		return err
	}
	defer scope.Close()
	if body == nil {
		return nil
	}
	return body()
}

// Reset clears the recorded document, open elements and event callbacks.
func (b *Builder) Reset() {
	b.roots = nil
	b.stack = nil
	b.scripts = nil
	b.seen = make(map[Callback]struct{})
}

// Roots returns the top-level nodes in creation order.
func (b *Builder) Roots() []*Node {
	return append([]*Node(nil), b.roots...)
}

// Document returns the recorded document.
func (b *Builder) Document() *Document {
	return &Document{Roots: b.Roots()}
}

// EventScripts returns every distinct bound callback in discovery order.
func (b *Builder) EventScripts() []Callback {
	return append([]Callback(nil), b.scripts...)
}

// Depth returns the number of open elements.
func (b *Builder) Depth() int {
	return len(b.stack)
}
