package dom

import "sort"

// Attr is a single element attribute. A true value renders as a bare
// attribute name, false or nil suppresses the attribute, anything else
// renders as a quoted string.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// A creates an Attr.
func A(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Attrs is a convenience mapping of attributes. Keys are applied in sorted
// order so that output stays deterministic.
type Attrs map[string]any

// List returns the attributes sorted by key.
func (a Attrs) List() []Attr {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, Attr{Key: k, Value: a[k]})
	}
	return out
}

// EventBinding binds an event attribute (e.g. "onclick") to a callback.
type EventBinding struct {
	Event    string
	Callback Callback
}

// Node is one recorded element.
type Node struct {
	Tag      string
	Attrs    []Attr
	Events   []EventBinding
	Text     string
	Children []*Node
}

// Attr returns the value of a structural attribute.
func (n *Node) Attr(key string) (any, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Event returns the callback bound to an event attribute.
func (n *Node) Event(name string) (Callback, bool) {
	for _, e := range n.Events {
		if e.Event == name {
			return e.Callback, true
		}
	}
	return nil, false
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Walk calls fn for n and each descendant in document order. Returning false
// from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Document is an ordered list of top-level nodes.
type Document struct {
	Roots []*Node
}

// Count returns the total number of nodes in the document.
func (d *Document) Count() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, r := range d.Roots {
		total += r.Count()
	}
	return total
}

// Walk visits every node in document order.
func (d *Document) Walk(fn func(*Node) bool) {
	if d == nil {
		return
	}
	for _, r := range d.Roots {
		r.Walk(fn)
	}
}
