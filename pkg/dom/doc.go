// Package dom records a document tree from ordinary function calls.
//
// A Builder keeps a stack of open elements. Create appends a node to the
// innermost open element (or to the document roots when none is open), and
// Open/Within push a node so that elements created inside the scope become
// its children:
//
//	b := dom.NewBuilder()
//	b.Within("body", func() error {
//	    return b.Within("div", func() error {
//	        _, err := b.Create("h1", "Hello")
//	        return err
//	    }, dom.A("class_", "container"))
//	})
//
// Attribute keys are normalized on the way in: reserved-word spellings such
// as class_ and htmlFor become class and for, and recognized event keys whose
// value is a Callback become event bindings. Every distinct callback is
// collected once, in discovery order, for the page script block.
//
// A Builder records one page at a time and is not safe for concurrent use.
package dom
