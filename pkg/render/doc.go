// Package render compiles recorded documents and style sheets to text.
//
// The markup renderer writes a fixed page scaffold (doctype, head with the
// stylesheet link and client runtime includes, body) and renders the
// document roots inside the body with two-space indentation:
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.Render(b.Document(), b.EventScripts(), "styles.css")
//
// Elements without children render on one line. Text and attribute values
// are escaped; existing character references are left alone, so escaping
// already escaped text is a no-op.
//
// # Event callbacks
//
// Event bindings render as event="name()". The source of every callback is
// emitted once into a script block for the configured ClientRuntime. A
// callback whose source cannot be recovered is skipped and reported through
// Diagnostics instead of failing the page.
//
// # Stylesheets
//
// Stylesheet renders @keyframes blocks first, then plain rules, each in
// recording order.
package render
