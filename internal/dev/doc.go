// Package dev serves a site while it is being edited.
//
// The server polls the page scripts and the project configuration, calls
// the rebuild function after every batch of changes and tells connected
// browsers what happened over a WebSocket:
//
//   - a changed page reloads the browser
//   - a build that only changed the stylesheet swaps stylesheets in place
//   - a failed build shows an error overlay until the next good build
//
// Served HTML pages get a small client script injected before </body>.
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Addr:      cfg.DevAddress(),
//	    OutputDir: cfg.OutputPath(),
//	    Watch:     []string{cfg.PagesPath()},
//	    Rebuild:   rebuild,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package dev
