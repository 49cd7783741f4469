// Package errors provides structured, actionable error messages for webdsl.
//
// Every error carries a registry code (e.g., "E102") that maps to a short
// message, a longer explanation and a fix hint. Codes are grouped by range:
//   - E1xx: recording (tree builder, style recorder, renderer)
//   - E2xx: building (page scripts, page discovery)
//   - E3xx: configuration
//   - E4xx/E5xx: publishing and verification
//
// errors.Is matches by code, so the exported sentinels work against any
// error created from the same code:
//
//	err := errors.Newf("E102", "unexpected %T", v)
//	errors.Is(err, errors.ErrInvalidArgument) // true
//
// Format renders an error for the terminal:
//
//	ERROR E201: Page script failed
//
//	  pages/index.js:4:9
//
//	      3 │ html.body(() => {
//	  →   4 │   boom();
//	        │   ^
//	      5 │ });
//
//	  Hint: Fix the script at the reported location and rebuild.
package errors
