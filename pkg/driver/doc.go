// Package driver owns the browser sessions the suites run against.
//
// A Registry hands every worker its own Session, launched on first use
// through a Launcher. Sessions are isolated: two workers never share a
// browser, a context or a page.
//
// # Backends
//
// Four browser names are accepted, each mapped onto a Playwright engine:
//
//	chrome   chromium, "chrome" channel
//	edge     chromium, "msedge" channel
//	firefox  firefox
//	safari   webkit
//
// Any other name fails with ErrUnsupportedBrowser before a browser starts.
//
// # Session Lifecycle
//
//  1. Session(worker) launches the browser, applies the implicit wait and
//     page load timeouts, and maximizes the window. A failed maximize is
//     logged and ignored.
//  2. Further Session(worker) calls return the same session.
//  3. Close(worker) quits the browser. Quit errors are logged, never
//     returned, and the worker may start over with a fresh session.
//  4. CloseAll closes whatever is left and stops the Playwright driver.
//
// # Element Lookups
//
// Session methods take CSS selectors and wait up to the implicit wait for the
// element. An element still missing after the wait yields an error wrapping
// ErrElementNotFound.
package driver
