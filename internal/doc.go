// Package internal contains the core implementation packages for typetour.
//
// These packages follow Go's internal package convention and are not
// importable by other modules.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - catalog: the ordered tour pages, loaded from YAML content files
//   - navigation: the page cursor with clamped previous and next moves
//   - view: the rendered page projection and its templ components
//   - session: per-visitor navigation state owned by one goroutine each
//   - server: HTTP routes, the WebSocket channel, and request logging
//   - watcher: debounced content file monitoring for check --watch
//   - config: viper-backed configuration with validation
//   - errors: typed errors carrying actionable suggestions
//   - logging: slog-based structured logging
//
// # Inter-Package Communication
//
// A request flows from server into the session store, which hands an
// event to the owning session goroutine. The session drives its own
// navigation controller over a private clone of the catalog and answers
// with a view.View, which the server renders as HTML or JSON.
//
// Edits made in one session never reach another session or the catalog
// the server was started with.
package internal
