// Package internal contains the core implementation packages for vedit.
//
// # Package Organization
//
// The edit pipeline, innermost first:
//
//   - types: style changes, element snapshots and history entries
//   - tailwind: CSS property to utility class mapping and class list updates
//   - inlinestyle: JSX style={{...}} parsing and serialization
//   - jsx: locating an element's opening and closing tags from a source line
//   - patch: the deterministic search/replace generator
//   - aiedit, batch, llm: the code-edit endpoint fallback for single and
//     multi-element edits
//   - changeset: pending live-preview changes and undo/redo history
//
// The preview side:
//
//   - protocol: the message types exchanged between preview and editor
//   - inject: the browser tracker script and HTML injection
//   - tracker: the same tracker as a Go state machine over a DOM interface
//
// Serving and plumbing:
//
//   - server, middleware: HTTP API, preview pages and the websocket relay
//   - storage: project files in SQLite, on disk or in memory
//   - watcher: debounced file change notification for the disk store
//   - mcptools: the edit tools over the Model Context Protocol
//   - config, logging, errors, validation, version: ambient support
//
// # Failure Handling
//
// Every edit path returns the original source unchanged when it cannot
// apply a change. Partial results are reported per change rather than
// aborting the whole edit.
package internal
