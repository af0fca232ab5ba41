// Package history persists a journal of download attempts to SQLite.
//
// The journal is append-only during a run: it records what happened but is
// never consulted to skip or short-circuit work. The `subfetch history`
// command reads it back for display.
package history
