// Package logging assembles the structured slog loggers used across subfetch.
//
// Diagnostics are structured and go to stderr; the plain stdout/stderr lines
// that form the tool's user-facing contract (download status lines, missing
// language warnings) are printed directly by the pipeline and never routed
// through here.
package logging
