// Package diag defines the diagnostic model of formatting runs.
//
// A Diagnostic pairs a Severity and a stable Code with a message and the
// source.Span it points at. The driver converts per-file failures (malformed
// YAML, non-converging indentation, unreadable files) into diagnostics and
// collects them in a Bag; the CLI renders them with FormatShortDiagnostics
// or serialises them as JSON.
//
// Codes are grouped by prefix:
//
//   - YML: the input is not a well-formed single YAML document.
//   - FMT: a formatting pass could not complete or did not apply.
//   - IO: reading, writing or discovering files failed.
//   - CFG: the configuration is invalid.
package diag
