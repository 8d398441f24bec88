// Package logger provides structured logging for hashguard.
//
// It wraps log/slog:
//
//   - logger.go: handler selection (json, text, console via tint) and the
//     process-wide level
//   - context.go: context-aware logging with request IDs
//   - redact.go: redaction of stored keys, values and hash seeds
//
// Keys and values stored in the map are chosen by clients, possibly
// hostile ones, and must never reach log output verbatim.
package logger
