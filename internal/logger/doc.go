// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger writing console-encoded lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (InfoKV, DebugKV, etc.).
//
// Stdout is never written to: build systems capture it and some of them
// treat any output as a warning.
package logger
