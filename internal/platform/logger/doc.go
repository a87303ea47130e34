// Package logger configures the application's structured logging (log/slog)
// and provides helpers for carrying a request-scoped logger in a context.
package logger
