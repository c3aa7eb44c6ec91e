// Package logging defines the structured-logging interface used across
// TaskKeeper. Components receive a Logger by injection and never reach for a
// package-level logger.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Error(ctx, "remote write failed", "op", "task.insert", "id", id, "err", err)
type Logger interface {
	// Debug logs diagnostic details that are off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Nop discards everything. Handy as a default when no logger is wired.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any) {}
func (Nop) Warn(context.Context, string, ...any) {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger { return n }
