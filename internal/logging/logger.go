// Package logging defines the structured logger used by the session client and
// the development auth service. The only implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "session transition", "from", from, "to", to)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but recoverable conditions, e.g. a failed remote call
	// that resolved to an anonymous session.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures that leave something for an operator to look at.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
