// Package logger provides slog attribute helpers shared by the transport and
// server packages. Helpers use the empty Attr pattern for nil safety, so
// calls like log.Info("msg", logger.Error(err)) need no explicit nil checks.
package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration creates an attribute for a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID tags a record with the per-request identifier.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Outcome records how a response was committed (content, error, redirect,
// listing, aborted).
func Outcome(outcome string) slog.Attr {
	return slog.String("outcome", outcome)
}

// Bytes records a payload size in bytes.
func Bytes(n int64) slog.Attr {
	return slog.Int64("bytes", n)
}

// Source names the data source feeding a streamed response.
func Source(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("source", name)
}
