// Package sl holds small helpers for structured logging with slog.
package sl

import "log/slog"

// Err returns an "error" attribute carrying err's message.
//
//	log.Error("failed to load account", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
