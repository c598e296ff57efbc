// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"context"
)

// WithContext returns a new context with the provided logger.
func WithContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// FromContext retrieves the logger from the context. If no logger is found, a new null logger is returned.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey).(Logger); ok {
			return logger
		}
	}

	return nullLogger
}

// Named returns the logger of ctx renamed to name and always emitting args.
func Named(ctx context.Context, name string, args ...any) Logger {
	log := FromContext(ctx).WithName(name)
	if len(args) > 0 {
		log = log.With(args...)
	}

	return log
}

type contextKeyType struct{}

var contextKey = contextKeyType{}
