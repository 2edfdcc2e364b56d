package environment

import (
	"context"
	"log/slog"
)

// LoggerExtractor returns a logger context extractor that adds an "env"
// attribute when the environment is present in the context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if env := FromContext(ctx); env != "" {
			return slog.String("env", string(env)), true
		}
		return slog.Attr{}, false
	}
}
