package logutil

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

var global = zap.NewNop()

// Init builds the process-wide logger. Call once at startup.
func Init(level string, console bool) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	if console {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		return err
	}
	global = logger
	return nil
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// GetLogger returns the global logger, tagged with the request id when the
// context carries one.
func GetLogger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if rid, ok := ctx.Value(ctxKey{}).(string); ok && rid != "" {
			return global.With(zap.String("request_id", rid))
		}
	}
	return global
}
