// Package logger wraps log/slog with a request-scoped logger and an optional
// MongoDB sink.
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", id)
//	// → time=... level=INFO msg="order placed" request_id=6f1c... order_id=42
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/tiffin/config"
)

// L is the process-wide base logger.
var L *slog.Logger

func init() {
	L = slog.New(consoleHandler(os.Stdout))
	slog.SetDefault(L)
}

// consoleHandler returns JSON output in production and text otherwise.
func consoleHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Setup attaches the MongoDB sink when MONGO_URI is configured. The returned
// function flushes and disconnects the sink; it is safe to call when no sink
// was attached.
func Setup() (func(), error) {
	uri := config.MongoURI()
	if uri == "" {
		return func() {}, nil
	}

	mh, err := NewMongoHandler(uri, config.MongoDB(), "logs")
	if err != nil {
		return func() {}, err
	}

	L = slog.New(NewMultiHandler(consoleHandler(os.Stdout), mh))
	slog.SetDefault(L)
	return mh.Close, nil
}

type ctxKey struct{}

// WithCtx returns the logger injected into ctx by the Logger middleware, or
// the base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx for WithCtx to find.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
