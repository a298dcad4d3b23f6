package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	JSONLoggingFormat    = "json"
	ConsoleLoggingFormat = "console"

	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"

	ContextKeyRequestID contextKey = "requestID"
	ContextKeyUserLogin contextKey = "userLogin"
)

type Logger struct {
	zerolog.Logger
}

func New(level, format string) Logger {
	return NewWithWriter(level, format, os.Stdout)
}

// NewWithWriter builds a logger writing to w. The level is applied to the
// logger instance only, so concurrent loggers with different levels do not
// interfere with each other.
func NewWithWriter(level, format string, w io.Writer) Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}

	if format == JSONLoggingFormat {
		out = w
	}

	logger := zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()

	return Logger{
		Logger: logger,
	}
}

// ParseLevel maps a configured level name onto zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn, LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRequestID stores the request id used to correlate log lines.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithUserLogin stores the login of the caller acting on persons.
func WithUserLogin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, ContextKeyUserLogin, login)
}

// UserLogin returns the caller login stored in ctx, if any.
func UserLogin(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(ContextKeyUserLogin).(string)

	return login, ok && login != ""
}

func (l Logger) WithContext(ctx context.Context) zerolog.Logger {
	logCtx := l.Logger.With()

	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}

	if login, ok := UserLogin(ctx); ok {
		logCtx = logCtx.Str("user_login", login)
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		logCtx = logCtx.
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}

	return logCtx.Logger()
}
