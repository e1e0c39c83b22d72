// Package logging is the structured logger shared by every vedit package.
// Records go through log/slog; warnings and errors carry the error as an
// "error" attribute so callers never format it into the message.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is the logging surface handed to every component. Fields are
// alternating key/value pairs.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Fatal(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig logs text at info level to stderr, leaving stdout to
// command output and the MCP stdio transport.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// VeditLogger implements Logger on top of a slog.Handler. Derived loggers
// share the handler and copy the bound attributes.
type VeditLogger struct {
	handler   slog.Handler
	level     LogLevel
	component string
	attrs     []slog.Attr
}

// NewLogger builds a logger from config; a nil config means DefaultConfig.
func NewLogger(config *LoggerConfig) *VeditLogger {
	if config == nil {
		config = DefaultConfig()
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.slogLevel(), AddSource: config.AddSource}
	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if config.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	}

	return &VeditLogger{handler: handler, level: config.Level, component: config.Component}
}

func (l *VeditLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.write(ctx, LevelDebug, nil, msg, fields)
}

func (l *VeditLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.write(ctx, LevelInfo, nil, msg, fields)
}

func (l *VeditLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.write(ctx, LevelWarn, err, msg, fields)
}

func (l *VeditLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.write(ctx, LevelError, err, msg, fields)
}

// Fatal logs at error level. It does not exit.
func (l *VeditLogger) Fatal(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.write(ctx, LevelFatal, err, msg, fields)
}

// With returns a logger that adds fields to every record. A key without a
// value is dropped.
func (l *VeditLogger) With(fields ...interface{}) Logger {
	child := *l
	child.attrs = append(append([]slog.Attr(nil), l.attrs...), toAttrs(fields)...)
	return &child
}

func (l *VeditLogger) WithComponent(component string) Logger {
	child := *l
	child.component = component
	return &child
}

func (l *VeditLogger) write(ctx context.Context, level LogLevel, err error, msg string, fields []interface{}) {
	if level < l.level {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	slevel := level.slogLevel()
	if !l.handler.Enabled(ctx, slevel) {
		return
	}

	record := slog.NewRecord(time.Now(), slevel, msg, 0)
	if l.component != "" {
		record.AddAttrs(slog.String("component", l.component))
	}
	if err != nil {
		record.AddAttrs(slog.String("error", err.Error()))
	}
	record.AddAttrs(l.attrs...)
	record.AddAttrs(toAttrs(fields)...)

	_ = l.handler.Handle(ctx, record)
}

func toAttrs(fields []interface{}) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, fields[i+1]))
	}
	return attrs
}

type nopLogger struct{}

// Nop returns a logger that discards everything
func Nop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(context.Context, string, ...interface{})        {}
func (nopLogger) Info(context.Context, string, ...interface{})         {}
func (nopLogger) Warn(context.Context, error, string, ...interface{})  {}
func (nopLogger) Error(context.Context, error, string, ...interface{}) {}
func (nopLogger) Fatal(context.Context, error, string, ...interface{}) {}
func (n nopLogger) With(...interface{}) Logger                         { return n }
func (n nopLogger) WithComponent(string) Logger                        { return n }
