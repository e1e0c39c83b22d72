package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileLogger appends to a per-day file under a log directory.
type FileLogger struct {
	*VeditLogger
	file *os.File
	path string
}

// NewFileLogger opens (or creates) logDir/vedit-YYYY-MM-DD.log. The
// config's Output is ignored.
func NewFileLogger(config *LoggerConfig, logDir string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, "vedit-"+time.Now().Format(time.DateOnly)+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	cfg := *config
	cfg.Output = file
	return &FileLogger{VeditLogger: NewLogger(&cfg), file: file, path: path}, nil
}

// Path returns the log file path
func (f *FileLogger) Path() string {
	return f.path
}

func (f *FileLogger) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

// MultiLogger fans every record out to several loggers.
type MultiLogger []Logger

// NewMultiLogger combines loggers; nil entries are skipped.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	m := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m MultiLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	for _, l := range m {
		l.Debug(ctx, msg, fields...)
	}
}

func (m MultiLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	for _, l := range m {
		l.Info(ctx, msg, fields...)
	}
}

func (m MultiLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	for _, l := range m {
		l.Warn(ctx, err, msg, fields...)
	}
}

func (m MultiLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	for _, l := range m {
		l.Error(ctx, err, msg, fields...)
	}
}

func (m MultiLogger) Fatal(ctx context.Context, err error, msg string, fields ...interface{}) {
	for _, l := range m {
		l.Fatal(ctx, err, msg, fields...)
	}
}

func (m MultiLogger) With(fields ...interface{}) Logger {
	return m.each(func(l Logger) Logger { return l.With(fields...) })
}

func (m MultiLogger) WithComponent(component string) Logger {
	return m.each(func(l Logger) Logger { return l.WithComponent(component) })
}

func (m MultiLogger) each(derive func(Logger) Logger) MultiLogger {
	out := make(MultiLogger, len(m))
	for i, l := range m {
		out[i] = derive(l)
	}
	return out
}

// Open builds the process logger: stderr, plus a FileLogger when logDir is
// set. The returned close func releases the file.
func Open(config *LoggerConfig, logDir string) (Logger, func() error, error) {
	console := NewLogger(config)
	if logDir == "" {
		return console, func() error { return nil }, nil
	}

	file, err := NewFileLogger(config, logDir)
	if err != nil {
		return nil, nil, err
	}
	return NewMultiLogger(console, file), file.Close, nil
}
