package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" into a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// TourLogger implements Logger on top of log/slog.
type TourLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	fields    []interface{}
	closer    io.Closer
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	File      string // optional, appended to alongside Output
	AddSource bool
	Component string
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger. When config.File is set, records
// are fanned out to both the configured output and the file.
func NewLogger(config *LoggerConfig) (*TourLogger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level.slogLevel(),
		AddSource: config.AddSource,
	}

	handlers := []slog.Handler{newHandler(config.Format, config.Output, opts)}

	var closer io.Closer
	if config.File != "" {
		if err := os.MkdirAll(filepath.Dir(config.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		// Files always get JSON so they stay machine readable.
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
		closer = file
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = slogmulti.Fanout(handlers...)
	}

	return &TourLogger{
		logger:    slog.New(handler),
		level:     config.Level,
		component: config.Component,
		closer:    closer,
	}, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *TourLogger {
	return &TourLogger{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		level:  LevelError + 1,
	}
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Debug logs a debug message
func (l *TourLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelDebug {
		return
	}
	l.log(ctx, slog.LevelDebug, nil, msg, fields...)
}

// Info logs an info message
func (l *TourLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.log(ctx, slog.LevelInfo, nil, msg, fields...)
}

// Warn logs a warning message
func (l *TourLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	if l.level > LevelWarn {
		return
	}
	l.log(ctx, slog.LevelWarn, err, msg, fields...)
}

// Error logs an error message
func (l *TourLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	if l.level > LevelError {
		return
	}
	l.log(ctx, slog.LevelError, err, msg, fields...)
}

// With creates a new logger with additional fields
func (l *TourLogger) With(fields ...interface{}) Logger {
	merged := make([]interface{}, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &TourLogger{
		logger:    l.logger,
		level:     l.level,
		component: l.component,
		fields:    merged,
	}
}

// WithComponent creates a new logger with component context
func (l *TourLogger) WithComponent(component string) Logger {
	return &TourLogger{
		logger:    l.logger,
		level:     l.level,
		component: component,
		fields:    l.fields,
	}
}

// Close releases the log file, if any.
func (l *TourLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *TourLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields ...interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, (len(l.fields)+len(fields))/2+2)

	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	attrs = appendPairs(attrs, l.fields)
	attrs = appendPairs(attrs, fields)

	record := slog.NewRecord(time.Now(), level, msg, 0)
	record.AddAttrs(attrs...)

	_ = l.logger.Handler().Handle(ctx, record)
}

// appendPairs turns alternating key/value arguments into attributes. Pairs
// with a non-string key and a trailing odd value are dropped.
func appendPairs(attrs []slog.Attr, fields []interface{}) []slog.Attr {
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			attrs = append(attrs, slog.Any(key, fields[i+1]))
		}
	}
	return attrs
}

// Operation tracks the duration of a unit of work.
type Operation struct {
	Logger
	startTime time.Time
}

// StartOperation begins timing an operation.
func StartOperation(logger Logger, operation string) *Operation {
	return &Operation{
		Logger:    logger.With("operation", operation),
		startTime: time.Now(),
	}
}

// End logs the completion of the operation with its duration.
func (o *Operation) End(ctx context.Context, fields ...interface{}) {
	duration := time.Since(o.startTime)
	fields = append(fields, "duration_ms", duration.Milliseconds())
	o.Debug(ctx, "Operation completed", fields...)
}
