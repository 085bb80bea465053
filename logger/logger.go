package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger wraps zerolog.Logger with a service name.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// Init builds the global logger from cfg.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg, cfg.ServiceName))
}

// New creates a logger writing to the output named in cfg.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatPretty:
		zl = zerolog.New(consoleWriter(cfg, serviceName, w))
	default:
		zl = zerolog.New(w)
	}
	zl = zl.Level(level)

	zc := zl.With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	if serviceName != "" {
		zc = zc.Str(FieldService, serviceName)
	}

	return &Logger{logger: zc.Logger(), service: serviceName}
}

// NewDefault creates a console logger at info level.
func NewDefault(serviceName string) *Logger {
	return New(&Config{
		Level:     "info",
		Format:    FormatConsole,
		Output:    "stdout",
		Timestamp: true,
	}, serviceName)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID stores a request id for WithContext to pick up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithContext returns a logger enriched with the request id from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return &Logger{logger: l.logger.With().Str(FieldRequestID, v).Logger(), service: l.service}
	}
	return l
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:  l.logger.With().Str(FieldComponent, name).Logger(),
		service: l.service,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger:  l.logger.With().Err(err).Logger(),
		service: l.service,
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Debug(), msg, fields)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Warn(), msg, fields)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Error(), msg, fields)
}

// --- Global logger ---

var globalLogger atomic.Pointer[Logger]

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(l *Logger) { globalLogger.Store(l) }

// GetGlobalLogger returns the global logger, installing a default one if needed.
func GetGlobalLogger() *Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	globalLogger.CompareAndSwap(nil, NewDefault(""))
	return globalLogger.Load()
}

// WithComponent returns a component-tagged logger from the global logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// Error logs an error message on the global logger.
func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}

// --- internal helpers ---

func emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

func outputWriter(output string) io.Writer {
	if strings.ToLower(output) == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

func consoleWriter(cfg *Config, serviceName string, w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			lvl := "[" + strings.ToUpper(fmt.Sprintf("%.3s", i)) + "]"
			if len(serviceName) >= 3 {
				return "[" + strings.ToUpper(serviceName[:3]) + "]" + lvl
			}
			return lvl
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}
