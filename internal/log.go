package internal

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE to a level, defaulting to INFO
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// zap has no trace level; trace shares debug's core and is filtered here.
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Logger provides leveled printf-style logging on top of zap
type Logger struct {
	level LogLevel
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger with the specified level. format "json" selects
// zap's production encoder, anything else the console encoder.
func NewLogger(level LogLevel, format string) *Logger {
	var cfg zap.Config
	if strings.EqualFold(format, "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.DisableCaller = true

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{level: level, sugar: z.Sugar()}
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{level: LogLevelError, sugar: zap.NewNop().Sugar()}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL and LOG_FORMAT environment variables
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT"))
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.sugar.Debugf("[TRACE] "+format, args...)
	}
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Zap exposes the underlying structured logger
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Sync flushes buffered entries
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()

// SetDefault replaces the global logger once configuration is loaded
func SetDefault(l *Logger) {
	if l != nil {
		DefaultLogger = l
	}
}
