// Package logger provides the process-wide structured logger.
// It wraps uber-go/zap with JSON or key=value text output and optional rotated file output.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field keys shared by every component that logs about a render
const (
	FieldRenderID  = "render_id"
	FieldFlavor    = "flavor"
	FieldRequestID = "request_id"
)

var (
	globalLogger *zap.Logger
	mu           sync.RWMutex
	once         sync.Once
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`
	// Format is the output format (json, text)
	Format string `yaml:"format"`
	// File is the log file path. When set, logs go to both stdout and the file.
	File string `yaml:"file"`
	// MaxSize is the size in megabytes at which the log file is rotated
	MaxSize int `yaml:"max_size"`
	// MaxAge is the number of days rotated files are kept
	MaxAge int `yaml:"max_age"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `yaml:"compress"`
	// AccessLog logs successful HTTP requests at info level
	AccessLog bool `yaml:"access_log"`
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 5,
	}
}

// Init builds the global logger. Only the first call takes effect.
func Init(cfg Config) error {
	var initErr error
	once.Do(func() {
		var l *zap.Logger
		l, initErr = New(cfg)
		if initErr == nil {
			setGlobal(l)
		}
	})
	return initErr
}

// New builds a logger from cfg without touching the global one.
// An unknown level falls back to info.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	defaults := DefaultConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaults.MaxSize
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaults.MaxAge
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = defaults.MaxBackups
	}

	var consoleEnc, fileEnc zapcore.Encoder
	switch cfg.Format {
	case "json":
		consoleEnc = zapcore.NewJSONEncoder(jsonEncoderConfig())
		fileEnc = consoleEnc.Clone()
	case "text", "":
		consoleEnc = newKVConsoleEncoder(textEncoderConfig(true))
		fileEnc = newKVConsoleEncoder(textEncoderConfig(false))
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	core := zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), level)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log directory: %v, using console only\n", err)
		} else {
			rotated := zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxAge:     cfg.MaxAge,
				MaxBackups: cfg.MaxBackups,
				Compress:   cfg.Compress,
			})
			core = zapcore.NewTee(core, zapcore.NewCore(fileEnc, rotated, level))
		}
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func textEncoderConfig(color bool) zapcore.EncoderConfig {
	levelEncoder := bracketLevelEncoder
	if color {
		levelEncoder = bracketColorLevelEncoder
	}
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          zapcore.OmitKey,
		CallerKey:        "caller",
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      levelEncoder,
		EncodeTime:       bracketTimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(level))
	return l, err
}

func setGlobal(l *zap.Logger) {
	mu.Lock()
	globalLogger = l
	mu.Unlock()
}

// ReplaceForTesting swaps the global logger and returns a function restoring the previous one
func ReplaceForTesting(l *zap.Logger) func() {
	mu.Lock()
	prev := globalLogger
	globalLogger = l
	mu.Unlock()
	return func() { setGlobal(prev) }
}

// Get returns the global logger, or a no-op logger before Init
func Get() *zap.Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Sugar returns the sugared global logger
func Sugar() *zap.SugaredLogger {
	return Get().Sugar()
}

// With creates a child logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Named creates a child logger with the given name
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// WithRenderContext returns a child logger tagged with a render and its flavor
func WithRenderContext(renderID, flavorID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if renderID != "" {
		fields = append(fields, zap.String(FieldRenderID, renderID))
	}
	if flavorID != "" {
		fields = append(fields, zap.String(FieldFlavor, flavorID))
	}
	return Get().With(fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l.Sync()
	}
	return nil
}
