// Package logging provides the structured logger shared by every analyzer,
// collaborator and command. It is a thin facade over zap so that call sites
// only deal with Fields maps.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured context attached to a log entry
type Fields = map[string]any

// Logger is the logging interface used across the module
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

var (
	mu      sync.RWMutex
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	format  = "console"
	base    *zap.Logger
	initMux sync.Once
)

type zapLogger struct {
	l *zap.Logger
}

// NewDefaultLogger returns the process-wide logger
func NewDefaultLogger() Logger {
	return &zapLogger{l: root()}
}

// WithFields returns the default logger with the given fields attached
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return &zapLogger{l: zap.NewNop()}
}

// SetLevel changes the minimum level of the default logger.
// Unknown levels fall back to info.
func SetLevel(name string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		lvl = zapcore.InfoLevel
	}
	level.SetLevel(lvl)
}

// SetFormat switches the encoder between "console" and "json".
// Loggers created before the call keep their encoder.
func SetFormat(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name != "json" {
		name = "console"
	}
	format = name
	base = build(format)
}

func root() *zap.Logger {
	initMux.Do(func() {
		mu.Lock()
		if base == nil {
			base = build(format)
		}
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func build(name string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if name == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	// logs go to stderr so command output on stdout stays machine readable
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

func (z *zapLogger) Debug(msg string, fields ...Fields) {
	z.l.Debug(msg, toZap(fields)...)
}

func (z *zapLogger) Info(msg string, fields ...Fields) {
	z.l.Info(msg, toZap(fields)...)
}

func (z *zapLogger) Warn(msg string, fields ...Fields) {
	z.l.Warn(msg, toZap(fields)...)
}

func (z *zapLogger) Error(err error, msg string, fields ...Fields) {
	zf := toZap(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	z.l.Error(msg, zf...)
}

func (z *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{l: z.l.With(toZap([]Fields{fields})...)}
}

func toZap(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields[0]))
	for _, f := range fields {
		for k, v := range f {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
