package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger shared by the API server and the generation worker.
// Printf-style helpers for quick messages, *w variants for key/value context.

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar = newSugar("json", zapcore.AddSync(os.Stdout))
)

func newSugar(f string, w zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if f == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, w, level)).Sugar()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	level.SetLevel(parseLevel(l))
}

// Configure sets level and encoding (json or console) in one call.
func Configure(l, f string) {
	Init(l)
	f = strings.ToLower(strings.TrimSpace(f))
	if f != "console" {
		f = "json"
	}
	mu.Lock()
	defer mu.Unlock()
	sugar = newSugar(f, zapcore.AddSync(os.Stdout))
}

func parseLevel(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { get().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { get().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { get().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { get().Errorf(format, v...) }
func Fatalf(format string, v ...interface{}) { get().Fatalf(format, v...) }

func Debug(v string) { get().Debug(v) }
func Info(v string)  { get().Info(v) }
func Warn(v string)  { get().Warn(v) }
func Error(v string) { get().Error(v) }

func Infow(msg string, keysAndValues ...interface{})  { get().Infow(msg, keysAndValues...) }
func Warnw(msg string, keysAndValues ...interface{})  { get().Warnw(msg, keysAndValues...) }
func Errorw(msg string, keysAndValues ...interface{}) { get().Errorw(msg, keysAndValues...) }

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = get().Sync()
}

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	case zapcore.FatalLevel:
		return "fatal"
	}
	return "info"
}
