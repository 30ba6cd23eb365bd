package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a logrus entry so derived loggers keep their fields.
type Logger struct {
	*logrus.Entry
}

// Config holds the basic logger settings used by New.
type Config struct {
	Level       string    // debug, info, warn, error
	Format      string    // json, text
	Output      io.Writer // destination; nil means stdout
	ServiceName string    // tagged on every line as "service"
}

// DefaultConfig returns the settings used when New receives nil.
func DefaultConfig() *Config {
	return &Config{
		Level:       "info",
		Format:      "json",
		Output:      os.Stdout,
		ServiceName: "content-pipeline",
	}
}

// New creates a Logger writing to a single destination.
// Parameters:
//   - cfg: logger settings; nil uses DefaultConfig.
// Returns:
//   - *Logger: initialized logger.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	log := newLogrus(cfg.Level, cfg.Format)
	if cfg.Output != nil {
		log.SetOutput(cfg.Output)
	} else {
		log.SetOutput(os.Stdout)
	}

	return &Logger{Entry: log.WithField("service", cfg.ServiceName)}
}

// NewDefault creates a Logger from environment variables, with file
// rotation outside the local environment. This is the constructor main()
// should use.
// Returns:
//   - *Logger: initialized logger.
func NewDefault() *Logger {
	cfg := LoadFromEnv()
	log := newLogrus(cfg.Level, cfg.Format)

	var writers []io.Writer
	if cfg.Environment == "local" || !cfg.LogFileOnly {
		writers = append(writers, os.Stdout)
	}
	if cfg.Environment != "local" && cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		writers = append(writers, rotator)

		logSinkMu.Lock()
		logSink = rotator
		logSinkMu.Unlock()
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	log.SetOutput(io.MultiWriter(writers...))

	return &Logger{Entry: log.WithField("service", cfg.ServiceName)}
}

// newLogrus builds the underlying logrus logger shared by both
// constructors: parsed level, caller reporting, and the chosen formatter.
func newLogrus(level, format string) *logrus.Logger {
	log := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetReportCaller(true)
	log.SetFormatter(newFormatter(format))

	return log
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func newFormatter(format string) logrus.Formatter {
	if strings.ToLower(format) == "text" {
		return &logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  timestampLayout,
			CallerPrettyfier: trimCaller,
		}
	}
	return &logrus.JSONFormatter{
		TimestampFormat: timestampLayout,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
		CallerPrettyfier: trimCaller,
	}
}

// trimCaller reduces caller info to "pkg.Func" and "file.go:line".
func trimCaller(frame *runtime.Frame) (function string, file string) {
	funcName := frame.Function
	if idx := strings.LastIndex(funcName, "/"); idx != -1 {
		funcName = funcName[idx+1:]
	}
	return funcName, filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}

// logSink is the rotating file writer, kept so Sync can close it.
var (
	logSink   io.Closer
	logSinkMu sync.Mutex
)

// Sync closes the rotating log file, if one was opened. Call it deferred
// from main so the last lines are not lost on shutdown.
func Sync() error {
	logSinkMu.Lock()
	defer logSinkMu.Unlock()

	if logSink != nil {
		return logSink.Close()
	}
	return nil
}

// defaultLogger backs the package-level log functions and is the
// fallback when a context carries no logger.
var (
	defaultLogger   *Logger
	defaultLoggerMu sync.RWMutex
)

func init() {
	defaultLogger = New(nil)
}

// SetDefaultLogger replaces the package default. Main calls this once
// after building the configured logger.
// Parameters:
//   - l: logger to install; nil is ignored.
func SetDefaultLogger(l *Logger) {
	if l == nil {
		return
	}
	defaultLoggerMu.Lock()
	defaultLogger = l
	defaultLoggerMu.Unlock()
}

func getDefaultLogger() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// WithFields returns a derived Logger with the fields applied.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

// WithField returns a derived Logger with one field applied.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

// WithError returns a derived Logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithError(err)}
}

// Package-level log functions on the default logger.

// Debug logs a formatted message at Debug level.
func Debug(format string, args ...interface{}) {
	getDefaultLogger().Debugf(format, args...)
}

// Info logs a formatted message at Info level.
func Info(format string, args ...interface{}) {
	getDefaultLogger().Infof(format, args...)
}

// Warn logs a formatted message at Warn level.
func Warn(format string, args ...interface{}) {
	getDefaultLogger().Warnf(format, args...)
}

// Error logs a formatted message at Error level.
func Error(format string, args ...interface{}) {
	getDefaultLogger().Errorf(format, args...)
}

// Fatal logs a formatted message at Fatal level and exits.
func Fatal(format string, args ...interface{}) {
	getDefaultLogger().Fatalf(format, args...)
}

// Context variants resolve the logger carried by ctx, so tracing fields
// installed upstream (request id, content id, layer) ride along.

// CtxDebug logs at Debug level with the context logger.
func CtxDebug(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Debugf(format, args...)
}

// CtxInfo logs at Info level with the context logger.
func CtxInfo(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Infof(format, args...)
}

// CtxWarn logs at Warn level with the context logger.
func CtxWarn(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Warnf(format, args...)
}

// CtxError logs at Error level with the context logger.
func CtxError(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Errorf(format, args...)
}
