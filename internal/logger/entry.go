package logger

import (
	"context"
)

// Entry accumulates metric fields (duration_ms, count, size, status)
// before emitting a single log line. Tracing fields come from the
// context at emit time, so the two groups never mix up.
type Entry struct {
	logger *Logger
	fields Fields
}

// With starts an Entry with the given metric fields.
//
//	logger.With(logger.Fields{logger.FieldCount: n}).Info(ctx, "Scenes generated")
func With(fields Fields) *Entry {
	return &Entry{logger: getDefaultLogger(), fields: fields}
}

// With returns a copy of the Entry with extra fields merged in.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, fields: merged}
}

// WithField returns a copy of the Entry with one extra field.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithDuration attaches an elapsed-time field in milliseconds.
func (e *Entry) WithDuration(ms int64) *Entry {
	return e.WithField(FieldDurationMs, ms)
}

func (e *Entry) resolve(ctx context.Context) *Logger {
	if ctx != nil {
		return FromContext(ctx)
	}
	return e.logger
}

// Debug emits the entry at Debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Debugf(format, args...)
}

// Info emits the entry at Info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Infof(format, args...)
}

// Warn emits the entry at Warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Warnf(format, args...)
}

// Error emits the entry at Error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Errorf(format, args...)
}
